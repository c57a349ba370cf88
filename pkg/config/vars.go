package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const vaultHeader = "$ANSIBLE_VAULT;"

// RequiredVars are referenced by the generated playbook's connection_info.
var RequiredVars = []string{"storage_address", "vault_storage_username", "vault_storage_secret"}

type VarsState string

const (
	VarsMissing   VarsState = "missing"
	VarsEncrypted VarsState = "encrypted"
	VarsPlaintext VarsState = "plaintext"
)

// VarsInfo describes a credentials/variables file.
type VarsInfo struct {
	Path        string
	State       VarsState
	MissingKeys []string
}

// InspectVars looks at the vars file without decrypting it. Vault-encrypted
// files are reported as such; plaintext files are parsed as YAML and checked
// for RequiredVars.
func InspectVars(path string) (*VarsInfo, error) {
	info := &VarsInfo{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			info.State = VarsMissing
			return info, nil
		}
		return nil, fmt.Errorf("failed to read vars file: %w", err)
	}

	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(vaultHeader)) {
		info.State = VarsEncrypted
		return info, nil
	}

	info.State = VarsPlaintext
	vars := map[string]any{}
	if err := yaml.Unmarshal(data, &vars); err != nil {
		return nil, fmt.Errorf("failed to parse vars file: %w", err)
	}

	for _, key := range RequiredVars {
		if _, ok := vars[key]; !ok {
			info.MissingKeys = append(info.MissingKeys, key)
		}
	}
	return info, nil
}
