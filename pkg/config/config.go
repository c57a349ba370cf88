package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"storagefacts/pkg/playbook"

	"gopkg.in/yaml.v3"
)

type Mode string

const (
	// ModeGenerate writes a temporary playbook from the module table.
	ModeGenerate Mode = "generate"
	// ModeRole runs the pre-existing role playbook.
	ModeRole Mode = "role"
)

const DefaultAnsiblePlaybook = "ansible-playbook"

type Config struct {
	Mode              Mode   `yaml:"mode"`
	OutputFile        string `yaml:"output_file"`
	VarsFile          string `yaml:"vars_file"`
	VaultPasswordFile string `yaml:"vault_password_file"`
	RolePlaybook      string `yaml:"role_playbook"`
	AnsiblePlaybook   string `yaml:"ansible_playbook"`
	KeepPlaybook      bool   `yaml:"keep_playbook"`
	// FactsFile is the default input document for the processor.
	FactsFile string `yaml:"facts_file"`
}

func Default() *Config {
	return &Config{
		Mode:            ModeGenerate,
		OutputFile:      playbook.DefaultOutputFile,
		VarsFile:        playbook.DefaultVarsFile,
		RolePlaybook:    playbook.DefaultRolePlaybook,
		AnsiblePlaybook: DefaultAnsiblePlaybook,
	}
}

// LoadFromEnv returns the defaults overridden by STORAGEFACTS_* variables.
// Paths taken from the environment have ~ and $VARS expanded.
func LoadFromEnv() *Config {
	d := Default()
	cfg := &Config{
		Mode:              Mode(getEnv("STORAGEFACTS_MODE", string(d.Mode))),
		OutputFile:        getEnv("STORAGEFACTS_OUTPUT_FILE", d.OutputFile),
		VarsFile:          getEnv("STORAGEFACTS_VARS_FILE", d.VarsFile),
		VaultPasswordFile: getEnv("STORAGEFACTS_VAULT_PASSWORD_FILE", ""),
		RolePlaybook:      getEnv("STORAGEFACTS_ROLE_PLAYBOOK", d.RolePlaybook),
		AnsiblePlaybook:   getEnv("STORAGEFACTS_ANSIBLE_PLAYBOOK", d.AnsiblePlaybook),
		FactsFile:         getEnv("STORAGEFACTS_FILE", ""),
	}
	cfg.expandPaths()
	return cfg
}

// LoadConfig reads a YAML config file on top of the environment settings.
// Keys absent from the file keep their environment or default value.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(expandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	file := &Config{}
	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	file.expandPaths()

	cfg := LoadFromEnv()
	cfg.merge(file)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings and fills in defaults. Paths are left as given.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeGenerate, ModeRole:
	case "":
		c.Mode = ModeGenerate
	default:
		return fmt.Errorf("invalid mode %q (expected %q or %q)", c.Mode, ModeGenerate, ModeRole)
	}

	if c.OutputFile == "" {
		return fmt.Errorf("output file is required")
	}
	if c.AnsiblePlaybook == "" {
		c.AnsiblePlaybook = DefaultAnsiblePlaybook
	}
	if c.Mode == ModeRole && c.RolePlaybook == "" {
		return fmt.Errorf("role playbook is required in %s mode", ModeRole)
	}
	return nil
}

func (c *Config) expandPaths() {
	c.OutputFile = expandPath(c.OutputFile)
	c.VarsFile = expandPath(c.VarsFile)
	c.VaultPasswordFile = expandPath(c.VaultPasswordFile)
	c.RolePlaybook = expandPath(c.RolePlaybook)
	c.AnsiblePlaybook = expandPath(c.AnsiblePlaybook)
	c.FactsFile = expandPath(c.FactsFile)
}

// merge copies the settings present in other over c.
func (c *Config) merge(other *Config) {
	if other.Mode != "" {
		c.Mode = other.Mode
	}
	if other.OutputFile != "" {
		c.OutputFile = other.OutputFile
	}
	if other.VarsFile != "" {
		c.VarsFile = other.VarsFile
	}
	if other.VaultPasswordFile != "" {
		c.VaultPasswordFile = other.VaultPasswordFile
	}
	if other.RolePlaybook != "" {
		c.RolePlaybook = other.RolePlaybook
	}
	if other.AnsiblePlaybook != "" {
		c.AnsiblePlaybook = other.AnsiblePlaybook
	}
	if other.KeepPlaybook {
		c.KeepPlaybook = true
	}
	if other.FactsFile != "" {
		c.FactsFile = other.FactsFile
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}
