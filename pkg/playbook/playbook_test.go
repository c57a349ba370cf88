package playbook

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type task map[string]any

func parsePlaybook(t *testing.T, data []byte) (map[string]any, []task) {
	t.Helper()
	var plays []map[string]any
	require.NoError(t, yaml.Unmarshal(data, &plays))
	require.Len(t, plays, 1)

	raw, ok := plays[0]["tasks"].([]any)
	require.True(t, ok, "tasks should be a list")
	tasks := make([]task, len(raw))
	for i, r := range raw {
		tasks[i] = task(r.(map[string]any))
	}
	return plays[0], tasks
}

func TestModulesTable(t *testing.T) {
	assert.Len(t, Modules, 30)

	seen := map[string]bool{}
	for _, m := range Modules {
		assert.False(t, seen[m.Category], "duplicate category %s", m.Category)
		seen[m.Category] = true
		assert.True(t, strings.HasPrefix(m.FQCN(), "hitachivantara.vspone_block.vsp.hv_"))
	}

	var withSpec []string
	for _, m := range Modules {
		if len(m.Spec) > 0 {
			withSpec = append(withSpec, m.Category)
		}
	}
	assert.Equal(t, []string{"hardware_installed", "channel_boards"}, withSpec)
	assert.Equal(t, "audit_log_transfer_dest", Modules[0].Category)
}

func TestGenerateDefaults(t *testing.T) {
	data, err := Generate(Options{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "---\n"))

	play, tasks := parsePlaybook(t, data)
	assert.Equal(t, "localhost", play["hosts"])
	assert.Equal(t, false, play["gather_facts"])
	assert.Equal(t, []any{DefaultVarsFile}, play["vars_files"])

	conn := play["vars"].(map[string]any)["connection_info"].(map[string]any)
	assert.Equal(t, "{{ storage_address }}", conn["address"])
	assert.Equal(t, "{{ vault_storage_username }}", conn["username"])
	assert.Equal(t, "{{ vault_storage_secret }}", conn["password"])

	// Two tasks per category plus aggregate, display, save and confirm.
	require.Len(t, tasks, 2*len(Modules)+4)

	save := tasks[len(tasks)-2]
	assert.Equal(t, "Save facts to JSON file", save["name"])
	assert.Equal(t, DefaultOutputFile, save["copy"].(map[string]any)["dest"])
	assert.Equal(t, "{{ combined_facts | to_nice_json }}", save["copy"].(map[string]any)["content"])
}

func TestGenerateModuleTasks(t *testing.T) {
	data, err := Generate(Options{VarsFile: "vars.yml", OutputFile: "/tmp/out.json"})
	require.NoError(t, err)
	_, tasks := parsePlaybook(t, data)

	for i, m := range Modules {
		get := tasks[2*i]
		set := tasks[2*i+1]

		assert.Equal(t, "Get "+m.Category, get["name"])
		assert.Equal(t, m.Category+"_result", get["register"])
		assert.Equal(t, true, get["ignore_errors"])

		args, ok := get[m.FQCN()].(map[string]any)
		require.True(t, ok, "task for %s should invoke %s", m.Category, m.FQCN())
		assert.Equal(t, "{{ connection_info }}", args["connection_info"])

		fact := set["set_fact"].(map[string]any)
		assert.Equal(t, fmt.Sprintf("{{ %s_result.get('data', {}) }}", m.Category), fact["all_facts_"+m.Category])
		assert.Equal(t, true, set["ignore_errors"])
	}

	aggregate := tasks[2*len(Modules)]["set_fact"].(map[string]any)["combined_facts"].(map[string]any)
	assert.Len(t, aggregate, len(Modules))
	assert.Equal(t, "{{ all_facts_ldevs }}", aggregate["ldevs"])
}

func TestGenerateMonitorSpecs(t *testing.T) {
	data, err := Generate(Options{})
	require.NoError(t, err)
	_, tasks := parsePlaybook(t, data)

	specs := map[string]map[string]any{}
	for _, tk := range tasks {
		args, ok := tk[CollectionPrefix+"hv_storage_system_monitor_facts"].(map[string]any)
		if !ok {
			continue
		}
		specs[tk["name"].(string)] = args["spec"].(map[string]any)
	}

	assert.Equal(t, map[string]map[string]any{
		"Get hardware_installed": {"query": "hardware_installed", "include_component_option": false},
		"Get channel_boards":     {"query": "channel_boards"},
	}, specs)
}

func TestGenerateRejectsBadTables(t *testing.T) {
	tests := []struct {
		name    string
		modules []Module
	}{
		{"duplicate category", []Module{{Category: "ldevs", Name: "a"}, {Category: "ldevs", Name: "b"}}},
		{"missing name", []Module{{Category: "ldevs"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(Options{Modules: tt.modules})
			assert.Error(t, err)
		})
	}
}

func TestGenerateQuotesOutputPath(t *testing.T) {
	data, err := Generate(Options{OutputFile: "facts: 2024.json"})
	require.NoError(t, err)
	_, tasks := parsePlaybook(t, data)
	assert.Equal(t, "facts: 2024.json", tasks[len(tasks)-2]["copy"].(map[string]any)["dest"])
}
