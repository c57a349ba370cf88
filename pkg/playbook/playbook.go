package playbook

import (
	"bytes"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultVarsFile holds storage_address and the vault credentials.
	DefaultVarsFile = "ansible_vault_vars/ansible_vault_storage_var.yml"
	// DefaultOutputFile is where the aggregated facts are written.
	DefaultOutputFile = "all_storage_facts.json"
	// DefaultRolePlaybook is the pre-existing playbook used in role mode.
	DefaultRolePlaybook = "gather_all_facts.yml"
	// RoleOutputVar is the extra var the role playbook reads its output path from.
	RoleOutputVar = "facts_output_file"
)

// Options control playbook generation.
type Options struct {
	VarsFile   string
	OutputFile string
	// Modules defaults to the package-level Modules table.
	Modules []Module
}

// Generate renders the fact gathering playbook. Every module task tolerates
// failure so a broken category ends up empty instead of aborting the run.
func Generate(opts Options) ([]byte, error) {
	if opts.VarsFile == "" {
		opts.VarsFile = DefaultVarsFile
	}
	if opts.OutputFile == "" {
		opts.OutputFile = DefaultOutputFile
	}
	if len(opts.Modules) == 0 {
		opts.Modules = Modules
	}

	seen := make(map[string]bool, len(opts.Modules))
	for _, m := range opts.Modules {
		if m.Category == "" || m.Name == "" {
			return nil, fmt.Errorf("module entry needs both category and name: %+v", m)
		}
		if seen[m.Category] {
			return nil, fmt.Errorf("duplicate category %q", m.Category)
		}
		seen[m.Category] = true
	}

	play := newMapping()
	play.add("name", str("Gather All Storage System Facts"))
	play.add("hosts", str("localhost"))
	play.add("gather_facts", boolean(false))
	play.add("vars_files", sequence(str(opts.VarsFile)))

	conn := newMapping()
	conn.add("address", jinja("{{ storage_address }}"))
	conn.add("username", jinja("{{ vault_storage_username }}"))
	conn.add("password", jinja("{{ vault_storage_secret }}"))
	vars := newMapping()
	vars.add("connection_info", conn.Node)
	play.add("vars", vars.Node)

	tasks := sequence()
	for _, m := range opts.Modules {
		tasks.Content = append(tasks.Content, moduleTasks(m)...)
	}
	tasks.Content = append(tasks.Content, aggregateTasks(opts)...)
	play.add("tasks", tasks)

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(sequence(play.Node)); err != nil {
		return nil, fmt.Errorf("failed to encode playbook: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode playbook: %w", err)
	}
	return buf.Bytes(), nil
}

func moduleTasks(m Module) []*yaml.Node {
	args := newMapping()
	args.add("connection_info", jinja("{{ connection_info }}"))
	if len(m.Spec) > 0 {
		spec := newMapping()
		for _, kv := range m.Spec {
			spec.add(kv.Key, scalar(kv.Value))
		}
		args.add("spec", spec.Node)
	}

	get := newMapping()
	get.add("name", str("Get "+m.Category))
	get.add(m.FQCN(), args.Node)
	get.add("register", str(m.Category+"_result"))
	get.add("ignore_errors", boolean(true))

	fact := newMapping()
	fact.add(factVar(m.Category),
		jinja(fmt.Sprintf("{{ %s_result.get('data', {}) }}", m.Category)))
	set := newMapping()
	set.add("name", str("Set fact for "+m.Category))
	set.add("set_fact", fact.Node)
	set.add("ignore_errors", boolean(true))

	return []*yaml.Node{get.Node, set.Node}
}

func aggregateTasks(opts Options) []*yaml.Node {
	combined := newMapping()
	for _, m := range opts.Modules {
		combined.add(m.Category, jinja("{{ "+factVar(m.Category)+" }}"))
	}
	setCombined := newMapping()
	setCombined.add("combined_facts", combined.Node)
	aggregate := newMapping()
	aggregate.add("name", str("Aggregate all facts"))
	aggregate.add("set_fact", setCombined.Node)

	display := newMapping()
	display.add("name", str("Display aggregated facts"))
	display.add("debug", msg("Aggregated {{ combined_facts | length }} fact categories"))

	copyArgs := newMapping()
	copyArgs.add("content", jinja("{{ combined_facts | to_nice_json }}"))
	copyArgs.add("dest", str(opts.OutputFile))
	save := newMapping()
	save.add("name", str("Save facts to JSON file"))
	save.add("copy", copyArgs.Node)
	save.add("register", str("save_result"))

	confirm := newMapping()
	confirm.add("name", str("Confirm file saved"))
	confirm.add("debug", msg("Facts saved to {{ save_result.dest }}"))

	return []*yaml.Node{aggregate.Node, display.Node, save.Node, confirm.Node}
}

func factVar(category string) string {
	return "all_facts_" + category
}

type mapping struct {
	*yaml.Node
}

func newMapping() mapping {
	return mapping{&yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

func (m mapping) add(key string, value *yaml.Node) {
	m.Content = append(m.Content, str(key), value)
}

func sequence(items ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: items}
}

func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// jinja scalars are always double quoted; a bare leading "{" would be read as
// a flow mapping.
func jinja(expr string) *yaml.Node {
	n := str(expr)
	n.Style = yaml.DoubleQuotedStyle
	return n
}

func boolean(b bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}
}

func msg(text string) *yaml.Node {
	m := newMapping()
	m.add("msg", jinja(text))
	return m.Node
}

func scalar(v any) *yaml.Node {
	switch val := v.(type) {
	case bool:
		return boolean(val)
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(val)}
	case string:
		return str(val)
	default:
		return str(fmt.Sprint(val))
	}
}
