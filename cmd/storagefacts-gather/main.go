package main

import (
	"fmt"
	"io"
	"os"

	"storagefacts/pkg/aggregator"
	"storagefacts/pkg/config"
	"storagefacts/pkg/logging"
	"storagefacts/pkg/utils"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			Border(lipgloss.DoubleBorder(), true, false).
			BorderForeground(lipgloss.Color("#6272A4"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4")).
			Width(22)

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#50FA7B"))

	failureStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5555"))
)

type gatherOptions struct {
	configFile        string
	outputFile        string
	varsFile          string
	vaultPasswordFile string
	useRole           bool
	rolePlaybook      string
	ansiblePlaybook   string
	keepPlaybook      bool
	printPlaybook     bool
	workDir           string
	verbose           bool
}

func main() {
	if err := newRootCmd(aggregator.NewExecRunner()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(runner aggregator.Runner) *cobra.Command {
	opts := &gatherOptions{}
	env := config.LoadFromEnv()

	cmd := &cobra.Command{
		Use:   "storagefacts-gather",
		Short: "Gather all storage system facts into a JSON file",
		Long: `Generate an Ansible playbook that runs every vspone_block fact module
against the storage array, execute it with ansible-playbook, and verify the
aggregated JSON document it writes.`,
		Example: `  # Using default settings
  storagefacts-gather

  # Specify custom output file
  storagefacts-gather --output-file /tmp/storage_facts.json

  # Use vault password file
  storagefacts-gather --vault-password-file ~/.vault_pass

  # Run the pre-existing role playbook instead of generating one
  storagefacts-gather --use-role`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(opts.verbose)
			defer logger.Sync()

			cfg, err := opts.resolve(cmd, env)
			if err != nil {
				return err
			}

			agg := aggregator.New(cfg, runner, logger, aggregator.WithWorkDir(opts.workDir))
			out := cmd.OutOrStdout()

			if opts.printPlaybook {
				content, err := agg.Playbook()
				if err != nil {
					return err
				}
				_, err = out.Write(content)
				return err
			}

			printBanner(out, cfg)

			result, err := agg.Run(cmd.Context())
			if err != nil {
				fmt.Fprintln(out, failureStyle.Render("[✗] "+err.Error()))
				return err
			}

			fmt.Fprintln(out, successStyle.Render("[✓] Facts successfully gathered and saved to: "+result.OutputFile))
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("[✓] JSON file contains %d fact categories (%s)",
				result.Categories, utils.FormatDataSize(result.Size))))
			if n := len(result.Validation.Warnings); n > 0 {
				logger.Info("Some categories are empty or malformed; run 'storagefacts validate' for details",
					zap.Int("warnings", n))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configFile, "config", "c", "", "YAML config file")
	f.StringVarP(&opts.outputFile, "output-file", "o", env.OutputFile, "output JSON file path")
	f.StringVarP(&opts.varsFile, "vars-file", "v", env.VarsFile, "path to Ansible vault variables file")
	f.StringVarP(&opts.vaultPasswordFile, "vault-password-file", "p", env.VaultPasswordFile, "path to Ansible vault password file")
	f.BoolVar(&opts.useRole, "use-role", env.Mode == config.ModeRole, "use the existing Ansible role instead of generating a playbook")
	f.StringVar(&opts.rolePlaybook, "role-playbook", env.RolePlaybook, "playbook run in role mode")
	f.StringVar(&opts.ansiblePlaybook, "ansible-playbook", env.AnsiblePlaybook, "ansible-playbook executable")
	f.BoolVar(&opts.keepPlaybook, "keep-playbook", false, "keep the generated playbook after the run")
	f.BoolVar(&opts.printPlaybook, "print-playbook", false, "print the generated playbook and exit")
	f.StringVar(&opts.workDir, "work-dir", ".", "directory the generated playbook is written to")
	f.BoolVar(&opts.verbose, "verbose", false, "enable verbose logging")

	return cmd
}

// resolve merges defaults, environment, the optional config file and
// explicitly set flags, in increasing order of precedence.
func (o *gatherOptions) resolve(cmd *cobra.Command, env *config.Config) (*config.Config, error) {
	cfg := env
	if o.configFile != "" {
		var err error
		cfg, err = config.LoadConfig(o.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	changed := cmd.Flags().Changed
	if o.configFile == "" || changed("output-file") {
		cfg.OutputFile = o.outputFile
	}
	if o.configFile == "" || changed("vars-file") {
		cfg.VarsFile = o.varsFile
	}
	if o.configFile == "" || changed("vault-password-file") {
		cfg.VaultPasswordFile = o.vaultPasswordFile
	}
	if o.configFile == "" || changed("role-playbook") {
		cfg.RolePlaybook = o.rolePlaybook
	}
	if o.configFile == "" || changed("ansible-playbook") {
		cfg.AnsiblePlaybook = o.ansiblePlaybook
	}
	if o.configFile == "" || changed("use-role") {
		cfg.Mode = config.ModeGenerate
		if o.useRole {
			cfg.Mode = config.ModeRole
		}
	}
	if changed("keep-playbook") {
		cfg.KeepPlaybook = o.keepPlaybook
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printBanner(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, titleStyle.Render("Storage Facts Aggregator"))
	fmt.Fprintln(w, labelStyle.Render("Mode:")+string(cfg.Mode))
	fmt.Fprintln(w, labelStyle.Render("Output file:")+cfg.OutputFile)
	if cfg.Mode == config.ModeRole {
		fmt.Fprintln(w, labelStyle.Render("Role playbook:")+cfg.RolePlaybook)
	} else {
		fmt.Fprintln(w, labelStyle.Render("Vars file:")+cfg.VarsFile)
	}
	if cfg.VaultPasswordFile != "" {
		fmt.Fprintln(w, labelStyle.Render("Vault password file:")+cfg.VaultPasswordFile)
	}
	fmt.Fprintln(w)
}
