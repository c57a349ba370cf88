package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"storagefacts/pkg/config"
	"storagefacts/pkg/facts"
	"storagefacts/pkg/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	file       string
	jsonOutput bool
	verbose    bool
	logger     *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	env := config.LoadFromEnv()

	rootCmd := &cobra.Command{
		Use:   "storagefacts",
		Short: "Process and analyze storage facts JSON",
		Long: `Read-only reporting over an aggregated storage facts document produced
by storagefacts-gather: summaries, extraction, filtering, CSV export,
validation and comparison of two snapshots.`,
		Example: `  storagefacts -f all_storage_facts.json summary
  storagefacts -f all_storage_facts.json extract ldevs -o ldevs.json
  storagefacts -f all_storage_facts.json filter ldevs status Defined -o active_ldevs.json
  storagefacts -f all_storage_facts.json export ldevs -o ldevs.csv
  storagefacts -f all_storage_facts.json diff -c all_storage_facts_old.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger = logging.New(opts.verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.file, "file", "f", env.FactsFile, "path to storage facts JSON file")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print reports as JSON")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(
		summaryCmd(opts),
		listCmd(opts),
		validateCmd(opts),
		extractCmd(opts),
		countCmd(opts),
		filterCmd(opts),
		exportCmd(opts),
		diffCmd(opts),
	)

	return rootCmd
}

func (o *rootOptions) load() (*facts.Document, error) {
	if o.file == "" {
		return nil, fmt.Errorf(`required flag "file" not set`)
	}
	doc, err := facts.Load(o.file)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("Loaded facts document",
		zap.String("file", o.file),
		zap.Int("categories", len(doc.Categories)),
		zap.Bool("object_root", doc.IsObject()))
	return doc, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
