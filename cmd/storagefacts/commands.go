package main

import (
	"fmt"
	"strings"
	"time"

	"storagefacts/pkg/facts"
	"storagefacts/pkg/utils"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func summaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Display summary statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := opts.load()
			if err != nil {
				return err
			}
			summary, err := doc.Summarize()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, summary)
			}

			t := newTable("", "CATEGORY", "ITEMS")
			for _, c := range summary.Categories {
				status := mutedStyle.Render("-")
				if c.Count > 0 {
					status = successStyle.Render("✓")
				}
				t.Row(status, c.Category, fmt.Sprintf("%6d", c.Count))
			}

			content := strings.Join([]string{
				field("File", summary.File),
				field("Size", utils.FormatDataSize(doc.Size)),
				field("Loaded", time.Now().Format("2006-01-02 15:04:05")),
				field("Total Fact Categories", fmt.Sprintf("%d", len(summary.Categories))),
				"",
				t.Render(),
				"",
				field("Total Items", fmt.Sprintf("%d", summary.TotalItems)),
			}, "\n")

			fmt.Fprintln(out, createPanel("Storage Facts Summary", content))
			return nil
		},
	}
}

func listCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all fact categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := opts.load()
			if err != nil {
				return err
			}
			names, err := doc.List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, names)
			}

			fmt.Fprintln(out, titleStyle.Render("Available Fact Categories:"))
			fmt.Fprintln(out, bulletList(names))
			return nil
		},
	}
}

func validateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate JSON structure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := opts.load()
			if err != nil {
				return err
			}
			report := doc.Validate()
			opts.logger.Debug("Validation finished",
				zap.Int("errors", len(report.Errors)),
				zap.Int("warnings", len(report.Warnings)))

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				if err := writeJSON(out, report); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(out, titleStyle.Render("Validating Storage Facts JSON..."))
				if report.OK() {
					printSuccess(out, "No errors found")
				} else {
					fmt.Fprintln(out, dangerStyle.Render(fmt.Sprintf("✗ Errors found (%d):", len(report.Errors))))
					fmt.Fprintln(out, bulletList(report.Errors))
				}
				if len(report.Warnings) > 0 {
					fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("! Warnings (%d):", len(report.Warnings))))
					fmt.Fprintln(out, bulletList(report.Warnings))
				}
			}

			if !report.OK() {
				return fmt.Errorf("validation failed with %d error(s)", len(report.Errors))
			}
			return nil
		},
	}
}

func extractCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "extract <category>",
		Short: "Extract specific category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := opts.load()
			if err != nil {
				return err
			}
			if err := doc.Extract(args[0], output); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Extracted '%s' to %s", args[0], output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.MarkFlagRequired("output")
	return cmd
}

func countCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "count <category>",
		Short: "Count items in category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := opts.load()
			if err != nil {
				return err
			}
			n, err := doc.Count(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, map[string]any{"category": args[0], "count": n})
			}
			fmt.Fprintf(out, "Category '%s' contains %d items\n", args[0], n)
			return nil
		},
	}
}

func filterCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "filter <category> <key> <value>",
		Short: "Filter items in category",
		Long: `Keep the items of a category whose field <key> is a string exactly equal
to <value>. No type coercion or nested field lookup is performed.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, key, value := args[0], args[1], args[2]

			doc, err := opts.load()
			if err != nil {
				return err
			}
			n, err := doc.Filter(category, key, value, output)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSuccess(out, "Filtered %d items from '%s' where %s=%s", n, category, key, value)
			printSuccess(out, "Results saved to %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.MarkFlagRequired("output")
	return cmd
}

func exportCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <category>",
		Short: "Export category as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := opts.load()
			if err != nil {
				return err
			}
			res, err := doc.Export(args[0], output)
			if err != nil {
				return err
			}

			cols := res.Columns
			suffix := ""
			if len(cols) > 5 {
				cols = cols[:5]
				suffix = "..."
			}

			out := cmd.OutOrStdout()
			printSuccess(out, "Exported %d items from '%s' to %s", res.Rows, args[0], output)
			printSuccess(out, "Columns: %s%s", strings.Join(cols, ", "), suffix)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.MarkFlagRequired("output")
	return cmd
}

func diffCmd(opts *rootOptions) *cobra.Command {
	var compare string

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare with another file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := opts.load()
			if err != nil {
				return err
			}
			other, err := facts.Load(compare)
			if err != nil {
				return fmt.Errorf("could not load file %s: %w", compare, err)
			}
			report, err := doc.Diff(other)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, report)
			}

			fmt.Fprintln(out, titleStyle.Render("Comparing Storage Facts Files..."))
			fmt.Fprintln(out, field("First", opts.file))
			fmt.Fprintln(out, field("Second", compare))
			fmt.Fprintln(out)
			fmt.Fprintln(out, valueStyle.Render(fmt.Sprintf("Categories in first file only (%d):", len(report.OnlyInFirst))))
			fmt.Fprintln(out, bulletList(report.OnlyInFirst))
			fmt.Fprintln(out, valueStyle.Render(fmt.Sprintf("Categories in second file only (%d):", len(report.OnlyInSecond))))
			fmt.Fprintln(out, bulletList(report.OnlyInSecond))
			fmt.Fprintln(out, valueStyle.Render(fmt.Sprintf("Common categories (%d):", len(report.Common))))

			if len(report.Common) == 0 {
				fmt.Fprintln(out, bulletList(nil))
				return nil
			}

			t := newTable("", "CATEGORY", "FIRST", "SECOND")
			for _, c := range report.Common {
				symbol := successStyle.Render("=")
				if !c.Equal {
					symbol = warningStyle.Render("≠")
				}
				t.Row(symbol, c.Category, fmt.Sprintf("%6d", c.FirstCount), fmt.Sprintf("%6d", c.SecondCount))
			}
			fmt.Fprintln(out, lipgloss.NewStyle().MarginLeft(2).Render(t.Render()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&compare, "compare", "c", "", "file to compare with")
	cmd.MarkFlagRequired("compare")
	return cmd
}
