package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mikematt33/sprint-inspect/internal/report"
	"github.com/mikematt33/sprint-inspect/pkg/baseline"
)

var (
	flagCompareFormat    string
	flagFailOnRegression bool
)

var compareCmd = &cobra.Command{
	Use:   "compare [previous.json] [current.json]",
	Short: "Compare two sprint summary files",
	Long: `Compare two summary JSON files written by earlier runs, either per-team files or
combined files, and report how completion, story points, blockers and team health moved.`,
	Example: `  sprint-inspect compare last/sprint-summary-combined.json output/sprint-summary-combined.json
  sprint-inspect compare old.json new.json --format=json
  sprint-inspect compare old.json new.json --fail-on-regression`,
	Args: func(cmd *cobra.Command, args []string) error {
		if flagCompareFormat != "text" && flagCompareFormat != "json" {
			return fmt.Errorf("invalid format: %s (must be text or json)", flagCompareFormat)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	Run: runComparison,
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringVarP(&flagCompareFormat, "format", "f", "text", "Output format (text, json)")
	_ = compareCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	compareCmd.Flags().BoolVar(&flagFailOnRegression, "fail-on-regression", false, "Exit with code 1 when a regression is detected")
}

func runComparison(cmd *cobra.Command, args []string) {
	comp, err := compareFiles(args[0], args[1], flagCompareFormat, cmd.OutOrStdout())
	if err != nil {
		fmt.Printf("Error comparing summaries: %v\n", err)
		os.Exit(1)
	}

	if flagFailOnRegression && comp.Summary.HasRegression {
		fmt.Println("\n❌ Failure: regression detected against the previous sprint.")
		os.Exit(1)
	}
}

func compareFiles(previousPath, currentPath, format string, w io.Writer) (*baseline.ComparisonResult, error) {
	previous, err := baseline.Load(previousPath)
	if err != nil {
		return nil, err
	}
	current, err := baseline.Load(currentPath)
	if err != nil {
		return nil, err
	}

	comp := baseline.Compare(current, previous)
	if format == "json" {
		err = (&report.ComparisonJSONRenderer{}).Render(comp, w)
	} else {
		err = (&report.ComparisonTextRenderer{NoColor: color.NoColor}).Render(comp, w)
	}
	if err != nil {
		return nil, fmt.Errorf("error rendering comparison: %w", err)
	}
	return comp, nil
}
