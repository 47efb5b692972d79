package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mikematt33/sprint-inspect/internal/report"
)

// Version can be set via build flags: -ldflags "-X 'github.com/mikematt33/sprint-inspect/internal/cli.Version=v1.0.0'"
var Version = "dev"

var (
	rootCmd = &cobra.Command{
		Use:   "sprint-inspect",
		Short: "Sprint summary generator for Jira Software",
		Long: `sprint-inspect reads the most recent closed sprint of each configured Jira project
or team label and produces a health-rated summary: metrics, blockers, accomplishments,
recommendations, a combined cross-team report and a slide deck.`,
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Generate sprint summaries for the configured projects and teams",
		Long: `Collect the latest closed sprint for every project (or every team label when
team labels are configured), rate its health and write JSON, Markdown and PPTX output.

Flags override the configuration file and environment variables.`,
		Example: `  sprint-inspect run
  sprint-inspect run --projects ABC,DEF
  sprint-inspect run --projects ABC --teams backend,frontend --output ./reports
  sprint-inspect run --no-deck --provider openai --model gpt-4o-mini`,
		Args: cobra.NoArgs,
		Run:  runSprint,
	}
)

// Flags
var (
	flagConfig     string
	flagQuiet      bool
	flagVerbose    bool
	flagProjects   []string
	flagTeams      []string
	flagOutput     string
	flagNoCombined bool
	flagNoDeck     bool
	flagNoCache    bool
	flagProvider   string
	flagModel      string
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a config file (default: ./config.yaml, then the user config dir, then ./.env)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only print warnings and errors")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Print debug logging")

	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringSliceVarP(&flagProjects, "projects", "p", nil, "Jira project keys (comma-separated)")
	runCmd.Flags().StringSliceVarP(&flagTeams, "teams", "t", nil, "Team labels to summarize (comma-separated)")
	runCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output directory")
	_ = runCmd.RegisterFlagCompletionFunc("projects", completeProjects)
	_ = runCmd.RegisterFlagCompletionFunc("teams", completeTeams)
	runCmd.Flags().BoolVar(&flagNoCombined, "no-combined", false, "Skip the combined summary")
	runCmd.Flags().BoolVar(&flagNoDeck, "no-deck", false, "Skip the slide deck")
	runCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Fetch sprint issues from Jira even when cached")
	runCmd.Flags().StringVar(&flagProvider, "provider", "", "Text generation provider (openai, anthropic, openrouter)")
	_ = runCmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"openai", "anthropic", "openrouter"}, cobra.ShellCompDirectiveNoFileComp
	})
	runCmd.Flags().StringVar(&flagModel, "model", "", "Model override for the provider")
}

func runOptionsFromFlags() RunOptions {
	return RunOptions{
		ConfigPath: flagConfig,
		Projects:   flagProjects,
		Teams:      flagTeams,
		OutputDir:  flagOutput,
		NoCombined: flagNoCombined,
		NoDeck:     flagNoDeck,
		NoCache:    flagNoCache,
		Provider:   flagProvider,
		Model:      flagModel,
		Quiet:      flagQuiet,
		Verbose:    flagVerbose,
	}
}

func runSprint(cmd *cobra.Command, args []string) {
	ctx, stop := signalContext()
	defer stop()

	opts := runOptionsFromFlags()
	outcome, err := pipelineRunner(ctx, opts)
	if err != nil {
		fmt.Printf("Error running sprint summary: %v\n", err)
		os.Exit(1)
	}
	recordUsage(historyProject, opts.Projects...)
	recordUsage(historyTeam, opts.Teams...)

	printOutcome(cmd, outcome)
}

func printOutcome(cmd *cobra.Command, outcome *RunOutcome) {
	if flagQuiet {
		return
	}
	out := cmd.OutOrStdout()

	r := &report.ConsoleRenderer{NoColor: color.NoColor}
	if err := r.Render(outcome.Summaries, out); err != nil {
		fmt.Fprintf(out, "Error rendering summary table: %v\n", err)
	}

	if outcome.Skipped > 0 {
		fmt.Fprintf(out, "⚠️  %d entities skipped (see warnings above)\n", outcome.Skipped)
	}
	if len(outcome.Files) > 0 {
		fmt.Fprintf(out, "\n✅ Generated %d files:\n", len(outcome.Files))
		for _, f := range outcome.Files {
			fmt.Fprintf(out, "   %s\n", f)
		}
	}
}
