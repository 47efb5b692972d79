package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var (
	flagCron   string
	flagRunNow bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run sprint summaries on a cron schedule",
	Long: `Run the full summary pipeline on a five-field cron schedule until interrupted.
Each tick is an independent run with its own run ID. Run flags such as --projects
and --output are accepted and apply to every tick.`,
	Example: `  sprint-inspect schedule
  sprint-inspect schedule --cron "0 9 * * MON" --run-now`,
	Args: cobra.NoArgs,
	Run:  runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().StringVar(&flagCron, "cron", "", "Cron spec (default from SCHEDULE_CRON or config)")
	scheduleCmd.Flags().BoolVar(&flagRunNow, "run-now", false, "Also run once immediately")
	scheduleCmd.Flags().StringSliceVarP(&flagProjects, "projects", "p", nil, "Jira project keys (comma-separated)")
	scheduleCmd.Flags().StringSliceVarP(&flagTeams, "teams", "t", nil, "Team labels to summarize (comma-separated)")
	scheduleCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output directory")
	_ = scheduleCmd.RegisterFlagCompletionFunc("projects", completeProjects)
	_ = scheduleCmd.RegisterFlagCompletionFunc("teams", completeTeams)
}

// newScheduler parses a standard five-field spec and registers job on it.
func newScheduler(spec string, job func()) (*cron.Cron, error) {
	c := cron.New(
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(spec, job); err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return c, nil
}

func runSchedule(cmd *cobra.Command, args []string) {
	opts := runOptionsFromFlags()

	// Fail fast on configuration problems rather than at the first tick.
	cfg, err := loadRunConfig(opts)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	spec := flagCron
	if spec == "" {
		spec = cfg.Schedule.Cron
	}

	ctx, stop := signalContext()
	defer stop()

	tick := func() { runScheduledOnce(ctx, cmd, opts) }
	c, err := newScheduler(spec, tick)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if flagRunNow {
		tick()
	}

	c.Start()
	if entries := c.Entries(); len(entries) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "⏰ Scheduled %q, next run at %s\n", spec, entries[0].Next.Format(time.RFC3339))
	}

	<-ctx.Done()
	<-c.Stop().Done()
}

func runScheduledOnce(ctx context.Context, cmd *cobra.Command, opts RunOptions) {
	if ctx.Err() != nil {
		return
	}
	outcome, err := pipelineRunner(ctx, opts)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "❌ Scheduled run failed: %v\n", err)
		return
	}
	printOutcome(cmd, outcome)
}
