package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/mikematt33/sprint-inspect/internal/advisor"
	"github.com/mikematt33/sprint-inspect/internal/cache"
	"github.com/mikematt33/sprint-inspect/internal/collect"
	"github.com/mikematt33/sprint-inspect/internal/config"
	"github.com/mikematt33/sprint-inspect/internal/jira"
	"github.com/mikematt33/sprint-inspect/internal/llm"
	"github.com/mikematt33/sprint-inspect/internal/logger"
	"github.com/mikematt33/sprint-inspect/internal/notify"
	"github.com/mikematt33/sprint-inspect/internal/pipeline"
	"github.com/mikematt33/sprint-inspect/internal/report"
	"github.com/mikematt33/sprint-inspect/pkg/aggregate"
	"github.com/mikematt33/sprint-inspect/pkg/models"
)

// RunOptions carries command-line overrides for a single run. Zero values
// leave the loaded configuration untouched.
type RunOptions struct {
	ConfigPath string
	Projects   []string
	Teams      []string
	OutputDir  string
	NoCombined bool
	NoDeck     bool
	NoCache    bool
	Provider   string
	Model      string
	Quiet      bool
	Verbose    bool
}

// RunOutcome is what a finished run produced.
type RunOutcome struct {
	RunID     string
	Summaries []models.Summary
	Combined  *models.CombinedSummary
	Files     []string
	Skipped   int
}

var pipelineRunner = RunSprintPipeline

// loadRunConfig loads configuration and applies flag overrides. Validation
// happens here so nothing touches the network with a broken config.
func loadRunConfig(opts RunOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if len(opts.Projects) > 0 {
		cfg.Jira.ProjectKeys = opts.Projects
	}
	if len(opts.Teams) > 0 {
		cfg.Jira.TeamLabels = opts.Teams
	}
	if opts.OutputDir != "" {
		cfg.Output.Dir = opts.OutputDir
	}
	if opts.NoCombined {
		cfg.Output.Combined = false
	}
	if opts.NoDeck {
		cfg.Output.Presentation = false
	}
	if opts.NoCache {
		cfg.Cache.Enabled = false
	}
	if opts.Provider != "" {
		cfg.LLM.Provider = opts.Provider
	}
	if opts.Model != "" {
		cfg.LLM.Model = opts.Model
	}
	switch {
	case opts.Verbose:
		cfg.Log.Level = "debug"
	case opts.Quiet:
		cfg.Log.Level = "warn"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunSprintPipeline executes one complete, stateless run: collect every entity,
// summarize it, then write per-entity, combined and deck output. With the issue
// cache enabled, closed-sprint issue lists may come from disk instead of Jira.
func RunSprintPipeline(ctx context.Context, opts RunOptions) (*RunOutcome, error) {
	cfg, err := loadRunConfig(opts)
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	provider, err := llm.New(cfg.LLM.Provider, cfg.LLM.APIKey, cfg.LLM.Model)
	if err != nil {
		return nil, fmt.Errorf("error configuring llm provider: %w", err)
	}

	client := jira.NewClient(jira.Options{
		Host:             cfg.Jira.Host,
		Email:            cfg.Jira.Email,
		APIToken:         cfg.Jira.APIToken,
		StoryPointFields: cfg.Jira.StoryPointFields,
		Timeout:          cfg.Jira.Timeout,
		Logger:           log,
	})

	tracker := newTracker(cfg, client, log)
	tasks := collect.Plan(cfg.Jira.ProjectKeys, cfg.Jira.TeamLabels)
	outcome := &RunOutcome{RunID: uuid.NewString()}

	log.Info().
		Str("run", outcome.RunID).
		Int("entities", len(tasks)).
		Str("provider", cfg.LLM.Provider).
		Str("model", llm.ModelFor(cfg.LLM.Provider, cfg.LLM.Model)).
		Bool("generated_text", provider != nil).
		Msg("starting sprint summary run")

	bar := newProgressBar(len(tasks), opts.Quiet)
	p := pipeline.New(collect.New(tracker, log), advisor.New(provider, log), log)
	res, err := p.Run(ctx, tasks, outcome.RunID, cfg.Output.Presentation, func(collect.Task) {
		if bar != nil {
			_ = bar.Add(1)
		}
	})
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("run cancelled by user")
		}
		return nil, err
	}

	outcome.Summaries = res.Summaries
	outcome.Skipped = len(res.Skipped)
	if len(res.Summaries) == 0 {
		log.Warn().Int("skipped", outcome.Skipped).Msg("no sprint summaries generated")
		return outcome, nil
	}

	if err := writeOutputs(cfg, res, outcome); err != nil {
		return nil, err
	}

	sendDigest(ctx, cfg, log, outcome)
	return outcome, nil
}

func writeOutputs(cfg *config.Config, res *pipeline.Result, outcome *RunOutcome) error {
	w := report.NewWriter(cfg.Output.Dir)

	for i := range res.Summaries {
		paths, err := w.WriteSummary(&res.Summaries[i])
		outcome.Files = append(outcome.Files, paths...)
		if err != nil {
			return err
		}
	}

	now := time.Now()
	if cfg.Output.Combined && len(res.Summaries) > 1 {
		combined := aggregate.Combine(res.Summaries, now)
		outcome.Combined = &combined
		paths, err := w.WriteCombined(&combined)
		outcome.Files = append(outcome.Files, paths...)
		if err != nil {
			return err
		}
	}

	if cfg.Output.Presentation {
		path, err := w.WriteDeck(report.Deck{
			Summaries:   res.Summaries,
			Slides:      res.Slides,
			GeneratedAt: now,
		})
		if err != nil {
			return err
		}
		outcome.Files = append(outcome.Files, path)
	}
	return nil
}

// sendDigest posts the run overview to Telegram when configured. Failures only warn.
func sendDigest(ctx context.Context, cfg *config.Config, log zerolog.Logger, outcome *RunOutcome) {
	if cfg.Telegram.BotToken == "" || len(cfg.Telegram.ChatIDs) == 0 {
		return
	}
	tg, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatIDs, log)
	if err != nil {
		log.Warn().Err(err).Msg("telegram digest disabled")
		return
	}
	if err := tg.Send(ctx, notify.Digest(outcome.Summaries, outcome.Combined)); err != nil {
		log.Warn().Err(err).Msg("telegram digest failed")
	}
}

// newTracker puts the issue cache in front of the Jira client when enabled.
// A cache that cannot be opened only costs speed.
func newTracker(cfg *config.Config, client *jira.Client, log zerolog.Logger) collect.Tracker {
	if !cfg.Cache.Enabled {
		return client
	}
	store, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL)
	if err != nil {
		log.Warn().Err(err).Msg("issue cache disabled")
		return client
	}
	log.Debug().Str("dir", store.Dir()).Dur("ttl", store.TTL()).Msg("issue cache enabled")
	return collect.NewCachedTracker(client, store, collect.CacheNamespace(cfg.Jira.Host, cfg.Jira.StoryPointFields), log)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\n⚠️  Received interrupt signal. Cancelling run...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// newProgressBar returns nil when stderr is not a terminal or output is quiet.
func newProgressBar(total int, quiet bool) *progressbar.ProgressBar {
	if quiet || total == 0 || !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Summarizing sprints"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("entities"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
