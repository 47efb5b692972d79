// Package pipeline turns collected sprint data into finished summaries.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/mikematt33/sprint-inspect/internal/collect"
	"github.com/mikematt33/sprint-inspect/pkg/insights"
	"github.com/mikematt33/sprint-inspect/pkg/metrics"
	"github.com/mikematt33/sprint-inspect/pkg/models"
)

// Collector resolves one task into sprint data.
type Collector interface {
	Collect(ctx context.Context, task collect.Task) (models.SprintData, error)
}

// Advisor supplies narrative content. Both methods must always return usable output.
type Advisor interface {
	Recommend(ctx context.Context, s models.Summary) []models.Recommendation
	Slides(ctx context.Context, s models.Summary) models.SlideContent
}

// Skip records a task that produced no summary.
type Skip struct {
	Task collect.Task
	Err  error
}

// Result holds the summaries in task order. Slides is parallel to Summaries
// and empty when slides were not requested.
type Result struct {
	Summaries []models.Summary
	Slides    []models.SlideContent
	Skipped   []Skip
}

type Pipeline struct {
	collector Collector
	advisor   Advisor
	log       zerolog.Logger
	now       func() time.Time
}

func New(collector Collector, advisor Advisor, log zerolog.Logger) *Pipeline {
	return &Pipeline{collector: collector, advisor: advisor, log: log, now: time.Now}
}

// Run processes tasks one at a time. A task that fails is logged and skipped;
// only cancellation of ctx stops the run early. onDone, when set, is called
// after every task.
func (p *Pipeline) Run(ctx context.Context, tasks []collect.Task, runID string, withSlides bool, onDone func(collect.Task)) (*Result, error) {
	res := &Result{}

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		data, err := p.collector.Collect(ctx, task)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return res, err
			}
			p.log.Warn().Err(err).Str("task", task.String()).Msg("skipping entity")
			res.Skipped = append(res.Skipped, Skip{Task: task, Err: err})
			if onDone != nil {
				onDone(task)
			}
			continue
		}

		p.log.Debug().
			Str("project", data.Project.Key).
			Str("team", data.TeamLabel).
			Str("sprint", data.Sprint.Name).
			Int("issues", len(data.Issues)).
			Msg("collected sprint")

		summary := Summarize(data, runID, p.now())
		summary.Recommendations = p.advisor.Recommend(ctx, summary)
		res.Summaries = append(res.Summaries, summary)

		if withSlides {
			res.Slides = append(res.Slides, p.advisor.Slides(ctx, summary))
		}
		if onDone != nil {
			onDone(task)
		}
	}

	return res, nil
}

// Summarize derives everything except recommendations from one entity's data.
func Summarize(data models.SprintData, runID string, now time.Time) models.Summary {
	m := metrics.Calculate(data.Sprint, data.Issues)
	blockers := insights.ExtractBlockers(m)

	label := data.TeamLabel
	if label == "" {
		label = models.DefaultTeamLabel
	}

	members := data.TeamMembers
	if members == nil {
		members = []models.User{}
	}

	return models.Summary{
		RunID: runID,
		Sprint: models.SprintInfo{
			ID:        data.Sprint.ID,
			Name:      data.Sprint.Name,
			State:     data.Sprint.State,
			StartDate: data.Sprint.StartDate,
			EndDate:   data.Sprint.EndDate,
			Goal:      data.Sprint.Goal,
			BoardID:   data.Board.ID,
			BoardName: data.Board.Name,
		},
		Project:              data.Project,
		Team:                 models.TeamInfo{Label: label},
		Metrics:              m,
		Health:               insights.ClassifyHealth(m),
		Blockers:             blockers,
		Accomplishments:      insights.ExtractAccomplishments(m),
		NextSprintPriorities: insights.NextSprintPriorities(m, blockers),
		TeamComposition: models.TeamComposition{
			TotalMembers: len(members),
			Members:      members,
		},
		Status:          insights.StatusLines(data.Sprint.State, m),
		Recommendations: []models.Recommendation{},
		GeneratedAt:     now,
	}
}
