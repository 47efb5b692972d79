package baseline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mikematt33/sprint-inspect/pkg/insights"
	"github.com/mikematt33/sprint-inspect/pkg/models"
)

// ErrNotSummary is returned when a JSON file is neither a per-team nor a combined summary.
var ErrNotSummary = errors.New("not a sprint summary file")

// Snapshot is the comparable part of a previously written summary file.
// Per-team files become a snapshot with a single team entry.
type Snapshot struct {
	Path        string               `json:"path"`
	Label       string               `json:"label"`
	Sprint      string               `json:"sprint,omitempty"`
	Metrics     models.Tally         `json:"metrics"`
	Teams       []models.TeamSummary `json:"teams"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// ComparisonResult contains the delta between two summary files
type ComparisonResult struct {
	Current    *Snapshot         `json:"current"`
	Previous   *Snapshot         `json:"previous"`
	MetricDiff []MetricChange    `json:"metric_diff"`
	TeamDiff   []TeamDelta       `json:"team_diff"`
	Summary    ComparisonSummary `json:"summary"`
}

// MetricChange represents the change in a metric
type MetricChange struct {
	Key          string  `json:"key"`
	Previous     float64 `json:"previous"`
	Current      float64 `json:"current"`
	Delta        float64 `json:"delta"`
	PercentDelta float64 `json:"percent_delta"`
	Improved     bool    `json:"improved"`
}

// TeamDelta tracks one team present in both files.
type TeamDelta struct {
	Team                string             `json:"team"`
	Project             string             `json:"project"`
	PreviousHealth      models.HealthLevel `json:"previous_health"`
	CurrentHealth       models.HealthLevel `json:"current_health"`
	CompletionRateDelta float64            `json:"completion_rate_delta"`
	VelocityDelta       int                `json:"velocity_delta"`
}

// ComparisonSummary provides high-level comparison stats
type ComparisonSummary struct {
	HasRegression        bool    `json:"has_regression"`
	CompletionRateDelta  float64 `json:"completion_rate_delta"`
	VelocityPercentDelta float64 `json:"velocity_percentage_delta"`
	BlockedIssueDelta    int     `json:"blocked_issue_delta"`
	TeamsDegraded        int     `json:"teams_degraded"`
	TeamsImproved        int     `json:"teams_improved"`
	TotalImprovedMetrics int     `json:"total_improved_metrics"`
	TotalDegradedMetrics int     `json:"total_degraded_metrics"`
}

// summaryFile covers the fields shared by per-team and combined summary JSON.
type summaryFile struct {
	Title  string `json:"title"`
	Sprint struct {
		Name string `json:"name"`
	} `json:"sprintInfo"`
	Project models.Project  `json:"projectInfo"`
	Team    models.TeamInfo `json:"teamInfo"`
	Metrics models.Tally    `json:"sprintHealthMetrics"`
	Health  struct {
		Overall models.HealthLevel `json:"overallHealth"`
	} `json:"sprintHealthAnalysis"`
	TeamSummaries []models.TeamSummary `json:"teamSummaries"`
	GeneratedAt   time.Time            `json:"generatedAt"`
}

// Load reads a summary file written by a previous run
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary: %w", err)
	}

	var raw summaryFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}

	snap := &Snapshot{
		Path:        path,
		Sprint:      raw.Sprint.Name,
		Metrics:     raw.Metrics,
		GeneratedAt: raw.GeneratedAt,
	}

	switch {
	case raw.Title != "":
		snap.Label = raw.Title
		snap.Teams = raw.TeamSummaries
	case raw.Team.Label != "":
		snap.Label = raw.Team.Label
		snap.Teams = []models.TeamSummary{{
			Team:           raw.Team.Label,
			Project:        raw.Project.Key,
			Health:         raw.Health.Overall,
			CompletionRate: raw.Metrics.CompletionRate,
			Velocity:       raw.Metrics.Velocity,
		}}
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrNotSummary)
	}

	return snap, nil
}

// Compare generates a comparison between current and previous summaries
func Compare(current, previous *Snapshot) *ComparisonResult {
	if current == nil || previous == nil {
		return nil
	}

	result := &ComparisonResult{
		Current:    current,
		Previous:   previous,
		MetricDiff: compareTally(current.Metrics, previous.Metrics),
		TeamDiff:   make([]TeamDelta, 0),
	}

	prevTeams := make(map[string]models.TeamSummary)
	for _, t := range previous.Teams {
		prevTeams[teamKey(t)] = t
	}

	for _, curr := range current.Teams {
		prev, ok := prevTeams[teamKey(curr)]
		if !ok {
			continue // New team, skip comparison
		}
		result.TeamDiff = append(result.TeamDiff, TeamDelta{
			Team:                curr.Team,
			Project:             curr.Project,
			PreviousHealth:      prev.Health,
			CurrentHealth:       curr.Health,
			CompletionRateDelta: round1(curr.CompletionRate.Float() - prev.CompletionRate.Float()),
			VelocityDelta:       curr.Velocity - prev.Velocity,
		})
	}

	result.Summary = generateSummary(current, previous, result)
	return result
}

func teamKey(t models.TeamSummary) string {
	return strings.ToLower(t.Project + "/" + t.Team)
}

func compareTally(curr, prev models.Tally) []MetricChange {
	pairs := []struct {
		key        string
		prev, curr float64
	}{
		{"total_issues", float64(prev.TotalIssues), float64(curr.TotalIssues)},
		{"completed_issues", float64(prev.CompletedIssues), float64(curr.CompletedIssues)},
		{"in_progress_issues", float64(prev.InProgressIssues), float64(curr.InProgressIssues)},
		{"todo_issues", float64(prev.NotStartedIssues), float64(curr.NotStartedIssues)},
		{"blocked_issues", float64(prev.BlockedIssues), float64(curr.BlockedIssues)},
		{"total_story_points", prev.TotalStoryPoints, curr.TotalStoryPoints},
		{"completed_story_points", prev.CompletedStoryPoints, curr.CompletedStoryPoints},
		{"completion_rate", prev.CompletionRate.Float(), curr.CompletionRate.Float()},
		{"velocity_percentage", prev.VelocityPercentage.Float(), curr.VelocityPercentage.Float()},
	}

	changes := make([]MetricChange, 0, len(pairs))
	for _, p := range pairs {
		if p.curr == p.prev {
			continue
		}
		change := MetricChange{
			Key:      p.key,
			Previous: p.prev,
			Current:  p.curr,
			Delta:    round1(p.curr - p.prev),
		}
		if p.prev != 0 {
			change.PercentDelta = round1((p.curr - p.prev) / p.prev * 100)
		}
		change.Improved = isImprovement(p.key, change.Delta)
		changes = append(changes, change)
	}
	return changes
}

// isImprovement determines if a metric change is positive
func isImprovement(key string, delta float64) bool {
	// Metrics where lower is better
	improvesWithDecrease := []string{
		"blocked_",
		"todo_",
		"in_progress_",
	}

	for _, pattern := range improvesWithDecrease {
		if strings.HasPrefix(key, pattern) {
			return delta < 0
		}
	}

	// Default: assume higher is better
	return delta > 0
}

// generateSummary creates a high-level comparison summary
func generateSummary(current, previous *Snapshot, result *ComparisonResult) ComparisonSummary {
	summary := ComparisonSummary{
		CompletionRateDelta:  round1(current.Metrics.CompletionRate.Float() - previous.Metrics.CompletionRate.Float()),
		VelocityPercentDelta: round1(current.Metrics.VelocityPercentage.Float() - previous.Metrics.VelocityPercentage.Float()),
		BlockedIssueDelta:    current.Metrics.BlockedIssues - previous.Metrics.BlockedIssues,
	}

	for _, change := range result.MetricDiff {
		if change.Improved {
			summary.TotalImprovedMetrics++
		} else {
			summary.TotalDegradedMetrics++
		}
	}

	for _, team := range result.TeamDiff {
		switch prev, curr := insights.Severity(team.PreviousHealth), insights.Severity(team.CurrentHealth); {
		case curr > prev:
			summary.TeamsDegraded++
		case curr < prev:
			summary.TeamsImproved++
		}
	}

	// Determine if there's a regression (conservative definition)
	summary.HasRegression = summary.CompletionRateDelta < -10 ||
		summary.VelocityPercentDelta < -10 ||
		summary.BlockedIssueDelta > 2 ||
		summary.TeamsDegraded > 0

	return summary
}

func round1(v float64) float64 {
	return models.NewPercent(v, 100).Float()
}
