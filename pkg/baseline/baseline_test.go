package baseline

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikematt33/sprint-inspect/pkg/models"
)

func createTestSummary(team string, done, total, blocked int, health models.HealthLevel) models.Summary {
	s := models.Summary{
		Sprint:      models.SprintInfo{Name: "Sprint 12"},
		Project:     models.Project{Key: "PROJ", Name: "Project"},
		Team:        models.TeamInfo{Label: team},
		Health:      models.HealthRating{Overall: health},
		GeneratedAt: time.Date(2025, 4, 4, 10, 0, 0, 0, time.UTC),
	}
	s.Metrics.TotalIssues = total
	s.Metrics.CompletedIssues = done
	s.Metrics.NotStartedIssues = total - done
	s.Metrics.BlockedIssues = blocked
	s.Metrics.TotalStoryPoints = float64(total * 2)
	s.Metrics.CompletedStoryPoints = float64(done * 2)
	s.Metrics.Recompute()
	return s
}

func writeJSON(t *testing.T, dir, name string, v any) string {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	return path
}

func TestLoadTeamSummary(t *testing.T) {
	path := writeJSON(t, t.TempDir(), "team.json", createTestSummary("Alpha", 6, 10, 1, models.HealthFair))

	snap, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load summary: %v", err)
	}

	if snap.Label != "Alpha" {
		t.Errorf("Expected label Alpha, got %s", snap.Label)
	}
	if snap.Metrics.CompletionRate.String() != "60.0" {
		t.Errorf("Expected completion rate 60.0, got %s", snap.Metrics.CompletionRate)
	}
	if len(snap.Teams) != 1 || snap.Teams[0].Health != models.HealthFair {
		t.Errorf("Expected a single Fair team entry, got %+v", snap.Teams)
	}
	if snap.Sprint != "Sprint 12" {
		t.Errorf("Expected sprint name, got %q", snap.Sprint)
	}
}

func TestLoadCombinedSummary(t *testing.T) {
	combined := models.CombinedSummary{
		Title: "Combined Sprint Summary - All Teams",
		TeamSummaries: []models.TeamSummary{
			{Team: "Alpha", Project: "PROJ", Health: models.HealthGood},
			{Team: "Beta", Project: "PROJ", Health: models.HealthPoor},
		},
	}
	combined.Metrics.TotalIssues = 4
	combined.Metrics.CompletedIssues = 2
	combined.Metrics.Recompute()

	snap, err := Load(writeJSON(t, t.TempDir(), "combined.json", combined))
	if err != nil {
		t.Fatalf("Failed to load summary: %v", err)
	}

	if len(snap.Teams) != 2 {
		t.Errorf("Expected 2 teams, got %d", len(snap.Teams))
	}
	if snap.Metrics.CompletionRate.String() != "50.0" {
		t.Errorf("Expected completion rate 50.0, got %s", snap.Metrics.CompletionRate)
	}
}

func TestLoadNonExistent(t *testing.T) {
	_, err := Load("/nonexistent/path/summary.json")
	if err == nil {
		t.Error("Expected error when loading nonexistent summary")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "invalid.json")

	if err := os.WriteFile(path, []byte("invalid json"), 0644); err != nil {
		t.Fatalf("Failed to write invalid JSON: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error when loading invalid JSON")
	}
}

func TestLoadUnrelatedJSON(t *testing.T) {
	path := writeJSON(t, t.TempDir(), "other.json", map[string]int{"answer": 42})

	_, err := Load(path)
	if !errors.Is(err, ErrNotSummary) {
		t.Errorf("Expected ErrNotSummary, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	dir := t.TempDir()
	prev, err := Load(writeJSON(t, dir, "prev.json", createTestSummary("Alpha", 5, 10, 2, models.HealthPoor)))
	if err != nil {
		t.Fatal(err)
	}
	curr, err := Load(writeJSON(t, dir, "curr.json", createTestSummary("Alpha", 9, 10, 0, models.HealthGood)))
	if err != nil {
		t.Fatal(err)
	}

	result := Compare(curr, prev)
	if result == nil {
		t.Fatal("Expected comparison result")
	}

	if result.Summary.CompletionRateDelta != 40.0 {
		t.Errorf("Expected completion rate delta 40.0, got %f", result.Summary.CompletionRateDelta)
	}
	if result.Summary.BlockedIssueDelta != -2 {
		t.Errorf("Expected blocked delta -2, got %d", result.Summary.BlockedIssueDelta)
	}
	if result.Summary.HasRegression {
		t.Error("Expected no regression")
	}
	if result.Summary.TeamsImproved != 1 {
		t.Errorf("Expected 1 improved team, got %d", result.Summary.TeamsImproved)
	}
	if result.Summary.TotalDegradedMetrics != 0 {
		t.Errorf("Expected no degraded metrics, got %d", result.Summary.TotalDegradedMetrics)
	}
	if len(result.TeamDiff) != 1 || result.TeamDiff[0].VelocityDelta != 4 {
		t.Errorf("Unexpected team diff: %+v", result.TeamDiff)
	}
}

func TestCompareWithRegression(t *testing.T) {
	prev := &Snapshot{Teams: []models.TeamSummary{{Team: "Alpha", Project: "PROJ", Health: models.HealthGood}}}
	prev.Metrics.CompletionRate = 90
	curr := &Snapshot{Teams: []models.TeamSummary{{Team: "alpha", Project: "proj", Health: models.HealthFair}}}
	curr.Metrics.CompletionRate = 85

	result := Compare(curr, prev)

	if !result.Summary.HasRegression {
		t.Error("Expected regression when a team's health degrades")
	}
	if result.Summary.TeamsDegraded != 1 {
		t.Errorf("Expected 1 degraded team, got %d", result.Summary.TeamsDegraded)
	}
}

func TestCompareNewTeam(t *testing.T) {
	prev := &Snapshot{Teams: []models.TeamSummary{{Team: "Alpha", Project: "PROJ"}}}
	curr := &Snapshot{Teams: []models.TeamSummary{{Team: "Gamma", Project: "PROJ"}}}

	result := Compare(curr, prev)

	if len(result.TeamDiff) != 0 {
		t.Errorf("Expected new teams to be skipped, got %d deltas", len(result.TeamDiff))
	}
}

func TestCompareNil(t *testing.T) {
	if Compare(nil, &Snapshot{}) != nil {
		t.Error("Expected nil result for nil current")
	}
}

func TestRegressionDetectionThresholds(t *testing.T) {
	tests := []struct {
		name       string
		prev, curr models.Tally
		expect     bool
	}{
		{
			name:   "Completion drop within tolerance",
			prev:   models.Tally{CompletionRate: 80},
			curr:   models.Tally{CompletionRate: 71},
			expect: false,
		},
		{
			name:   "Completion drop beyond tolerance",
			prev:   models.Tally{CompletionRate: 80},
			curr:   models.Tally{CompletionRate: 69},
			expect: true,
		},
		{
			name:   "Velocity collapse",
			prev:   models.Tally{VelocityPercentage: 90},
			curr:   models.Tally{VelocityPercentage: 50},
			expect: true,
		},
		{
			name:   "Blockers pile up",
			prev:   models.Tally{BlockedIssues: 1},
			curr:   models.Tally{BlockedIssues: 4},
			expect: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Compare(&Snapshot{Metrics: tt.curr}, &Snapshot{Metrics: tt.prev})
			if result.Summary.HasRegression != tt.expect {
				t.Errorf("HasRegression = %v, want %v", result.Summary.HasRegression, tt.expect)
			}
		})
	}
}

func TestIsImprovement(t *testing.T) {
	tests := []struct {
		key    string
		delta  float64
		expect bool
	}{
		{"completion_rate", 5, true},
		{"completion_rate", -5, false},
		{"blocked_issues", -1, true},
		{"blocked_issues", 1, false},
		{"todo_issues", -2, true},
		{"in_progress_issues", 3, false},
		{"completed_story_points", 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := isImprovement(tt.key, tt.delta); got != tt.expect {
				t.Errorf("isImprovement(%s, %v) = %v, want %v", tt.key, tt.delta, got, tt.expect)
			}
		})
	}
}
