package report

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikematt33/sprint-inspect/pkg/baseline"
	"github.com/mikematt33/sprint-inspect/pkg/models"
)

func fixtureSummary() models.Summary {
	generated := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	tally := models.Tally{
		TotalIssues:          10,
		CompletedIssues:      6,
		InProgressIssues:     3,
		NotStartedIssues:     1,
		BlockedIssues:        1,
		TotalStoryPoints:     20,
		CompletedStoryPoints: 15,
	}
	tally.Recompute()

	return models.Summary{
		RunID: "run-1",
		Sprint: models.SprintInfo{
			ID:        7,
			Name:      "Sprint 42",
			State:     models.SprintClosed,
			StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
			Goal:      "Ship checkout",
		},
		Project: models.Project{Key: "PROJ", Name: "Project"},
		Team:    models.TeamInfo{Label: "Team Alpha!"},
		Metrics: models.Metrics{
			Tally:            tally,
			DurationDays:     13,
			IssuesByType:     map[string]int{"Story": 6, "Bug": 4},
			IssuesByPriority: map[string]int{"High": 3, "Medium": 7},
		},
		Health: models.HealthRating{
			Overall: models.HealthFair,
			Indicators: []models.Indicator{
				{Name: "Velocity", Status: models.HealthFair, Message: "75.0% of story points completed"},
			},
		},
		Blockers: []models.Blocker{
			{Key: "PROJ-9", Summary: "Waiting on vendor", Type: "Bug", Priority: "High", Assignee: "Ann", Status: "Blocked"},
		},
		Accomplishments: []models.Accomplishment{
			{Key: "PROJ-1", Summary: "Checkout flow", Type: "Story", Priority: "High", Assignee: "Bob", StoryPoints: 5},
		},
		NextSprintPriorities: []models.PriorityItem{{Priority: "High", Item: "Resolve 1 blocked issue(s)"}},
		TeamComposition: models.TeamComposition{
			TotalMembers: 2,
			Members:      []models.User{{DisplayName: "Ann", Email: "ann@example.com"}, {DisplayName: "Bob"}},
		},
		Status: models.SprintStatus{
			Status:            models.SprintClosed,
			CompletionSummary: "6 of 10 issues completed (60.0%)",
			VelocitySummary:   "15 of 20 story points completed (75.0%)",
		},
		Recommendations: []models.Recommendation{{Category: "Blockers", Priority: "High", Text: "Unblock PROJ-9"}},
		GeneratedAt:     generated,
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		project, team, ext string
		want               string
	}{
		{"PROJ", "Team Alpha!", "json", "sprint-summary-PROJ-Team_Alpha_.json"},
		{"PROJ", "backend", "md", "sprint-summary-PROJ-backend.md"},
		{"ABC", models.DefaultTeamLabel, "json", "sprint-summary-ABC-All_Teams.json"},
		{"ABC", "a/b.c", "md", "sprint-summary-ABC-a_b_c.md"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.project, tt.team, tt.ext))
		})
	}

	assert.Equal(t, "sprint-summary-combined.md", CombinedFilename(FormatMarkdown.Ext()))
	assert.Equal(t, "sprint-summary-combined.json", CombinedFilename(FormatJSON.Ext()))
}

func TestJSONRenderer(t *testing.T) {
	s := fixtureSummary()
	var buf bytes.Buffer
	require.NoError(t, (&JSONRenderer{}).Render(&s, &buf))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	for _, key := range []string{"sprintInfo", "projectInfo", "teamInfo", "sprintHealthMetrics",
		"sprintHealthAnalysis", "currentBlockers", "keyAccomplishments", "recommendations", "generatedAt"} {
		assert.Contains(t, raw, key)
	}

	metrics := raw["sprintHealthMetrics"].(map[string]any)
	assert.Equal(t, 60.0, metrics["completionRate"])
	assert.Equal(t, 75.0, metrics["velocityPercentage"])

	var decoded models.Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, s.Metrics.Tally, decoded.Metrics.Tally)
	assert.Equal(t, s.Blockers, decoded.Blockers)
}

func TestMarkdownRenderer(t *testing.T) {
	s := fixtureSummary()
	var buf bytes.Buffer
	require.NoError(t, (&MarkdownRenderer{}).Render(&s, &buf))
	out := buf.String()

	for _, want := range []string{
		"# Sprint Summary: Sprint 42",
		"**Project:** Project (PROJ)",
		"**Sprint Goal:** Ship checkout",
		"2024-03-01 - 2024-03-14 (13 days)",
		"| **Completion Rate** | **60.0%** |",
		"| Story Points Completion | 75.0% |",
		"### PROJ-9: Waiting on vendor",
		"1. **PROJ-1:** Checkout flow",
		"- Ann (ann@example.com)",
		"- 6 of 10 issues completed (60.0%)",
		"**[High] Blockers**",
	} {
		assert.Contains(t, out, want)
	}

	// Histograms are ordered by count descending.
	assert.Less(t, strings.Index(out, "- Story: 6"), strings.Index(out, "- Bug: 4"))
}

func TestMarkdownRenderer_NoBlockers(t *testing.T) {
	s := fixtureSummary()
	s.Blockers = nil
	s.Accomplishments = nil

	var buf bytes.Buffer
	require.NoError(t, (&MarkdownRenderer{}).Render(&s, &buf))
	assert.Contains(t, buf.String(), "*No blockers identified*")
	assert.Contains(t, buf.String(), "*No completed issues*")
}

func TestMarkdownRenderer_Combined(t *testing.T) {
	c := &models.CombinedSummary{
		Title:    "Combined Sprint Summary - All Teams",
		Projects: []models.Project{{Key: "A"}, {Key: "B"}},
		Teams:    []string{"alpha", "beta"},
		Blockers: []models.Blocker{{Key: "A-1", Summary: "Stuck", Team: "alpha", Project: "A"}},
		TeamSummaries: []models.TeamSummary{
			{Team: "alpha", Project: "A", Health: models.HealthGood, CompletionRate: 90, Velocity: 9},
		},
	}
	c.Metrics.TotalIssues = 11
	c.Metrics.CompletedIssues = 9
	c.Metrics.Recompute()

	var buf bytes.Buffer
	require.NoError(t, (&MarkdownRenderer{}).RenderCombined(c, &buf))
	out := buf.String()

	assert.Contains(t, out, "# Combined Sprint Summary - All Teams")
	assert.Contains(t, out, "| **Projects** | 2 (A, B) |")
	assert.Contains(t, out, "| **Completion Rate** | 81.8% |")
	assert.Contains(t, out, "**alpha** (A): Good - Completion: 90.0%, Velocity: 9")
	assert.Contains(t, out, "- **Team:** alpha (A)")
	assert.Contains(t, out, "*No completed issues*")
}

func TestConsoleRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := &ConsoleRenderer{NoColor: true}
	require.NoError(t, r.Render([]models.Summary{fixtureSummary()}, &buf))

	out := buf.String()
	assert.Contains(t, out, "PROJECT")
	assert.Contains(t, out, "Team Alpha!")
	assert.Contains(t, out, "Fair")
	assert.Contains(t, out, "60.0%")

	buf.Reset()
	require.NoError(t, r.Render(nil, &buf))
	assert.Contains(t, buf.String(), "No sprint summaries generated.")
}

func TestDeckRenderer(t *testing.T) {
	a := fixtureSummary()
	b := fixtureSummary()
	b.Team.Label = "Team <Beta> & Co"
	b.Health.Overall = models.HealthPoor

	content := models.SlideContent{
		HealthSummary:   models.SlideSection{Title: "Sprint Health", Bullets: []string{"60.0% complete"}},
		Accomplishments: models.SlideSection{Title: "Accomplishments", Bullets: []string{"PROJ-1"}},
		Blockers:        models.SlideSection{Title: "Blockers", Bullets: []string{"PROJ-9"}},
		Recommendations: models.SlideSection{Title: "Recommendations", Bullets: []string{"[High] Unblock"}},
	}

	var buf bytes.Buffer
	err := (&DeckRenderer{}).Render(Deck{
		Summaries:   []models.Summary{a, b},
		Slides:      []models.SlideContent{content, content},
		GeneratedAt: a.GeneratedAt,
	}, &buf)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		_ = rc.Close()
		files[f.Name] = string(data)
	}

	slides := 0
	for name := range files {
		if strings.HasPrefix(name, "ppt/slides/slide") {
			slides++
		}
	}
	assert.Equal(t, 3, slides, "title slide plus one per summary")
	assert.Contains(t, files, "[Content_Types].xml")
	assert.Contains(t, files["[Content_Types].xml"], "/ppt/slides/slide3.xml")

	assert.Contains(t, files["ppt/slides/slide1.xml"], "Projects: PROJ")
	assert.Contains(t, files["ppt/slides/slide2.xml"], "Team: Team Alpha! (PROJ) - Health: Fair")
	assert.Contains(t, files["ppt/slides/slide2.xml"], colorFair)
	assert.Contains(t, files["ppt/slides/slide3.xml"], "Team &lt;Beta&gt; &amp; Co")
	assert.Contains(t, files["ppt/slides/slide3.xml"], colorPoor)
	assert.Contains(t, files["ppt/slides/slide3.xml"], "• [High] Unblock")
}

func TestDeckRenderer_Mismatch(t *testing.T) {
	err := (&DeckRenderer{}).Render(Deck{Summaries: []models.Summary{fixtureSummary()}}, io.Discard)
	assert.Error(t, err)
}

func TestWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	w := NewWriter(dir)
	s := fixtureSummary()

	paths, err := w.WriteSummary(&s)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "sprint-summary-PROJ-Team_Alpha_.json"), paths[0])
	assert.Equal(t, filepath.Join(dir, "sprint-summary-PROJ-Team_Alpha_.md"), paths[1])

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Sprint Summary: Sprint 42"))

	deck, err := w.WriteDeck(Deck{Summaries: []models.Summary{s}, Slides: []models.SlideContent{{}}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DeckFilename), deck)
}

func TestWriter_UnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	w := NewWriter(filepath.Join(file, "out"))
	s := fixtureSummary()
	_, err := w.WriteSummary(&s)
	assert.Error(t, err)
}

func TestComparisonTextRenderer(t *testing.T) {
	prev := &baseline.Snapshot{
		Label:   "alpha",
		Metrics: models.Tally{TotalIssues: 10, CompletedIssues: 8, CompletionRate: 80},
		Teams:   []models.TeamSummary{{Team: "alpha", Project: "A", Health: models.HealthGood, CompletionRate: 80}},
	}
	curr := &baseline.Snapshot{
		Label:   "alpha",
		Metrics: models.Tally{TotalIssues: 10, CompletedIssues: 5, CompletionRate: 50},
		Teams:   []models.TeamSummary{{Team: "alpha", Project: "A", Health: models.HealthPoor, CompletionRate: 50}},
	}

	var buf bytes.Buffer
	r := &ComparisonTextRenderer{NoColor: true}
	require.NoError(t, r.Render(baseline.Compare(curr, prev), &buf))

	out := buf.String()
	assert.Contains(t, out, "REGRESSION DETECTED")
	assert.Contains(t, out, "completion_rate")
	assert.Contains(t, out, "alpha (A): Good → Poor")

	buf.Reset()
	require.NoError(t, (&ComparisonJSONRenderer{}).Render(baseline.Compare(curr, prev), &buf))
	assert.Contains(t, buf.String(), `"has_regression": true`)
}
