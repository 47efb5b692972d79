// Package aggregate folds per-entity summaries into a single combined view.
package aggregate

import (
	"sort"
	"time"

	"github.com/mikematt33/sprint-inspect/pkg/models"
)

// MaxCombinedItems caps the combined blocker and accomplishment lists.
const MaxCombinedItems = 20

// DefaultTitle is used for combined summaries.
const DefaultTitle = "Combined Sprint Summary - All Teams"

// Combine sums the additive metrics of every summary and recomputes the rates
// from the sums. Input order is preserved for teams, projects and team
// summaries.
func Combine(summaries []models.Summary, generatedAt time.Time) models.CombinedSummary {
	out := models.CombinedSummary{
		Title:           DefaultTitle,
		Projects:        []models.Project{},
		Teams:           []string{},
		Blockers:        []models.Blocker{},
		Accomplishments: []models.Accomplishment{},
		TeamSummaries:   make([]models.TeamSummary, 0, len(summaries)),
		GeneratedAt:     generatedAt,
	}

	seenProjects := make(map[string]bool)
	seenTeams := make(map[string]bool)

	for _, s := range summaries {
		m := s.Metrics
		t := &out.Metrics.Tally
		t.TotalIssues += m.TotalIssues
		t.CompletedIssues += m.CompletedIssues
		t.InProgressIssues += m.InProgressIssues
		t.NotStartedIssues += m.NotStartedIssues
		t.BlockedIssues += m.BlockedIssues
		t.TotalStoryPoints += m.TotalStoryPoints
		t.CompletedStoryPoints += m.CompletedStoryPoints
		out.Metrics.TotalTeamMembers += s.TeamComposition.TotalMembers

		if !seenProjects[s.Project.Key] {
			seenProjects[s.Project.Key] = true
			out.Projects = append(out.Projects, s.Project)
		}
		if !seenTeams[s.Team.Label] {
			seenTeams[s.Team.Label] = true
			out.Teams = append(out.Teams, s.Team.Label)
		}

		for _, b := range s.Blockers {
			b.Team = s.Team.Label
			b.Project = s.Project.Key
			out.Blockers = append(out.Blockers, b)
		}
		for _, a := range s.Accomplishments {
			a.Team = s.Team.Label
			a.Project = s.Project.Key
			out.Accomplishments = append(out.Accomplishments, a)
		}

		out.TeamSummaries = append(out.TeamSummaries, models.TeamSummary{
			Team:           s.Team.Label,
			Project:        s.Project.Key,
			Health:         s.Health.Overall,
			CompletionRate: m.CompletionRate,
			Velocity:       m.Velocity,
		})

		if out.RunID == "" {
			out.RunID = s.RunID
		}
	}

	out.Metrics.Recompute()

	sort.SliceStable(out.Accomplishments, func(i, j int) bool {
		return out.Accomplishments[i].StoryPoints > out.Accomplishments[j].StoryPoints
	})

	if len(out.Accomplishments) > MaxCombinedItems {
		out.Accomplishments = out.Accomplishments[:MaxCombinedItems]
	}
	if len(out.Blockers) > MaxCombinedItems {
		out.Blockers = out.Blockers[:MaxCombinedItems]
	}

	return out
}
