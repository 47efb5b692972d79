package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mikematt33/sprint-inspect/pkg/models"
)

const dateLayout = "2006-01-02"

// MarkdownRenderer renders sprint summaries as Markdown documents
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(s *models.Summary, w io.Writer) error {
	m := s.Metrics

	_, _ = fmt.Fprintf(w, "# Sprint Summary: %s\n\n", s.Sprint.Name)
	_, _ = fmt.Fprintf(w, "**Project:** %s (%s)  \n", s.Project.Name, s.Project.Key)
	_, _ = fmt.Fprintf(w, "**Team:** %s  \n", s.Team.Label)
	_, _ = fmt.Fprintf(w, "**Sprint Duration:** %s - %s (%d days)  \n",
		formatDate(s.Sprint.StartDate), formatDate(s.Sprint.EndDate), m.DurationDays)
	if s.Sprint.Goal != "" {
		_, _ = fmt.Fprintf(w, "**Sprint Goal:** %s  \n", s.Sprint.Goal)
	}
	_, _ = fmt.Fprintf(w, "**Generated:** %s\n\n", s.GeneratedAt.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintln(w, "---")
	_, _ = fmt.Fprintln(w, "")

	_, _ = fmt.Fprintln(w, "## 📊 Sprint Health Metrics")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "| Metric | Value |")
	_, _ = fmt.Fprintln(w, "|--------|-------|")
	_, _ = fmt.Fprintf(w, "| **Overall Health** | **%s %s** |\n", HealthEmoji(s.Health.Overall), s.Health.Overall)
	_, _ = fmt.Fprintf(w, "| Total Issues | %d |\n", m.TotalIssues)
	_, _ = fmt.Fprintf(w, "| Completed Issues | %d |\n", m.CompletedIssues)
	_, _ = fmt.Fprintf(w, "| In Progress | %d |\n", m.InProgressIssues)
	_, _ = fmt.Fprintf(w, "| Not Started | %d |\n", m.NotStartedIssues)
	_, _ = fmt.Fprintf(w, "| Blocked | %d |\n", m.BlockedIssues)
	_, _ = fmt.Fprintf(w, "| **Completion Rate** | **%s%%** |\n", m.CompletionRate)
	_, _ = fmt.Fprintf(w, "| **Velocity (Issues)** | **%d completed** |\n", m.Velocity)
	_, _ = fmt.Fprintf(w, "| Total Story Points | %s |\n", formatPoints(m.TotalStoryPoints))
	_, _ = fmt.Fprintf(w, "| Completed Story Points | %s |\n", formatPoints(m.CompletedStoryPoints))
	_, _ = fmt.Fprintf(w, "| Story Points Completion | %s%% |\n", m.VelocityPercentage)
	_, _ = fmt.Fprintln(w, "")

	_, _ = fmt.Fprintln(w, "## 🏥 Sprint Health Analysis")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintf(w, "**Overall Status:** %s\n\n", s.Health.Overall)
	for _, ind := range s.Health.Indicators {
		_, _ = fmt.Fprintf(w, "- %s **%s:** %s - %s\n", HealthEmoji(ind.Status), ind.Name, ind.Status, ind.Message)
	}
	_, _ = fmt.Fprintln(w, "")

	_, _ = fmt.Fprintln(w, "## 💼 What the Team Worked On")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "### Issues by Type")
	for _, c := range sortedCounts(m.IssuesByType) {
		_, _ = fmt.Fprintf(w, "- %s: %d\n", c.Name, c.Count)
	}
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "### Issues by Priority")
	for _, c := range sortedCounts(m.IssuesByPriority) {
		_, _ = fmt.Fprintf(w, "- %s: %d\n", c.Name, c.Count)
	}
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "### Work Distribution")
	_, _ = fmt.Fprintf(w, "- ✅ Completed: %d issues\n", m.CompletedIssues)
	_, _ = fmt.Fprintf(w, "- 🔄 In Progress: %d issues\n", m.InProgressIssues)
	_, _ = fmt.Fprintf(w, "- ⏸️ Not Started: %d issues\n\n", m.NotStartedIssues)

	_, _ = fmt.Fprintln(w, "## 🚧 Current Blockers")
	_, _ = fmt.Fprintln(w, "")
	renderBlockers(w, s.Blockers, false)

	_, _ = fmt.Fprintln(w, "## 🎯 Key Accomplishments")
	_, _ = fmt.Fprintln(w, "")
	renderAccomplishments(w, s.Accomplishments, false)

	_, _ = fmt.Fprintln(w, "## 📋 Next Sprint Priorities")
	_, _ = fmt.Fprintln(w, "")
	for i, p := range s.NextSprintPriorities {
		_, _ = fmt.Fprintf(w, "%d. **[%s]** %s\n", i+1, p.Priority, p.Item)
	}
	_, _ = fmt.Fprintln(w, "")

	_, _ = fmt.Fprintln(w, "## 👥 Team Composition")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintf(w, "**Total Team Members:** %d\n\n", s.TeamComposition.TotalMembers)
	for _, member := range s.TeamComposition.Members {
		if member.Email != "" {
			_, _ = fmt.Fprintf(w, "- %s (%s)\n", member.DisplayName, member.Email)
		} else {
			_, _ = fmt.Fprintf(w, "- %s\n", member.DisplayName)
		}
	}
	_, _ = fmt.Fprintln(w, "")

	_, _ = fmt.Fprintln(w, "## 📈 Sprint Status")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintf(w, "**Status:** %s\n\n", s.Status.Status)
	_, _ = fmt.Fprintf(w, "- %s\n", s.Status.CompletionSummary)
	_, _ = fmt.Fprintf(w, "- %s\n\n", s.Status.VelocitySummary)

	_, _ = fmt.Fprintln(w, "## 💡 Recommendations")
	_, _ = fmt.Fprintln(w, "")
	for i, rec := range s.Recommendations {
		_, _ = fmt.Fprintf(w, "%d. **[%s] %s**  \n   %s\n\n", i+1, rec.Priority, rec.Category, rec.Text)
	}

	_, _ = fmt.Fprintln(w, "---")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintf(w, "<sub>Generated by sprint-inspect at %s</sub>\n", s.GeneratedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func (r *MarkdownRenderer) RenderCombined(c *models.CombinedSummary, w io.Writer) error {
	m := c.Metrics

	projectKeys := make([]string, 0, len(c.Projects))
	for _, p := range c.Projects {
		projectKeys = append(projectKeys, p.Key)
	}

	_, _ = fmt.Fprintf(w, "# %s\n\n", c.Title)
	_, _ = fmt.Fprintf(w, "**Generated:** %s\n\n", c.GeneratedAt.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintln(w, "---")
	_, _ = fmt.Fprintln(w, "")

	_, _ = fmt.Fprintln(w, "## 📊 Overall Metrics Across All Teams")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "| Metric | Value |")
	_, _ = fmt.Fprintln(w, "|--------|-------|")
	_, _ = fmt.Fprintf(w, "| **Projects** | %d (%s) |\n", len(c.Projects), strings.Join(projectKeys, ", "))
	_, _ = fmt.Fprintf(w, "| **Teams** | %d (%s) |\n", len(c.Teams), strings.Join(c.Teams, ", "))
	_, _ = fmt.Fprintf(w, "| **Total Issues** | %d |\n", m.TotalIssues)
	_, _ = fmt.Fprintf(w, "| **Completed Issues** | %d |\n", m.CompletedIssues)
	_, _ = fmt.Fprintf(w, "| **Completion Rate** | %s%% |\n", m.CompletionRate)
	_, _ = fmt.Fprintf(w, "| **Velocity (Issues)** | %d completed |\n", m.Velocity)
	_, _ = fmt.Fprintf(w, "| **Total Story Points** | %s |\n", formatPoints(m.TotalStoryPoints))
	_, _ = fmt.Fprintf(w, "| **Completed Story Points** | %s |\n", formatPoints(m.CompletedStoryPoints))
	_, _ = fmt.Fprintf(w, "| **Story Points Completion** | %s%% |\n", m.VelocityPercentage)
	_, _ = fmt.Fprintf(w, "| **Blocked Issues** | %d |\n", m.BlockedIssues)
	_, _ = fmt.Fprintf(w, "| **Total Team Members** | %d |\n", m.TotalTeamMembers)
	_, _ = fmt.Fprintln(w, "")

	_, _ = fmt.Fprintln(w, "## 👥 Team Summary")
	_, _ = fmt.Fprintln(w, "")
	for _, t := range c.TeamSummaries {
		_, _ = fmt.Fprintf(w, "- %s **%s** (%s): %s - Completion: %s%%, Velocity: %d\n",
			HealthEmoji(t.Health), t.Team, t.Project, t.Health, t.CompletionRate, t.Velocity)
	}
	_, _ = fmt.Fprintln(w, "")

	_, _ = fmt.Fprintln(w, "## 🚧 All Blockers (Top 20)")
	_, _ = fmt.Fprintln(w, "")
	renderBlockers(w, c.Blockers, true)

	_, _ = fmt.Fprintln(w, "## 🎯 Top Accomplishments (Top 20)")
	_, _ = fmt.Fprintln(w, "")
	renderAccomplishments(w, c.Accomplishments, true)

	_, _ = fmt.Fprintln(w, "---")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintf(w, "<sub>Combined report generated by sprint-inspect at %s</sub>\n", c.GeneratedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func renderBlockers(w io.Writer, blockers []models.Blocker, withTeam bool) {
	if len(blockers) == 0 {
		_, _ = fmt.Fprintln(w, "*No blockers identified*")
		_, _ = fmt.Fprintln(w, "")
		return
	}
	for _, b := range blockers {
		_, _ = fmt.Fprintf(w, "### %s: %s\n", b.Key, b.Summary)
		if withTeam {
			_, _ = fmt.Fprintf(w, "- **Team:** %s (%s)\n", b.Team, b.Project)
		}
		_, _ = fmt.Fprintf(w, "- **Type:** %s\n", b.Type)
		_, _ = fmt.Fprintf(w, "- **Priority:** %s\n", b.Priority)
		_, _ = fmt.Fprintf(w, "- **Assignee:** %s\n", b.Assignee)
		_, _ = fmt.Fprintf(w, "- **Status:** %s\n\n", b.Status)
	}
}

func renderAccomplishments(w io.Writer, items []models.Accomplishment, withTeam bool) {
	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, "*No completed issues*")
		_, _ = fmt.Fprintln(w, "")
		return
	}
	for i, a := range items {
		_, _ = fmt.Fprintf(w, "%d. **%s:** %s\n", i+1, a.Key, a.Summary)
		if withTeam {
			_, _ = fmt.Fprintf(w, "   - Team: %s (%s)\n", a.Team, a.Project)
		}
		_, _ = fmt.Fprintf(w, "   - Type: %s\n", a.Type)
		_, _ = fmt.Fprintf(w, "   - Priority: %s\n", a.Priority)
		_, _ = fmt.Fprintf(w, "   - Assignee: %s\n", a.Assignee)
		_, _ = fmt.Fprintf(w, "   - Story Points: %s\n\n", formatPoints(a.StoryPoints))
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "n/a"
	}
	return t.Format(dateLayout)
}
