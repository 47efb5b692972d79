package insights

import (
	"fmt"

	"github.com/mikematt33/sprint-inspect/pkg/models"
)

const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// FallbackRecommendations is the fixed rule table used when no generated
// advice is available. Rules are evaluated in a fixed order and the result is
// never empty.
func FallbackRecommendations(m models.Metrics) []models.Recommendation {
	var recs []models.Recommendation

	if m.VelocityPercentage.Float() < FairBelow {
		recs = append(recs, models.Recommendation{
			Category: "Velocity",
			Priority: PriorityHigh,
			Text:     "Consider reducing sprint commitment or identifying impediments affecting team velocity",
		})
	}

	if m.BlockedIssues > 0 {
		recs = append(recs, models.Recommendation{
			Category: "Blockers",
			Priority: PriorityHigh,
			Text:     fmt.Sprintf("Address %d blocked issue(s) immediately to prevent future sprint delays", m.BlockedIssues),
		})
	}

	if m.InProgressIssues > m.CompletedIssues {
		recs = append(recs, models.Recommendation{
			Category: "WIP Limit",
			Priority: PriorityMedium,
			Text:     "Too much work in progress. Consider implementing WIP limits to improve flow",
		})
	}

	if m.NotStartedIssues > 0 {
		recs = append(recs, models.Recommendation{
			Category: "Sprint Planning",
			Priority: PriorityMedium,
			Text:     fmt.Sprintf("%d issue(s) not started. Review sprint planning and capacity", m.NotStartedIssues),
		})
	}

	if len(recs) == 0 {
		recs = append(recs, models.Recommendation{
			Category: "General",
			Priority: PriorityLow,
			Text:     "Sprint executed well. Continue current practices and look for incremental improvements",
		})
	}

	return recs
}

// NextSprintPriorities suggests what the following sprint should focus on.
func NextSprintPriorities(m models.Metrics, blockers []models.Blocker) []models.PriorityItem {
	var items []models.PriorityItem

	if m.InProgressIssues > 0 {
		items = append(items, models.PriorityItem{
			Priority: PriorityHigh,
			Item:     fmt.Sprintf("Complete %d in-progress issue(s) from previous sprint", m.InProgressIssues),
		})
	}
	if len(blockers) > 0 {
		items = append(items, models.PriorityItem{
			Priority: PriorityHigh,
			Item:     fmt.Sprintf("Resolve %d blocked issue(s)", len(blockers)),
		})
	}
	if m.NotStartedIssues > 0 {
		items = append(items, models.PriorityItem{
			Priority: PriorityMedium,
			Item:     fmt.Sprintf("Review and re-prioritize %d unstarted issue(s)", m.NotStartedIssues),
		})
	}

	return append(items,
		models.PriorityItem{Priority: PriorityMedium, Item: "Conduct sprint planning with updated velocity metrics"},
		models.PriorityItem{Priority: PriorityLow, Item: "Schedule retrospective to discuss improvements"},
	)
}

// StatusLines renders the completion and velocity sentences for a sprint.
func StatusLines(state models.SprintState, m models.Metrics) models.SprintStatus {
	if state == "" {
		state = "unknown"
	}
	return models.SprintStatus{
		Status: state,
		CompletionSummary: fmt.Sprintf("%d of %d issues completed (%s%%)",
			m.CompletedIssues, m.TotalIssues, m.CompletionRate),
		VelocitySummary: fmt.Sprintf("%s of %s story points completed (%s%%)",
			formatPoints(m.CompletedStoryPoints), formatPoints(m.TotalStoryPoints), m.VelocityPercentage),
	}
}

func formatPoints(v float64) string {
	return fmt.Sprintf("%g", v)
}
