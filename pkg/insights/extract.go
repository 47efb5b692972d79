package insights

import (
	"sort"

	"github.com/mikematt33/sprint-inspect/pkg/models"
)

// MaxAccomplishments caps the per-entity accomplishment list.
const MaxAccomplishments = 10

var priorityRank = map[string]int{
	"Highest": 0,
	"High":    1,
	"Medium":  2,
	"Low":     3,
	"Lowest":  4,
}

// PriorityRank orders Jira priority names; unknown names sort last.
func PriorityRank(priority string) int {
	if r, ok := priorityRank[priority]; ok {
		return r
	}
	return len(priorityRank)
}

// ExtractAccomplishments returns up to MaxAccomplishments completed issues,
// highest priority first. Equal priorities keep their original order.
func ExtractAccomplishments(m models.Metrics) []models.Accomplishment {
	completed := make([]models.Issue, len(m.Completed))
	copy(completed, m.Completed)

	sort.SliceStable(completed, func(i, j int) bool {
		return PriorityRank(completed[i].Priority) < PriorityRank(completed[j].Priority)
	})

	if len(completed) > MaxAccomplishments {
		completed = completed[:MaxAccomplishments]
	}

	out := make([]models.Accomplishment, 0, len(completed))
	for _, issue := range completed {
		out = append(out, models.Accomplishment{
			Key:         issue.Key,
			Summary:     issue.Summary,
			Type:        issue.TypeName(),
			Priority:    issue.PriorityName(),
			Assignee:    issue.AssigneeName(),
			StoryPoints: issue.Points(),
		})
	}
	return out
}

// ExtractBlockers projects every blocked issue, in bucket order.
func ExtractBlockers(m models.Metrics) []models.Blocker {
	out := make([]models.Blocker, 0, len(m.Blocked))
	for _, issue := range m.Blocked {
		status := issue.Status
		if status == "" {
			status = "Unknown"
		}
		out = append(out, models.Blocker{
			Key:      issue.Key,
			Summary:  issue.Summary,
			Type:     issue.TypeName(),
			Priority: issue.PriorityName(),
			Assignee: issue.AssigneeName(),
			Status:   status,
		})
	}
	return out
}
