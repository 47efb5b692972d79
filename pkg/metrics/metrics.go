// Package metrics turns a sprint's issue list into counts, rates and buckets.
package metrics

import (
	"math"
	"strings"

	"github.com/mikematt33/sprint-inspect/pkg/models"
)

// BlockedLabel is the issue label that marks an issue as impeded.
const BlockedLabel = "blocked"

// Calculate derives the sprint metrics from the sprint dates and its issues.
// It performs no I/O and is safe on an empty issue list.
func Calculate(sprint models.Sprint, issues []models.Issue) models.Metrics {
	m := models.Metrics{
		StartDate:        sprint.StartDate,
		EndDate:          sprint.EndDate,
		DurationDays:     DurationDays(sprint),
		IssuesByType:     make(map[string]int),
		IssuesByPriority: make(map[string]int),
	}

	for _, issue := range issues {
		points := issue.Points()

		switch issue.Category {
		case models.StatusDone:
			m.Completed = append(m.Completed, issue)
			m.CompletedStoryPoints += points
		case models.StatusInProgress:
			m.InProgress = append(m.InProgress, issue)
		default:
			m.NotStarted = append(m.NotStarted, issue)
		}

		// Tag only; the issue stays in its status bucket.
		if IsBlocked(issue) {
			m.Blocked = append(m.Blocked, issue)
		}

		m.TotalStoryPoints += points
		m.IssuesByType[issue.TypeName()]++
		m.IssuesByPriority[issue.PriorityName()]++
	}

	m.TotalIssues = len(issues)
	m.CompletedIssues = len(m.Completed)
	m.InProgressIssues = len(m.InProgress)
	m.NotStartedIssues = len(m.NotStarted)
	m.BlockedIssues = len(m.Blocked)
	m.Recompute()

	return m
}

// IsBlocked reports whether the issue carries the blocked label or sits in a
// status whose name mentions blocking.
func IsBlocked(issue models.Issue) bool {
	for _, l := range issue.Labels {
		if strings.EqualFold(l, BlockedLabel) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(issue.Status), "block")
}

// DurationDays is the whole-day ceiling of end minus start, or zero when a
// date is missing or the range is inverted.
func DurationDays(sprint models.Sprint) int {
	if sprint.StartDate.IsZero() || sprint.EndDate.IsZero() {
		return 0
	}
	d := sprint.EndDate.Sub(sprint.StartDate)
	if d < 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}
