package models

import (
	"time"
)

// StatusCategory is the three-way bucket an issue's workflow status maps to.
type StatusCategory string

const (
	StatusDone       StatusCategory = "done"
	StatusInProgress StatusCategory = "in-progress"
	StatusNotStarted StatusCategory = "not-started"
)

// SprintState mirrors the Jira Agile sprint lifecycle.
type SprintState string

const (
	SprintActive SprintState = "active"
	SprintClosed SprintState = "closed"
	SprintFuture SprintState = "future"
)

// User is a Jira account as it appears on an issue.
type User struct {
	AccountID   string `json:"accountId,omitempty"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
}

// Issue is a single work item fetched from the tracker.
// It is treated as immutable once fetched.
type Issue struct {
	Key         string         `json:"key"`
	Summary     string         `json:"summary"`
	Type        string         `json:"type"`
	Status      string         `json:"status"`   // raw workflow status name, e.g. "Blocked"
	Category    StatusCategory `json:"category"` // done / in-progress / not-started
	StoryPoints *float64       `json:"storyPoints,omitempty"`
	Priority    string         `json:"priority,omitempty"`
	Assignee    *User          `json:"assignee,omitempty"`
	Labels      []string       `json:"labels,omitempty"`
}

// Points returns the issue's story points, or zero when unestimated.
func (i Issue) Points() float64 {
	if i.StoryPoints == nil {
		return 0
	}
	return *i.StoryPoints
}

// AssigneeName returns the assignee display name or "Unassigned".
func (i Issue) AssigneeName() string {
	if i.Assignee == nil || i.Assignee.DisplayName == "" {
		return "Unassigned"
	}
	return i.Assignee.DisplayName
}

// PriorityName returns the priority or "None" when the issue has none.
func (i Issue) PriorityName() string {
	if i.Priority == "" {
		return "None"
	}
	return i.Priority
}

// TypeName returns the issue type or "Unknown".
func (i Issue) TypeName() string {
	if i.Type == "" {
		return "Unknown"
	}
	return i.Type
}

// Board is a Jira Software board. ProjectKey is the project the board was listed for.
type Board struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	ProjectKey string `json:"projectKey"`
}

// Sprint is a time-boxed batch of issues on a board.
type Sprint struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	State        SprintState `json:"state"`
	StartDate    time.Time   `json:"startDate"`
	EndDate      time.Time   `json:"endDate"`
	CompleteDate time.Time   `json:"completeDate,omitempty"`
	Goal         string      `json:"goal,omitempty"`
	BoardID      int64       `json:"boardId,omitempty"`
}

// Project is the subset of Jira project metadata used in reports.
type Project struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// SprintData is everything the collector gathered for one (project, team) entity.
type SprintData struct {
	Sprint      Sprint  `json:"sprint"`
	Board       Board   `json:"board"`
	Project     Project `json:"project"`
	TeamLabel   string  `json:"teamLabel,omitempty"` // empty when no team filtering applied
	Issues      []Issue `json:"issues"`
	TeamMembers []User  `json:"teamMembers"`
}
