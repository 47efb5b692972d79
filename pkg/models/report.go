package models

import (
	"time"
)

// DefaultTeamLabel is used when a summary was produced without team filtering.
const DefaultTeamLabel = "All Teams"

// HealthLevel is the three-level sprint health judgment. Indicators may also carry Warning.
type HealthLevel string

const (
	HealthGood    HealthLevel = "Good"
	HealthFair    HealthLevel = "Fair"
	HealthPoor    HealthLevel = "Poor"
	HealthWarning HealthLevel = "Warning"
)

// Tally holds the additive sprint counts and the rates derived from them.
// It is shared by per-entity and combined metrics.
type Tally struct {
	TotalIssues          int     `json:"totalIssues"`
	CompletedIssues      int     `json:"completedIssues"`
	InProgressIssues     int     `json:"inProgressIssues"`
	NotStartedIssues     int     `json:"todoIssues"`
	BlockedIssues        int     `json:"blockedIssues"` // overlapping tag, not a partition
	TotalStoryPoints     float64 `json:"totalStoryPoints"`
	CompletedStoryPoints float64 `json:"completedStoryPoints"`
	Velocity             int     `json:"velocity"` // completed issue count
	CompletionRate       Percent `json:"completionRate"`
	VelocityPercentage   Percent `json:"velocityPercentage"`
}

// Recompute derives both rates and the issue velocity from the counts.
func (t *Tally) Recompute() {
	t.Velocity = t.CompletedIssues
	t.CompletionRate = NewPercent(float64(t.CompletedIssues), float64(t.TotalIssues))
	t.VelocityPercentage = NewPercent(t.CompletedStoryPoints, t.TotalStoryPoints)
}

// Metrics is derived from one sprint's issues and never persisted on its own.
type Metrics struct {
	Tally
	DurationDays     int            `json:"sprintDurationDays"`
	StartDate        time.Time      `json:"startDate"`
	EndDate          time.Time      `json:"endDate"`
	IssuesByType     map[string]int `json:"issuesByType"`
	IssuesByPriority map[string]int `json:"issuesByPriority"`

	Completed  []Issue `json:"-"`
	InProgress []Issue `json:"-"`
	NotStarted []Issue `json:"-"`
	Blocked    []Issue `json:"-"`
}

// Indicator is one named health check result.
type Indicator struct {
	Name    string      `json:"indicator"`
	Status  HealthLevel `json:"status"`
	Message string      `json:"message"`
}

// HealthRating is the overall judgment plus the ordered indicators that produced it.
type HealthRating struct {
	Overall    HealthLevel `json:"overallHealth"`
	Indicators []Indicator `json:"healthIndicators"`
}

// Accomplishment is a compact projection of a completed issue.
type Accomplishment struct {
	Key         string  `json:"key"`
	Summary     string  `json:"summary"`
	Type        string  `json:"type"`
	Priority    string  `json:"priority"`
	Assignee    string  `json:"assignee"`
	StoryPoints float64 `json:"storyPoints"`
	Team        string  `json:"team,omitempty"`
	Project     string  `json:"project,omitempty"`
}

// Blocker is a compact projection of a blocked issue.
type Blocker struct {
	Key      string `json:"key"`
	Summary  string `json:"summary"`
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Assignee string `json:"assignee"`
	Status   string `json:"status"`
	Team     string `json:"team,omitempty"`
	Project  string `json:"project,omitempty"`
}

// Recommendation is one piece of prioritized advice.
type Recommendation struct {
	Category string `json:"category"`
	Priority string `json:"priority"` // High, Medium or Low
	Text     string `json:"recommendation"`
}

// PriorityItem is a suggested focus for the next sprint.
type PriorityItem struct {
	Priority string `json:"priority"`
	Item     string `json:"item"`
}

// SprintInfo is the sprint as presented in a summary.
type SprintInfo struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	State     SprintState `json:"state"`
	StartDate time.Time   `json:"startDate"`
	EndDate   time.Time   `json:"endDate"`
	Goal      string      `json:"goal"`
	BoardID   int64       `json:"boardId,omitempty"`
	BoardName string      `json:"boardName,omitempty"`
}

// TeamInfo identifies the team a summary was filtered to.
type TeamInfo struct {
	Label string `json:"label"`
}

// TeamComposition lists the distinct assignees seen in the sprint.
type TeamComposition struct {
	TotalMembers int    `json:"totalMembers"`
	Members      []User `json:"members"`
}

// SprintStatus holds the human-readable completion lines.
type SprintStatus struct {
	Status            SprintState `json:"status"`
	CompletionSummary string      `json:"completionSummary"`
	VelocitySummary   string      `json:"velocitySummary"`
}

// Summary is the finished result for one (project, team) pair.
// It is never mutated after creation; renderers only read it.
type Summary struct {
	RunID                string           `json:"runId,omitempty"`
	Sprint               SprintInfo       `json:"sprintInfo"`
	Project              Project          `json:"projectInfo"`
	Team                 TeamInfo         `json:"teamInfo"`
	Metrics              Metrics          `json:"sprintHealthMetrics"`
	Health               HealthRating     `json:"sprintHealthAnalysis"`
	Blockers             []Blocker        `json:"currentBlockers"`
	Accomplishments      []Accomplishment `json:"keyAccomplishments"`
	NextSprintPriorities []PriorityItem   `json:"nextSprintPriorities"`
	TeamComposition      TeamComposition  `json:"teamComposition"`
	Status               SprintStatus     `json:"sprintStatus"`
	Recommendations      []Recommendation `json:"recommendations"`
	GeneratedAt          time.Time        `json:"generatedAt"`
}

// CombinedMetrics is the Tally summed across entities.
type CombinedMetrics struct {
	Tally
	TotalTeamMembers int `json:"totalTeamMembers"`
}

// TeamSummary is the one-line view of an entity inside a combined summary.
type TeamSummary struct {
	Team           string      `json:"team"`
	Project        string      `json:"project"`
	Health         HealthLevel `json:"health"`
	CompletionRate Percent     `json:"completionRate"`
	Velocity       int         `json:"velocity"`
}

// CombinedSummary is a read-only aggregation over several summaries.
type CombinedSummary struct {
	RunID           string           `json:"runId,omitempty"`
	Title           string           `json:"title"`
	Projects        []Project        `json:"projects"`
	Teams           []string         `json:"teams"`
	Metrics         CombinedMetrics  `json:"sprintHealthMetrics"`
	Blockers        []Blocker        `json:"currentBlockers"`
	Accomplishments []Accomplishment `json:"keyAccomplishments"`
	TeamSummaries   []TeamSummary    `json:"teamSummaries"`
	GeneratedAt     time.Time        `json:"generatedAt"`
}

// SlideSection is one quadrant of a team slide.
type SlideSection struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

// SlideContent is the narrative for a single team slide.
type SlideContent struct {
	HealthSummary   SlideSection `json:"healthSummary"`
	Accomplishments SlideSection `json:"accomplishments"`
	Blockers        SlideSection `json:"blockers"`
	Recommendations SlideSection `json:"recommendations"`
}
