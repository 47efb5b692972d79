// Package collect selects the sprint to report on for each configured entity
// and gathers its issues from the tracker.
package collect

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mikematt33/sprint-inspect/pkg/models"
)

var (
	ErrNoBoards  = errors.New("no boards found")
	ErrNoSprints = errors.New("no closed sprints found")
	ErrNoIssues  = errors.New("sprint has no issues")
)

// Tracker is the subset of the issue tracker the collector needs.
type Tracker interface {
	ListBoards(ctx context.Context, projectKey string) ([]models.Board, error)
	ListSprints(ctx context.Context, boardID int64) ([]models.Sprint, error)
	ListSprintIssues(ctx context.Context, sprintID int64, label string) ([]models.Issue, error)
	GetProject(ctx context.Context, projectKey string) (models.Project, error)
}

// Task is one entity to report on: either a project or a team label.
type Task struct {
	ProjectKey  string   // set in project mode
	TeamLabel   string   // set in team mode
	ProjectKeys []string // projects searched in team mode
}

func (t Task) String() string {
	if t.TeamLabel != "" {
		return "team " + t.TeamLabel
	}
	return "project " + t.ProjectKey
}

// Plan returns the ordered task list: one per team label when labels are
// given, otherwise one per project.
func Plan(projectKeys, teamLabels []string) []Task {
	var tasks []Task
	if len(teamLabels) > 0 {
		for _, label := range teamLabels {
			tasks = append(tasks, Task{TeamLabel: label, ProjectKeys: projectKeys})
		}
		return tasks
	}
	for _, key := range projectKeys {
		tasks = append(tasks, Task{ProjectKey: key})
	}
	return tasks
}

// Collector gathers sprint data one task at a time.
type Collector struct {
	tracker Tracker
	log     zerolog.Logger
}

func New(tracker Tracker, log zerolog.Logger) *Collector {
	return &Collector{tracker: tracker, log: log}
}

// Collect resolves the task's sprint and fetches its issues. Optional lookups
// that fail are logged and skipped; required ones return an error.
func (c *Collector) Collect(ctx context.Context, task Task) (models.SprintData, error) {
	var (
		data models.SprintData
		err  error
	)

	if task.TeamLabel != "" {
		data, err = c.collectTeam(ctx, task)
	} else {
		data, err = c.collectProject(ctx, task.ProjectKey)
	}
	if err != nil {
		return models.SprintData{}, err
	}

	issues, err := c.tracker.ListSprintIssues(ctx, data.Sprint.ID, task.TeamLabel)
	if err != nil {
		return models.SprintData{}, fmt.Errorf("%s: %w", task, err)
	}
	if len(issues) == 0 {
		return models.SprintData{}, fmt.Errorf("%s, sprint %q: %w", task, data.Sprint.Name, ErrNoIssues)
	}

	data.Issues = issues
	data.TeamMembers = TeamMembers(issues)
	data.Project = c.project(ctx, data.Board.ProjectKey)
	return data, nil
}

func (c *Collector) collectProject(ctx context.Context, projectKey string) (models.SprintData, error) {
	boards, err := c.tracker.ListBoards(ctx, projectKey)
	if err != nil {
		return models.SprintData{}, fmt.Errorf("project %s: %w", projectKey, err)
	}
	if len(boards) == 0 {
		return models.SprintData{}, fmt.Errorf("project %s: %w", projectKey, ErrNoBoards)
	}

	board := boards[0]
	sprints, err := c.tracker.ListSprints(ctx, board.ID)
	if err != nil {
		return models.SprintData{}, fmt.Errorf("project %s, board %d: %w", projectKey, board.ID, err)
	}

	sprint, ok := LatestClosed(sprints, "")
	if !ok {
		return models.SprintData{}, fmt.Errorf("project %s, board %d: %w", projectKey, board.ID, ErrNoSprints)
	}

	return models.SprintData{Sprint: sprint, Board: board}, nil
}

func (c *Collector) collectTeam(ctx context.Context, task Task) (models.SprintData, error) {
	var boards []models.Board
	for _, key := range task.ProjectKeys {
		found, err := c.tracker.ListBoards(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				return models.SprintData{}, ctx.Err()
			}
			c.log.Warn().Err(err).Str("project", key).Str("team", task.TeamLabel).Msg("skipping project boards")
			continue
		}
		boards = append(boards, found...)
	}
	if len(boards) == 0 {
		return models.SprintData{}, fmt.Errorf("%s: %w", task, ErrNoBoards)
	}

	var (
		best      models.SprintData
		haveMatch bool
	)
	for _, board := range boards {
		sprints, err := c.tracker.ListSprints(ctx, board.ID)
		if err != nil {
			if ctx.Err() != nil {
				return models.SprintData{}, ctx.Err()
			}
			c.log.Warn().Err(err).Int64("board", board.ID).Str("team", task.TeamLabel).Msg("skipping board sprints")
			continue
		}

		sprint, ok := LatestClosed(sprints, task.TeamLabel)
		if !ok {
			continue
		}
		if !haveMatch || sprint.EndDate.After(best.Sprint.EndDate) {
			best = models.SprintData{Sprint: sprint, Board: board, TeamLabel: task.TeamLabel}
			haveMatch = true
		}
	}

	if !haveMatch {
		return models.SprintData{}, fmt.Errorf("%s: %w", task, ErrNoSprints)
	}
	return best, nil
}

// project looks up display metadata, falling back to the bare key.
func (c *Collector) project(ctx context.Context, key string) models.Project {
	p, err := c.tracker.GetProject(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("project", key).Msg("using project key as name")
		return models.Project{Key: key, Name: key}
	}
	if p.Key == "" {
		p.Key = key
	}
	return p
}

// LatestClosed picks the closed sprint with the latest end date whose name
// contains nameFilter (case-insensitive). An empty filter matches all.
func LatestClosed(sprints []models.Sprint, nameFilter string) (models.Sprint, bool) {
	filter := strings.ToLower(nameFilter)

	var (
		best  models.Sprint
		found bool
	)
	for _, s := range sprints {
		if s.State != models.SprintClosed {
			continue
		}
		if filter != "" && !strings.Contains(strings.ToLower(s.Name), filter) {
			continue
		}
		if !found || s.EndDate.After(best.EndDate) {
			best = s
			found = true
		}
	}
	return best, found
}

// TeamMembers returns the distinct assignees in first-seen order.
func TeamMembers(issues []models.Issue) []models.User {
	seen := make(map[string]bool)
	members := []models.User{}
	for _, issue := range issues {
		if issue.Assignee == nil {
			continue
		}
		id := issue.Assignee.AccountID
		if id == "" {
			id = issue.Assignee.DisplayName
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, *issue.Assignee)
	}
	return members
}
