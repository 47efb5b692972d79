package collect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikematt33/sprint-inspect/pkg/models"
)

type fakeTracker struct {
	boards      map[string][]models.Board
	boardErrs   map[string]error
	sprints     map[int64][]models.Sprint
	sprintErrs  map[int64]error
	issues      map[int64][]models.Issue
	projects    map[string]models.Project
	issueLabels []string
}

func (f *fakeTracker) ListBoards(_ context.Context, key string) ([]models.Board, error) {
	if err := f.boardErrs[key]; err != nil {
		return nil, err
	}
	return f.boards[key], nil
}

func (f *fakeTracker) ListSprints(_ context.Context, boardID int64) ([]models.Sprint, error) {
	if err := f.sprintErrs[boardID]; err != nil {
		return nil, err
	}
	return f.sprints[boardID], nil
}

func (f *fakeTracker) ListSprintIssues(_ context.Context, sprintID int64, label string) ([]models.Issue, error) {
	f.issueLabels = append(f.issueLabels, label)
	return f.issues[sprintID], nil
}

func (f *fakeTracker) GetProject(_ context.Context, key string) (models.Project, error) {
	p, ok := f.projects[key]
	if !ok {
		return models.Project{}, errors.New("not found")
	}
	return p, nil
}

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func sprint(id int64, name string, state models.SprintState, end int) models.Sprint {
	return models.Sprint{ID: id, Name: name, State: state, StartDate: day(end - 14 + 28), EndDate: day(end + 28)}
}

func withAssignee(key, account, name string) models.Issue {
	return models.Issue{Key: key, Assignee: &models.User{AccountID: account, DisplayName: name}}
}

func TestPlan(t *testing.T) {
	assert.Equal(t, []Task{{ProjectKey: "A"}, {ProjectKey: "B"}}, Plan([]string{"A", "B"}, nil))

	tasks := Plan([]string{"A", "B"}, []string{"Zeta", "Alpha"})
	require.Len(t, tasks, 2)
	assert.Equal(t, "Zeta", tasks[0].TeamLabel)
	assert.Equal(t, []string{"A", "B"}, tasks[1].ProjectKeys)
	assert.Equal(t, "team Alpha", tasks[1].String())
}

func TestCollect_ProjectMode(t *testing.T) {
	tracker := &fakeTracker{
		boards: map[string][]models.Board{"PROJ": {{ID: 1, ProjectKey: "PROJ"}, {ID: 2, ProjectKey: "PROJ"}}},
		sprints: map[int64][]models.Sprint{1: {
			sprint(10, "S10", models.SprintClosed, 1),
			sprint(12, "S12", models.SprintClosed, 15),
			sprint(13, "S13", models.SprintActive, 29),
			sprint(11, "S11", models.SprintClosed, 8),
		}},
		issues: map[int64][]models.Issue{12: {
			withAssignee("P-1", "a1", "Ada"),
			withAssignee("P-2", "b2", "Bo"),
			withAssignee("P-3", "a1", "Ada"),
			{Key: "P-4"},
		}},
		projects: map[string]models.Project{"PROJ": {Key: "PROJ", Name: "Payments"}},
	}

	data, err := New(tracker, zerolog.Nop()).Collect(context.Background(), Task{ProjectKey: "PROJ"})

	require.NoError(t, err)
	assert.Equal(t, int64(12), data.Sprint.ID)
	assert.Equal(t, int64(1), data.Board.ID)
	assert.Equal(t, "Payments", data.Project.Name)
	assert.Empty(t, data.TeamLabel)
	assert.Len(t, data.Issues, 4)
	require.Len(t, data.TeamMembers, 2)
	assert.Equal(t, "Ada", data.TeamMembers[0].DisplayName)
	assert.Equal(t, []string{""}, tracker.issueLabels)
}

func TestCollect_ProjectModeRequiredLookups(t *testing.T) {
	tracker := &fakeTracker{
		boards:  map[string][]models.Board{"OPEN": {{ID: 3}}},
		sprints: map[int64][]models.Sprint{3: {sprint(1, "S1", models.SprintActive, 1)}},
	}
	c := New(tracker, zerolog.Nop())

	_, err := c.Collect(context.Background(), Task{ProjectKey: "EMPTY"})
	assert.ErrorIs(t, err, ErrNoBoards)

	_, err = c.Collect(context.Background(), Task{ProjectKey: "OPEN"})
	assert.ErrorIs(t, err, ErrNoSprints)
}

func TestCollect_NoIssues(t *testing.T) {
	tracker := &fakeTracker{
		boards:  map[string][]models.Board{"PROJ": {{ID: 1, ProjectKey: "PROJ"}}},
		sprints: map[int64][]models.Sprint{1: {sprint(5, "S5", models.SprintClosed, 1)}},
	}

	_, err := New(tracker, zerolog.Nop()).Collect(context.Background(), Task{ProjectKey: "PROJ"})

	assert.ErrorIs(t, err, ErrNoIssues)
}

func TestCollect_TeamMode(t *testing.T) {
	tracker := &fakeTracker{
		boards: map[string][]models.Board{
			"WEB": {{ID: 1, ProjectKey: "WEB"}, {ID: 2, ProjectKey: "WEB"}},
			"API": {{ID: 3, ProjectKey: "API"}},
		},
		boardErrs:  map[string]error{"OPS": errors.New("forbidden")},
		sprintErrs: map[int64]error{2: errors.New("board does not support sprints")},
		sprints: map[int64][]models.Sprint{
			1: {sprint(10, "Alpha Sprint 4", models.SprintClosed, 5), sprint(11, "Beta Sprint 4", models.SprintClosed, 20)},
			3: {sprint(30, "ALPHA sprint 5", models.SprintClosed, 12), sprint(31, "alpha sprint 6", models.SprintFuture, 26)},
		},
		issues:   map[int64][]models.Issue{30: {{Key: "API-1", Labels: []string{"alpha"}}}},
		projects: map[string]models.Project{"API": {Key: "API", Name: "Public API"}},
	}

	task := Task{TeamLabel: "alpha", ProjectKeys: []string{"OPS", "WEB", "API"}}
	data, err := New(tracker, zerolog.Nop()).Collect(context.Background(), task)

	require.NoError(t, err)
	assert.Equal(t, int64(30), data.Sprint.ID)
	assert.Equal(t, "API", data.Board.ProjectKey)
	assert.Equal(t, "Public API", data.Project.Name)
	assert.Equal(t, "alpha", data.TeamLabel)
	assert.Equal(t, []string{"alpha"}, tracker.issueLabels)
	assert.Empty(t, data.TeamMembers)
}

func TestCollect_TeamModeNoMatch(t *testing.T) {
	tracker := &fakeTracker{
		boards:  map[string][]models.Board{"WEB": {{ID: 1, ProjectKey: "WEB"}}},
		sprints: map[int64][]models.Sprint{1: {sprint(10, "Beta Sprint", models.SprintClosed, 5)}},
	}
	c := New(tracker, zerolog.Nop())

	_, err := c.Collect(context.Background(), Task{TeamLabel: "Gamma", ProjectKeys: []string{"WEB"}})
	assert.ErrorIs(t, err, ErrNoSprints)

	_, err = c.Collect(context.Background(), Task{TeamLabel: "Gamma", ProjectKeys: []string{"NONE"}})
	assert.ErrorIs(t, err, ErrNoBoards)
}

func TestCollect_ProjectNameFallback(t *testing.T) {
	tracker := &fakeTracker{
		boards:  map[string][]models.Board{"PROJ": {{ID: 1, ProjectKey: "PROJ"}}},
		sprints: map[int64][]models.Sprint{1: {sprint(5, "S5", models.SprintClosed, 1)}},
		issues:  map[int64][]models.Issue{5: {{Key: "P-1"}}},
	}

	data, err := New(tracker, zerolog.Nop()).Collect(context.Background(), Task{ProjectKey: "PROJ"})

	require.NoError(t, err)
	assert.Equal(t, models.Project{Key: "PROJ", Name: "PROJ"}, data.Project)
}

func TestLatestClosed(t *testing.T) {
	sprints := []models.Sprint{
		sprint(1, "Team Red 1", models.SprintClosed, 1),
		sprint(2, "Team Red 2", models.SprintClosed, 15),
		sprint(3, "Team Blue 2", models.SprintClosed, 20),
		sprint(4, "Team Red 3", models.SprintActive, 29),
	}

	got, ok := LatestClosed(sprints, "red")
	require.True(t, ok)
	assert.Equal(t, int64(2), got.ID)

	got, ok = LatestClosed(sprints, "")
	require.True(t, ok)
	assert.Equal(t, int64(3), got.ID)

	_, ok = LatestClosed(sprints, "green")
	assert.False(t, ok)
}

func TestTeamMembers(t *testing.T) {
	members := TeamMembers([]models.Issue{
		withAssignee("1", "", "Legacy User"),
		withAssignee("2", "b", "Bo"),
		withAssignee("3", "", "Legacy User"),
		{Key: "4"},
	})

	require.Len(t, members, 2)
	assert.Equal(t, "Legacy User", members[0].DisplayName)
	assert.Equal(t, "Bo", members[1].DisplayName)
}
