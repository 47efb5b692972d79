package jira

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mikematt33/sprint-inspect/pkg/models"
)

// ListBoards returns every board attached to the project.
func (c *Client) ListBoards(ctx context.Context, projectKey string) ([]models.Board, error) {
	var boards []models.Board
	startAt := 0

	for {
		q := url.Values{}
		q.Set("projectKeyOrId", projectKey)
		q.Set("startAt", strconv.Itoa(startAt))
		q.Set("maxResults", strconv.Itoa(pageSize))

		var page boardPage
		if err := c.getJSON(ctx, "/rest/agile/1.0/board", q, &page); err != nil {
			return nil, fmt.Errorf("failed to list boards for %s: %w", projectKey, err)
		}

		for _, b := range page.Values {
			boards = append(boards, models.Board{ID: b.ID, Name: b.Name, Type: b.Type, ProjectKey: projectKey})
		}

		if page.IsLast || len(page.Values) == 0 {
			return boards, nil
		}
		startAt += len(page.Values)
	}
}

// ListSprints returns all sprints of a board, in Jira's order.
func (c *Client) ListSprints(ctx context.Context, boardID int64) ([]models.Sprint, error) {
	var sprints []models.Sprint
	startAt := 0
	path := "/rest/agile/1.0/board/" + strconv.FormatInt(boardID, 10) + "/sprint"

	for {
		q := url.Values{}
		q.Set("startAt", strconv.Itoa(startAt))
		q.Set("maxResults", strconv.Itoa(pageSize))

		var page sprintPage
		if err := c.getJSON(ctx, path, q, &page); err != nil {
			return nil, fmt.Errorf("failed to list sprints for board %d: %w", boardID, err)
		}

		for _, s := range page.Values {
			sprints = append(sprints, s.toModel(boardID))
		}

		if page.IsLast || len(page.Values) == 0 {
			return sprints, nil
		}
		startAt += len(page.Values)
	}
}

// ListSprintIssues returns the sprint's issues, optionally restricted to a label.
func (c *Client) ListSprintIssues(ctx context.Context, sprintID int64, label string) ([]models.Issue, error) {
	var issues []models.Issue
	startAt := 0
	path := "/rest/agile/1.0/sprint/" + strconv.FormatInt(sprintID, 10) + "/issue"
	fields := append([]string{"summary", "status", "issuetype", "priority", "assignee", "labels"}, c.spFields...)

	for {
		q := url.Values{}
		q.Set("startAt", strconv.Itoa(startAt))
		q.Set("maxResults", strconv.Itoa(issuePageSize))
		q.Set("fields", strings.Join(fields, ","))
		if label != "" {
			q.Set("jql", LabelJQL(label))
		}

		var page issuePage
		if err := c.getJSON(ctx, path, q, &page); err != nil {
			return nil, fmt.Errorf("failed to list issues for sprint %d: %w", sprintID, err)
		}

		for _, raw := range page.Issues {
			issue, err := raw.toModel(c.spFields)
			if err != nil {
				return nil, err
			}
			issues = append(issues, issue)
		}

		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			return issues, nil
		}
	}
}

// GetProject fetches the project's display metadata.
func (c *Client) GetProject(ctx context.Context, projectKey string) (models.Project, error) {
	var p projectJSON
	if err := c.getJSON(ctx, "/rest/api/3/project/"+url.PathEscape(projectKey), nil, &p); err != nil {
		return models.Project{}, fmt.Errorf("failed to get project %s: %w", projectKey, err)
	}
	return models.Project{Key: p.Key, Name: p.Name}, nil
}

// Myself returns the account the client authenticates as.
func (c *Client) Myself(ctx context.Context) (models.User, error) {
	var u myselfJSON
	if err := c.getJSON(ctx, "/rest/api/3/myself", nil, &u); err != nil {
		return models.User{}, fmt.Errorf("failed to verify credentials: %w", err)
	}
	return models.User{AccountID: u.AccountID, DisplayName: u.DisplayName, Email: u.EmailAddress}, nil
}

// LabelJQL builds a JQL clause matching a single label.
func LabelJQL(label string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(label)
	return fmt.Sprintf(`labels = "%s"`, escaped)
}
