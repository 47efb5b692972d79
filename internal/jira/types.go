package jira

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mikematt33/sprint-inspect/pkg/models"
)

type boardPage struct {
	StartAt int         `json:"startAt"`
	IsLast  bool        `json:"isLast"`
	Values  []boardJSON `json:"values"`
}

type boardJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type sprintPage struct {
	StartAt int          `json:"startAt"`
	IsLast  bool         `json:"isLast"`
	Values  []sprintJSON `json:"values"`
}

type sprintJSON struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	State         string   `json:"state"`
	StartDate     jiraTime `json:"startDate"`
	EndDate       jiraTime `json:"endDate"`
	CompleteDate  jiraTime `json:"completeDate"`
	Goal          string   `json:"goal"`
	OriginBoardID int64    `json:"originBoardId"`
}

type issuePage struct {
	StartAt    int         `json:"startAt"`
	MaxResults int         `json:"maxResults"`
	Total      int         `json:"total"`
	Issues     []issueJSON `json:"issues"`
}

type issueJSON struct {
	Key    string          `json:"key"`
	Fields json.RawMessage `json:"fields"`
}

type issueFields struct {
	Summary string `json:"summary"`
	Status  struct {
		Name           string `json:"name"`
		StatusCategory struct {
			Key  string `json:"key"`
			Name string `json:"name"`
		} `json:"statusCategory"`
	} `json:"status"`
	IssueType struct {
		Name string `json:"name"`
	} `json:"issuetype"`
	Priority *struct {
		Name string `json:"name"`
	} `json:"priority"`
	Assignee *struct {
		AccountID    string `json:"accountId"`
		DisplayName  string `json:"displayName"`
		EmailAddress string `json:"emailAddress"`
	} `json:"assignee"`
	Labels []string `json:"labels"`
}

type projectJSON struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type myselfJSON struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// jiraTime accepts RFC3339 and Jira's "+0000" offset style.
type jiraTime struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
}

func (t *jiraTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized jira time %q", s)
}

// mapCategory folds Jira's status category onto the three buckets.
func mapCategory(key, name string) models.StatusCategory {
	switch strings.ToLower(key) {
	case "done":
		return models.StatusDone
	case "indeterminate":
		return models.StatusInProgress
	}
	switch strings.ToLower(name) {
	case "done":
		return models.StatusDone
	case "in progress", "indeterminate":
		return models.StatusInProgress
	}
	return models.StatusNotStarted
}

func (s sprintJSON) toModel(boardID int64) models.Sprint {
	return models.Sprint{
		ID:           s.ID,
		Name:         s.Name,
		State:        models.SprintState(strings.ToLower(s.State)),
		StartDate:    s.StartDate.Time,
		EndDate:      s.EndDate.Time,
		CompleteDate: s.CompleteDate.Time,
		Goal:         s.Goal,
		BoardID:      boardID,
	}
}

// toModel converts the raw issue, reading story points from the first
// configured field holding a number.
func (i issueJSON) toModel(spFields []string) (models.Issue, error) {
	if len(i.Fields) == 0 {
		i.Fields = json.RawMessage("{}")
	}
	var f issueFields
	if err := json.Unmarshal(i.Fields, &f); err != nil {
		return models.Issue{}, fmt.Errorf("issue %s: %w", i.Key, err)
	}
	var custom map[string]json.RawMessage
	if err := json.Unmarshal(i.Fields, &custom); err != nil {
		return models.Issue{}, fmt.Errorf("issue %s: %w", i.Key, err)
	}

	issue := models.Issue{
		Key:      i.Key,
		Summary:  f.Summary,
		Type:     f.IssueType.Name,
		Status:   f.Status.Name,
		Category: mapCategory(f.Status.StatusCategory.Key, f.Status.StatusCategory.Name),
		Labels:   f.Labels,
	}
	if f.Priority != nil {
		issue.Priority = f.Priority.Name
	}
	if f.Assignee != nil {
		issue.Assignee = &models.User{
			AccountID:   f.Assignee.AccountID,
			DisplayName: f.Assignee.DisplayName,
			Email:       f.Assignee.EmailAddress,
		}
	}

	for _, name := range spFields {
		v, ok := custom[name]
		if !ok {
			continue
		}
		var sp *float64
		if err := json.Unmarshal(v, &sp); err != nil || sp == nil {
			continue
		}
		issue.StoryPoints = sp
		break
	}

	return issue, nil
}
