package collect

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mikematt33/sprint-inspect/pkg/models"
)

// Cache is the key/value store behind CachedTracker.
type Cache interface {
	Get(key string, value any) (bool, error)
	Set(key string, value any) error
}

// CachedTracker serves sprint issues and project metadata from a cache.
// Boards and sprint lists always go to the tracker so a newly closed sprint
// is picked up. Only closed sprints reach ListSprintIssues, and their issue
// lists no longer change.
type CachedTracker struct {
	Tracker
	cache     Cache
	namespace string
	log       zerolog.Logger
}

// NewCachedTracker wraps tracker. namespace separates entries of different
// Jira sites or story point field settings sharing one cache.
func NewCachedTracker(tracker Tracker, cache Cache, namespace string, log zerolog.Logger) *CachedTracker {
	return &CachedTracker{Tracker: tracker, cache: cache, namespace: namespace, log: log}
}

// CacheNamespace builds the namespace for a Jira host and its story point fields.
func CacheNamespace(host string, storyPointFields []string) string {
	return strings.ToLower(strings.TrimSpace(host)) + "|" + strings.Join(storyPointFields, ",")
}

func (c *CachedTracker) ListSprintIssues(ctx context.Context, sprintID int64, label string) ([]models.Issue, error) {
	key := fmt.Sprintf("%s|issues|%d|%s", c.namespace, sprintID, label)

	var issues []models.Issue
	if c.lookup(key, &issues) {
		c.log.Debug().Int64("sprint", sprintID).Str("team", label).Int("issues", len(issues)).Msg("sprint issues served from cache")
		return issues, nil
	}

	issues, err := c.Tracker.ListSprintIssues(ctx, sprintID, label)
	if err != nil {
		return nil, err
	}
	// Empty results are not stored; labels may still be applied after close.
	if len(issues) > 0 {
		c.store(key, issues)
	}
	return issues, nil
}

func (c *CachedTracker) GetProject(ctx context.Context, projectKey string) (models.Project, error) {
	key := c.namespace + "|project|" + projectKey

	var p models.Project
	if c.lookup(key, &p) {
		return p, nil
	}

	p, err := c.Tracker.GetProject(ctx, projectKey)
	if err != nil {
		return models.Project{}, err
	}
	c.store(key, p)
	return p, nil
}

func (c *CachedTracker) lookup(key string, value any) bool {
	found, err := c.cache.Get(key, value)
	if err != nil {
		c.log.Warn().Err(err).Msg("cache read failed")
		return false
	}
	return found
}

func (c *CachedTracker) store(key string, value any) {
	if err := c.cache.Set(key, value); err != nil {
		c.log.Warn().Err(err).Msg("cache write failed")
	}
}
