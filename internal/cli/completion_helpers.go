package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mikematt33/sprint-inspect/internal/config"
)

// Dynamic completion for --projects and --teams. Suggestions come from the
// loaded configuration plus a small usage history stored next to the user
// config file.

const (
	historyProject = "project"
	historyTeam    = "team"
	historyLimit   = 100
)

type recentItem struct {
	Value    string    `json:"value"`
	LastUsed time.Time `json:"last_used"`
	UseCount int       `json:"use_count"`
	ItemType string    `json:"type"` // "project" or "team"
}

type recentHistory struct {
	Items []recentItem `json:"items"`
}

func getHistoryPath() (string, error) {
	cfgPath, err := config.GetConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(cfgPath), "completion-history.json"), nil
}

func loadHistory() (*recentHistory, error) {
	path, err := getHistoryPath()
	if err != nil {
		return &recentHistory{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &recentHistory{}, nil
		}
		return nil, err
	}

	var history recentHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return &recentHistory{}, nil
	}
	return &history, nil
}

func saveHistory(history *recentHistory) error {
	path, err := getHistoryPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	if len(history.Items) > historyLimit {
		sort.Slice(history.Items, func(i, j int) bool {
			return history.Items[i].LastUsed.After(history.Items[j].LastUsed)
		})
		history.Items = history.Items[:historyLimit]
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// recordUsage bumps the use count of each value. History errors are ignored.
func recordUsage(itemType string, values ...string) {
	if len(values) == 0 {
		return
	}
	history, err := loadHistory()
	if err != nil {
		return
	}

	now := time.Now()
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		found := false
		for i := range history.Items {
			if history.Items[i].Value == value && history.Items[i].ItemType == itemType {
				history.Items[i].LastUsed = now
				history.Items[i].UseCount++
				found = true
				break
			}
		}
		if !found {
			history.Items = append(history.Items, recentItem{Value: value, LastUsed: now, UseCount: 1, ItemType: itemType})
		}
	}

	_ = saveHistory(history)
}

// getRecentItems returns values of one type ordered by use count, then recency.
func getRecentItems(itemType string, limit int) []string {
	history, err := loadHistory()
	if err != nil {
		return nil
	}

	var filtered []recentItem
	for _, item := range history.Items {
		if item.ItemType == itemType {
			filtered = append(filtered, item)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].UseCount != filtered[j].UseCount {
			return filtered[i].UseCount > filtered[j].UseCount
		}
		return filtered[i].LastUsed.After(filtered[j].LastUsed)
	})

	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	result := make([]string, len(filtered))
	for i, item := range filtered {
		result[i] = item.Value
	}
	return result
}

// mergeSuggestions dedupes configured and recent values and filters by the
// part after the last comma, keeping already typed entries as a prefix.
func mergeSuggestions(configured, recent []string, toComplete string) []string {
	prefix, partial := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix, partial = toComplete[:i+1], toComplete[i+1:]
	}

	seen := make(map[string]bool)
	var out []string
	for _, v := range append(append([]string{}, configured...), recent...) {
		if v == "" || seen[v] || !strings.HasPrefix(v, partial) {
			continue
		}
		seen[v] = true
		out = append(out, prefix+v)
	}
	return out
}

func completeProjects(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var configured []string
	if cfg, err := config.Load(flagConfig); err == nil {
		configured = cfg.Jira.ProjectKeys
	}
	suggestions := mergeSuggestions(configured, getRecentItems(historyProject, 20), toComplete)
	if len(suggestions) == 0 {
		return []string{"PROJ"}, cobra.ShellCompDirectiveNoFileComp
	}
	return suggestions, cobra.ShellCompDirectiveNoFileComp
}

func completeTeams(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var configured []string
	if cfg, err := config.Load(flagConfig); err == nil {
		configured = cfg.Jira.TeamLabels
	}
	suggestions := mergeSuggestions(configured, getRecentItems(historyTeam, 20), toComplete)
	if len(suggestions) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return suggestions, cobra.ShellCompDirectiveNoFileComp
}
