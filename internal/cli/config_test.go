package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikematt33/sprint-inspect/internal/config"
)

var configEnvKeys = []string{
	"JIRA_HOST", "JIRA_EMAIL", "JIRA_API_TOKEN", "JIRA_PROJECT_KEYS", "JIRA_STORY_POINT_FIELDS",
	"TEAM_LABELS", "GENERATE_COMBINED_SUMMARY", "GENERATE_PRESENTATION", "OUTPUT_DIR",
	"LLM_PROVIDER", "LLM_API_KEY", "LLM_MODEL", "HTTP_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT",
	"SCHEDULE_CRON", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_IDS", "CACHE_ENABLED", "CACHE_DIR", "CACHE_TTL",
}

// isolateEnv clears configuration variables and runs the test from an empty directory.
func isolateEnv(t *testing.T) string {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Chdir(dir)
	flagConfig = ""
	t.Cleanup(func() { flagConfig = "" })
	return dir
}

func TestSetConfigValue(t *testing.T) {
	cfg := config.Default()
	cfg.Jira.APIToken = "old-token"

	tests := []struct {
		name      string
		key       string
		val       string
		wantErr   bool
		validator func(*config.Config) bool
	}{
		{
			name: "Set String",
			key:  "jira.api_token",
			val:  "new-token",
			validator: func(c *config.Config) bool {
				return c.Jira.APIToken == "new-token"
			},
		},
		{
			name: "Set Bool",
			key:  "output.presentation",
			val:  "false",
			validator: func(c *config.Config) bool {
				return c.Output.Presentation == false
			},
		},
		{
			name: "Set Duration",
			key:  "jira.timeout",
			val:  "45s",
			validator: func(c *config.Config) bool {
				return c.Jira.Timeout == 45*time.Second
			},
		},
		{
			name: "Set String List",
			key:  "jira.project_keys",
			val:  "ABC, DEF,",
			validator: func(c *config.Config) bool {
				return assert.ObjectsAreEqual([]string{"ABC", "DEF"}, c.Jira.ProjectKeys)
			},
		},
		{
			name: "Set Int List",
			key:  "telegram.chat_ids",
			val:  "12,-100",
			validator: func(c *config.Config) bool {
				return assert.ObjectsAreEqual([]int64{12, -100}, c.Telegram.ChatIDs)
			},
		},
		{
			name: "Field Name Fallback",
			key:  "llm.Model",
			val:  "gpt-4o-mini",
			validator: func(c *config.Config) bool {
				return c.LLM.Model == "gpt-4o-mini"
			},
		},
		{
			name:    "Invalid Key",
			key:     "jira.unknown_field",
			val:     "foo",
			wantErr: true,
		},
		{
			name:    "Invalid Duration",
			key:     "jira.timeout",
			val:     "soon",
			wantErr: true,
		},
		{
			name:    "Invalid Type Match (Bool expected)",
			key:     "output.combined",
			val:     "maybe",
			wantErr: true,
		},
		{
			name:    "Invalid Int List",
			key:     "telegram.chat_ids",
			val:     "1,two",
			wantErr: true,
		},
		{
			name:    "Part is not a struct",
			key:     "jira.host.subfield",
			val:     "10",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := setConfigValue(cfg, tt.key, tt.val)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				if tt.validator != nil {
					assert.True(t, tt.validator(cfg))
				}
			}
		})
	}
}

func TestConfigSetAndList(t *testing.T) {
	dir := isolateEnv(t)
	path := filepath.Join(dir, "cfg.yaml")
	t.Setenv("JIRA_HOST", "env.atlassian.net")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"config", "set", "jira.api_token", "supersecrettoken", "--config", path})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Configuration saved to "+path)

	saved, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "supersecrettoken", saved.Jira.APIToken)
	assert.Empty(t, saved.Jira.Host, "environment overrides are not persisted")

	buf.Reset()
	rootCmd.SetArgs([]string{"config", "list", "--config", path})
	require.NoError(t, rootCmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "****oken")
	assert.NotContains(t, out, "supersecrettoken")
	assert.Contains(t, out, "env.atlassian.net")
}
