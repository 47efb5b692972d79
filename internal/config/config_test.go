package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"JIRA_HOST", "JIRA_EMAIL", "JIRA_API_TOKEN", "JIRA_PROJECT_KEYS", "JIRA_STORY_POINT_FIELDS",
	"TEAM_LABELS", "GENERATE_COMBINED_SUMMARY", "GENERATE_PRESENTATION", "OUTPUT_DIR",
	"LLM_PROVIDER", "LLM_API_KEY", "LLM_MODEL", "HTTP_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT",
	"SCHEDULE_CRON", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_IDS", "CACHE_ENABLED", "CACHE_DIR", "CACHE_TTL",
}

// isolate clears every config variable and moves into an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "./output", cfg.Output.Dir)
	assert.True(t, cfg.Output.Combined)
	assert.True(t, cfg.Output.Presentation)
	assert.Equal(t, "openrouter", cfg.LLM.Provider)
	assert.Equal(t, 30*time.Second, cfg.Jira.Timeout)
	assert.Equal(t, []string{"customfield_20826", "customfield_10016"}, cfg.Jira.StoryPointFields)
	assert.Equal(t, "0 10 * * FRI", cfg.Schedule.Cron)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
}

func TestLoad_Env(t *testing.T) {
	isolate(t)
	t.Setenv("JIRA_HOST", "acme.atlassian.net")
	t.Setenv("JIRA_PROJECT_KEYS", "ABC, DEF ,")
	t.Setenv("TEAM_LABELS", "alpha,beta")
	t.Setenv("GENERATE_PRESENTATION", "false")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("TELEGRAM_CHAT_IDS", "1,-100200")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "acme.atlassian.net", cfg.Jira.Host)
	assert.Equal(t, []string{"ABC", "DEF"}, cfg.Jira.ProjectKeys)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.Jira.TeamLabels)
	assert.False(t, cfg.Output.Presentation)
	assert.True(t, cfg.Output.Combined)
	assert.Equal(t, 5*time.Second, cfg.Jira.Timeout)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, []int64{1, -100200}, cfg.Telegram.ChatIDs)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
jira:
  host: file.atlassian.net
  email: file@example.com
  project_keys: [FILE]
output:
  combined: false
`), 0600))
	t.Setenv("JIRA_EMAIL", "env@example.com")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file.atlassian.net", cfg.Jira.Host)
	assert.Equal(t, "env@example.com", cfg.Jira.Email)
	assert.Equal(t, []string{"FILE"}, cfg.Jira.ProjectKeys)
	assert.False(t, cfg.Output.Combined, "explicit false in file must survive defaults")
	assert.True(t, cfg.Output.Presentation)
}

func TestLoad_LocalFileFirst(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("jira:\n  host: local.atlassian.net\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JIRA_HOST=dotenv.atlassian.net\n"), 0600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "local.atlassian.net", cfg.Jira.Host)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	for _, name := range []string{"JIRA_HOST", "JIRA_EMAIL", "JIRA_API_TOKEN", "JIRA_PROJECT_KEYS"} {
		assert.Contains(t, err.Error(), name)
	}

	cfg.Jira = JiraConfig{Host: "a.atlassian.net", Email: "e", APIToken: "t", ProjectKeys: []string{"A"}}
	assert.NoError(t, cfg.Validate())

	cfg.LLM.Provider = "bard"
	err = cfg.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "bard")

	cfg.LLM.Provider = "anthropic"
	cfg.Log.Format = "xml"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg.Log.Format = "json"
	cfg.Cache.Enabled = true
	cfg.Cache.TTL = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	cfg.Cache.Enabled = false
	assert.NoError(t, cfg.Validate())
}

func TestWarnings(t *testing.T) {
	cfg := Default()
	cfg.Jira.Host = "jira.internal.example.com"
	warnings := cfg.Warnings()
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "atlassian.net")
	assert.Contains(t, warnings[1], "LLM_API_KEY")

	cfg.Jira.Host = "acme.atlassian.net"
	cfg.LLM.APIKey = "key"
	assert.Empty(t, cfg.Warnings())
}

func TestMasked(t *testing.T) {
	cfg := Default()
	cfg.Jira.APIToken = "abcdefghijkl"
	cfg.LLM.APIKey = "short"

	masked := cfg.Masked()
	assert.Equal(t, "****ijkl", masked.Jira.APIToken)
	assert.Equal(t, "****", masked.LLM.APIKey)
	assert.Equal(t, "", masked.Telegram.BotToken)
	assert.Equal(t, "abcdefghijkl", cfg.Jira.APIToken, "original is untouched")
}

func TestSaveAndLoadFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := Default()
	cfg.Jira.ProjectKeys = []string{"ABC"}
	cfg.Output.Presentation = false
	require.NoError(t, Save(cfg, path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ABC"}, loaded.Jira.ProjectKeys)
	assert.False(t, loaded.Output.Presentation)
	assert.Equal(t, 30*time.Second, loaded.Jira.Timeout)

	missing, err := LoadFile(filepath.Join(dir, "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), missing)
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	p, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "sprint-inspect", "config.yaml"), p)
}

func TestEnvHelp(t *testing.T) {
	help, err := EnvHelp()
	require.NoError(t, err)
	assert.Contains(t, help, "JIRA_HOST")
	assert.Contains(t, help, "TELEGRAM_CHAT_IDS")
}
