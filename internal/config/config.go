package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	yaml "gopkg.in/yaml.v3"

	"github.com/mikematt33/sprint-inspect/internal/llm"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

const appDir = "sprint-inspect"

type Config struct {
	Jira     JiraConfig     `yaml:"jira"`
	Output   OutputConfig   `yaml:"output"`
	LLM      LLMConfig      `yaml:"llm"`
	Log      LogConfig      `yaml:"log"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Telegram TelegramConfig `yaml:"telegram"`
	Cache    CacheConfig    `yaml:"cache"`
}

type JiraConfig struct {
	Host             string        `yaml:"host" env:"JIRA_HOST" env-description:"Jira Cloud host, e.g. company.atlassian.net"`
	Email            string        `yaml:"email" env:"JIRA_EMAIL" env-description:"Account email for basic auth"`
	APIToken         string        `yaml:"api_token,omitempty" env:"JIRA_API_TOKEN" env-description:"Jira API token"`
	ProjectKeys      []string      `yaml:"project_keys" env:"JIRA_PROJECT_KEYS" env-description:"Comma-separated project keys"`
	TeamLabels       []string      `yaml:"team_labels" env:"TEAM_LABELS" env-description:"Comma-separated team labels; one summary per label"`
	StoryPointFields []string      `yaml:"story_point_fields" env:"JIRA_STORY_POINT_FIELDS" env-description:"Custom fields holding story points, in lookup order"`
	Timeout          time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-description:"Per-request HTTP timeout"`
}

type OutputConfig struct {
	Dir          string `yaml:"dir" env:"OUTPUT_DIR" env-description:"Directory for generated files"`
	Combined     bool   `yaml:"combined" env:"GENERATE_COMBINED_SUMMARY" env-description:"Write the combined summary"`
	Presentation bool   `yaml:"presentation" env:"GENERATE_PRESENTATION" env-description:"Write the slide deck"`
}

type LLMConfig struct {
	Provider string `yaml:"provider" env:"LLM_PROVIDER" env-description:"openai, anthropic or openrouter"`
	APIKey   string `yaml:"api_key,omitempty" env:"LLM_API_KEY" env-description:"Provider API key; unset disables generated text"`
	Model    string `yaml:"model,omitempty" env:"LLM_MODEL" env-description:"Model override"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-description:"debug, info, warn or error"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-description:"console or json"`
}

type ScheduleConfig struct {
	Cron string `yaml:"cron" env:"SCHEDULE_CRON" env-description:"Five-field cron spec for the schedule command"`
}

type TelegramConfig struct {
	BotToken string  `yaml:"bot_token,omitempty" env:"TELEGRAM_BOT_TOKEN" env-description:"Bot token for run digests"`
	ChatIDs  []int64 `yaml:"chat_ids,omitempty" env:"TELEGRAM_CHAT_IDS" env-description:"Comma-separated chat IDs"`
}

// CacheConfig controls the on-disk cache of closed-sprint issues.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" env:"CACHE_ENABLED" env-description:"Reuse closed-sprint issues between runs (off by default)"`
	Dir     string        `yaml:"dir,omitempty" env:"CACHE_DIR" env-description:"Cache directory (default: user cache dir)"`
	TTL     time.Duration `yaml:"ttl" env:"CACHE_TTL" env-description:"How long cached entries stay valid"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Jira: JiraConfig{
			StoryPointFields: []string{"customfield_20826", "customfield_10016"},
			Timeout:          30 * time.Second,
		},
		Output: OutputConfig{
			Dir:          "./output",
			Combined:     true,
			Presentation: true,
		},
		LLM: LLMConfig{
			Provider: llm.OpenRouter,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Schedule: ScheduleConfig{
			Cron: "0 10 * * FRI",
		},
		Cache: CacheConfig{
			TTL: 24 * time.Hour,
		},
	}
}

func GetConfigPath() (string, error) {
	// Respect XDG_CONFIG_HOME if set (useful for testing and Linux users)
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appDir, "config.yaml"), nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appDir, "config.yaml"), nil
}

// Load builds the run configuration. An explicit path must exist; otherwise the
// first of ./config.yaml, the user config file and ./.env is read. Environment
// variables override file values in every case.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	} else {
		path = findConfig()
	}

	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("error reading environment: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

func findConfig() string {
	candidates := []string{"config.yaml"}
	if p, err := GetConfigPath(); err == nil {
		candidates = append(candidates, p)
	}
	candidates = append(candidates, ".env")

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadFile reads only the YAML file at path, without environment overrides.
// A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// Save writes the configuration to path
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// EnvHelp describes every supported environment variable.
func EnvHelp() (string, error) {
	header := "Environment variables:"
	return cleanenv.GetDescription(Default(), &header)
}

func (c *Config) normalize() {
	c.Jira.Host = strings.TrimSpace(c.Jira.Host)
	c.Jira.ProjectKeys = cleanList(c.Jira.ProjectKeys)
	c.Jira.TeamLabels = cleanList(c.Jira.TeamLabels)
	c.Jira.StoryPointFields = cleanList(c.Jira.StoryPointFields)
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Cache.Dir = strings.TrimSpace(c.Cache.Dir)
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	var missing []string
	if c.Jira.Host == "" {
		missing = append(missing, "JIRA_HOST")
	}
	if c.Jira.Email == "" {
		missing = append(missing, "JIRA_EMAIL")
	}
	if c.Jira.APIToken == "" {
		missing = append(missing, "JIRA_API_TOKEN")
	}
	if len(c.Jira.ProjectKeys) == 0 {
		missing = append(missing, "JIRA_PROJECT_KEYS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}

	if _, ok := llm.DefaultModels[c.LLM.Provider]; !ok {
		return fmt.Errorf("%w: LLM_PROVIDER %q is not one of openai, anthropic, openrouter", ErrInvalidConfig, c.LLM.Provider)
	}
	if c.Log.Format != "" && c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("%w: LOG_FORMAT %q must be console or json", ErrInvalidConfig, c.Log.Format)
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("%w: CACHE_TTL must be positive when the cache is enabled", ErrInvalidConfig)
	}
	return nil
}

// Warnings lists settings that are accepted but probably wrong.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Jira.Host != "" && !strings.Contains(c.Jira.Host, ".atlassian.net") {
		warnings = append(warnings, fmt.Sprintf("JIRA_HOST %q does not look like an Atlassian Cloud host (*.atlassian.net)", c.Jira.Host))
	}
	if c.LLM.APIKey == "" {
		warnings = append(warnings, "LLM_API_KEY is not set; recommendations and slides will use fixed rules")
	}
	return warnings
}

// Masked returns a copy safe to print.
func (c *Config) Masked() *Config {
	out := *c
	out.Jira.APIToken = mask(c.Jira.APIToken)
	out.LLM.APIKey = mask(c.LLM.APIKey)
	out.Telegram.BotToken = mask(c.Telegram.BotToken)
	return &out
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
