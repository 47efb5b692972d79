package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const defaultConfig = `# sprint-inspect Configuration
# Every value can be overridden by the environment variable named next to it.

jira:
  host: "" # JIRA_HOST, e.g. company.atlassian.net
  email: "" # JIRA_EMAIL
  # api_token: "YOUR_TOKEN" # JIRA_API_TOKEN (prefer the environment variable)
  project_keys: [] # JIRA_PROJECT_KEYS, e.g. [ABC, DEF]
  team_labels: [] # TEAM_LABELS; one summary per label when set
  story_point_fields: # JIRA_STORY_POINT_FIELDS, first non-empty wins
    - customfield_20826
    - customfield_10016
  timeout: 30s # HTTP_TIMEOUT

output:
  dir: ./output # OUTPUT_DIR
  combined: true # GENERATE_COMBINED_SUMMARY
  presentation: true # GENERATE_PRESENTATION

llm:
  provider: openrouter # LLM_PROVIDER: openai, anthropic, openrouter
  # api_key: "YOUR_KEY" # LLM_API_KEY; without it fixed rules are used
  # model: "" # LLM_MODEL; provider default when empty

log:
  level: info # LOG_LEVEL
  format: console # LOG_FORMAT: console, json

schedule:
  cron: "0 10 * * FRI" # SCHEDULE_CRON

cache:
  enabled: false # CACHE_ENABLED; reuse closed-sprint issues between runs
  ttl: 24h # CACHE_TTL
  # dir: "" # CACHE_DIR; user cache dir when empty

# telegram:
#   bot_token: "" # TELEGRAM_BOT_TOKEN
#   chat_ids: [] # TELEGRAM_CHAT_IDS
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Long: `Creates a commented default configuration file (config.yaml) in your user configuration
directory, or at --config, if it doesn't exist.`,
	Run: runInit,
}

func init() {
	configCmd.AddCommand(initCmd)
}

// createDefaultConfig writes the default configuration to the specified path
func createDefaultConfig(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfig), 0600)
}

func runInit(cmd *cobra.Command, args []string) {
	configPath, err := targetConfigPath()
	if err != nil {
		fmt.Printf("Error getting config path: %v\n", err)
		os.Exit(1)
	}

	out := cmd.OutOrStdout()

	// Check if file already exists to prevent overwriting
	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(out, "⚠️  Checking %s... already exists.\n", configPath)
		fmt.Fprintln(out, "Aborting to prevent overwrite. Delete the existing file first if you want to regenerate it.")
		return
	}

	if err := createDefaultConfig(configPath); err != nil {
		fmt.Printf("❌ Error creating config file: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(out, "✅ Successfully created %s\n", configPath)
	fmt.Fprintln(out, "Set JIRA_API_TOKEN and LLM_API_KEY in your environment, then run 'sprint-inspect run'.")
}
