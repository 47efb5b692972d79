package cli

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v3"

	"github.com/mikematt33/sprint-inspect/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage the sprint-inspect configuration file.
The configuration file is typically located at:
- Linux: ~/.config/sprint-inspect/config.yaml
- macOS: ~/Library/Application Support/sprint-inspect/config.yaml
- Windows: %APPDATA%\sprint-inspect\config.yaml

Environment variables always take precedence over the file.`,
}

var setCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set a configuration value using dot notation.
Examples:
  sprint-inspect config set jira.host acme.atlassian.net
  sprint-inspect config set jira.project_keys ABC,DEF
  sprint-inspect config set output.presentation false
  sprint-inspect config set jira.timeout 45s`,
	Args: cobra.ExactArgs(2),
	Run:  runSet,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the effective configuration with secrets masked",
	Run:   runList,
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Describe the supported environment variables",
	Run:   runEnv,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(setCmd)

	setCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) != 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return []string{
			"jira.host",
			"jira.email",
			"jira.api_token",
			"jira.project_keys",
			"jira.team_labels",
			"jira.story_point_fields",
			"jira.timeout",
			"output.dir",
			"output.combined",
			"output.presentation",
			"llm.provider",
			"llm.api_key",
			"llm.model",
			"log.level",
			"log.format",
			"schedule.cron",
			"telegram.bot_token",
			"telegram.chat_ids",
		}, cobra.ShellCompDirectiveNoFileComp
	}

	configCmd.AddCommand(listCmd)
	configCmd.AddCommand(envCmd)
}

// targetConfigPath is the file that config set and init write to.
func targetConfigPath() (string, error) {
	if flagConfig != "" {
		return flagConfig, nil
	}
	return config.GetConfigPath()
}

func runList(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	data, err := yaml.Marshal(cfg.Masked())
	if err != nil {
		fmt.Printf("Error marshaling config: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))

	for _, w := range cfg.Warnings() {
		fmt.Fprintf(cmd.OutOrStdout(), "⚠️  %s\n", w)
	}
}

func runEnv(cmd *cobra.Command, args []string) {
	help, err := config.EnvHelp()
	if err != nil {
		fmt.Printf("Error describing environment: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintln(cmd.OutOrStdout(), help)
}

func runSet(cmd *cobra.Command, args []string) {
	key := args[0]
	valStr := args[1]

	path, err := targetConfigPath()
	if err != nil {
		fmt.Printf("Error resolving config path: %v\n", err)
		os.Exit(1)
	}

	// Only the file is edited; environment overrides must not leak into it.
	cfg, err := config.LoadFile(path)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := setConfigValue(cfg, key, valStr); err != nil {
		fmt.Printf("Error setting value: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg, path); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Configuration saved to %s\n", path)
}

var durationType = reflect.TypeOf(time.Duration(0))

// setConfigValue traverses the struct using reflection and sets the value
func setConfigValue(obj interface{}, path string, valStr string) error {
	parts := strings.Split(path, ".")
	v := reflect.ValueOf(obj)

	// Ensure we have a pointer if we want to set it, or unwrap if it's an interface
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	for i, part := range parts {
		if v.Kind() != reflect.Struct {
			return fmt.Errorf("field %s is not a struct", strings.Join(parts[:i], "."))
		}

		// Find field by yaml tag
		typ := v.Type()
		var fieldVal reflect.Value
		found := false

		for j := 0; j < typ.NumField(); j++ {
			field := typ.Field(j)
			tag := field.Tag.Get("yaml")
			cleanTag := strings.Split(tag, ",")[0]
			if cleanTag == part {
				fieldVal = v.Field(j)
				found = true
				break
			}
		}

		if !found {
			// Fallback: try case-insensitive field name match
			fieldVal = v.FieldByNameFunc(func(n string) bool {
				return strings.EqualFold(n, part)
			})
			if !fieldVal.IsValid() {
				return fmt.Errorf("field '%s' not found", part)
			}
		}

		v = fieldVal
	}

	if !v.CanSet() {
		return fmt.Errorf("cannot set field %s", path)
	}

	if v.Type() == durationType {
		d, err := time.ParseDuration(valStr)
		if err != nil {
			return fmt.Errorf("invalid duration value: %s", valStr)
		}
		v.SetInt(int64(d))
		return nil
	}

	// Set value based on type
	switch v.Kind() {
	case reflect.String:
		v.SetString(valStr)
	case reflect.Int, reflect.Int64:
		i, err := strconv.ParseInt(valStr, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value: %s", valStr)
		}
		v.SetInt(i)
	case reflect.Bool:
		b, err := strconv.ParseBool(valStr)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %s", valStr)
		}
		v.SetBool(b)
	case reflect.Slice:
		return setSlice(v, path, valStr)
	default:
		return fmt.Errorf("unsupported type %s for key %s", v.Kind(), path)
	}

	return nil
}

// setSlice replaces a list value from a comma-separated string.
func setSlice(v reflect.Value, path, valStr string) error {
	var items []string
	for _, s := range strings.Split(valStr, ",") {
		if s = strings.TrimSpace(s); s != "" {
			items = append(items, s)
		}
	}

	out := reflect.MakeSlice(v.Type(), 0, len(items))
	for _, item := range items {
		switch v.Type().Elem().Kind() {
		case reflect.String:
			out = reflect.Append(out, reflect.ValueOf(item))
		case reflect.Int64:
			i, err := strconv.ParseInt(item, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %s", item)
			}
			out = reflect.Append(out, reflect.ValueOf(i))
		default:
			return fmt.Errorf("unsupported list type %s for key %s", v.Type().Elem().Kind(), path)
		}
	}
	v.Set(out)
	return nil
}
