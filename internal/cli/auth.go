package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mikematt33/sprint-inspect/internal/config"
	"github.com/mikematt33/sprint-inspect/internal/jira"
	"github.com/mikematt33/sprint-inspect/pkg/models"
)

const apiTokenURL = "https://id.atlassian.com/manage-profile/security/api-tokens"

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Jira credentials",
	Long: `Store and check the Jira Cloud credentials used for every run.
Jira Cloud uses basic auth with your account email and an API token.
Credentials from JIRA_HOST, JIRA_EMAIL and JIRA_API_TOKEN always take precedence
over the configuration file.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify and store Jira credentials",
	Args:  cobra.NoArgs,
	Run:   runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that the configured credentials work",
	Args:  cobra.NoArgs,
	Run:   runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored API token from the configuration file",
	Args:  cobra.NoArgs,
	Run:   runAuthLogout,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
}

// verifyCredentials is a variable to allow stubbing in tests.
var verifyCredentials = func(ctx context.Context, host, email, token string) (models.User, error) {
	client := jira.NewClient(jira.Options{Host: host, Email: email, APIToken: token, Timeout: 15 * time.Second})
	return client.Myself(ctx)
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptValue asks for a value and keeps current when the answer is empty.
func promptValue(r *bufio.Reader, out io.Writer, label, current string) (string, error) {
	if current != "" {
		_, _ = fmt.Fprintf(out, "%s [%s]: ", label, current)
	} else {
		_, _ = fmt.Fprintf(out, "%s: ", label)
	}
	v, err := readLine(r)
	if err != nil {
		return "", err
	}
	if v == "" {
		return current, nil
	}
	return v, nil
}

// readSecret reads without echo on a terminal and falls back to a plain line.
func readSecret(in io.Reader, r *bufio.Reader, out io.Writer, label string) (string, error) {
	_, _ = fmt.Fprintf(out, "%s: ", label)
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	return readLine(r)
}

func runAuthLogin(cmd *cobra.Command, args []string) {
	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	r := bufio.NewReader(in)

	path, err := targetConfigPath()
	if err != nil {
		fmt.Printf("Error resolving config path: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	_, _ = fmt.Fprintln(out, "Authenticate with Jira Cloud")
	_, _ = fmt.Fprintln(out, "----------------------------")

	host, err := promptValue(r, out, "Jira host (e.g. company.atlassian.net)", cfg.Jira.Host)
	if err != nil || host == "" {
		_, _ = fmt.Fprintln(out, "\n❌ A Jira host is required.")
		return
	}
	email, err := promptValue(r, out, "Account email", cfg.Jira.Email)
	if err != nil || email == "" {
		_, _ = fmt.Fprintln(out, "\n❌ An account email is required.")
		return
	}

	_, _ = fmt.Fprintf(out, "\nCreate an API token at %s\n", apiTokenURL)
	token, err := readSecret(in, r, out, "API token")
	if err != nil || token == "" {
		_, _ = fmt.Fprintln(out, "\n❌ Empty token provided.")
		return
	}

	_, _ = fmt.Fprintln(out, "Validating credentials...")
	me, err := verifyCredentials(cmd.Context(), host, email, token)
	if err != nil {
		_, _ = fmt.Fprintf(out, "❌ Validation failed: %v\n", err)
		_, _ = fmt.Fprintln(out, "Check the host, the email and that the token has not been revoked.")
		return
	}
	_, _ = fmt.Fprintf(out, "✅ Authenticated as %s\n\n", me.DisplayName)

	_, _ = fmt.Fprintln(out, "How would you like to store the credentials?")
	_, _ = fmt.Fprintln(out, "1. Config file (plain text, file mode 0600)")
	_, _ = fmt.Fprintln(out, "2. Print environment variables to export myself")
	_, _ = fmt.Fprintln(out, "3. Don't store")
	_, _ = fmt.Fprint(out, "Enter choice [1-3]: ")
	choice, _ := readLine(r)

	switch choice {
	case "1":
		cfg.Jira.Host, cfg.Jira.Email, cfg.Jira.APIToken = host, email, token
		if err := config.Save(cfg, path); err != nil {
			_, _ = fmt.Fprintf(out, "\n❌ Failed to save config: %v\n", err)
			os.Exit(1)
		}
		_, _ = fmt.Fprintf(out, "\n✅ Credentials saved to %s\n", path)
	case "2":
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintf(out, "  export JIRA_HOST=%q\n", host)
		_, _ = fmt.Fprintf(out, "  export JIRA_EMAIL=%q\n", email)
		_, _ = fmt.Fprintf(out, "  export JIRA_API_TOKEN=%q\n", token)
	case "3":
		_, _ = fmt.Fprintln(out, "\n✅ Credentials validated but not stored.")
	default:
		_, _ = fmt.Fprintln(out, "\n❌ Invalid choice. Credentials not stored.")
	}
}

func runAuthStatus(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "Jira Authentication Status")
	_, _ = fmt.Fprintln(out, "--------------------------")

	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Printf("❌ Error loading config: %v\n", err)
		os.Exit(1)
	}

	var missing []string
	if cfg.Jira.Host == "" {
		missing = append(missing, "JIRA_HOST")
	}
	if cfg.Jira.Email == "" {
		missing = append(missing, "JIRA_EMAIL")
	}
	if cfg.Jira.APIToken == "" {
		missing = append(missing, "JIRA_API_TOKEN")
	}
	if len(missing) > 0 {
		_, _ = fmt.Fprintf(out, "❌ Not configured: missing %s\n", strings.Join(missing, ", "))
		_, _ = fmt.Fprintln(out, "\nRun 'sprint-inspect auth login' to set up credentials.")
		os.Exit(1)
	}

	me, err := verifyCredentials(cmd.Context(), cfg.Jira.Host, cfg.Jira.Email, cfg.Jira.APIToken)
	if err != nil {
		_, _ = fmt.Fprintln(out, "❌ Credentials were rejected")
		_, _ = fmt.Fprintf(out, "   Error: %v\n", err)
		os.Exit(1)
	}

	_, _ = fmt.Fprintf(out, "✅ Authenticated as %s\n", me.DisplayName)
	_, _ = fmt.Fprintf(out, "   Host: %s\n", jira.BaseURL(cfg.Jira.Host))
	_, _ = fmt.Fprintf(out, "   Token: %s\n", cfg.Masked().Jira.APIToken)
	if os.Getenv("JIRA_API_TOKEN") != "" {
		_, _ = fmt.Fprintln(out, "   Token source: JIRA_API_TOKEN environment variable")
	} else {
		_, _ = fmt.Fprintln(out, "   Token source: config file")
	}
}

func runAuthLogout(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()

	path, err := targetConfigPath()
	if err != nil {
		fmt.Printf("Error resolving config path: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		fmt.Printf("❌ Error loading config: %v\n", err)
		os.Exit(1)
	}

	envToken := os.Getenv("JIRA_API_TOKEN") != ""
	if cfg.Jira.APIToken == "" && !envToken {
		_, _ = fmt.Fprintln(out, "❌ No stored token found.")
		return
	}

	if cfg.Jira.APIToken != "" {
		if !promptYesNo(cmd.InOrStdin(), out, fmt.Sprintf("Remove the API token from %s?", path)) {
			_, _ = fmt.Fprintln(out, "Logout cancelled.")
			return
		}
		cfg.Jira.APIToken = ""
		if err := config.Save(cfg, path); err != nil {
			_, _ = fmt.Fprintf(out, "❌ Failed to save config: %v\n", err)
			os.Exit(1)
		}
		_, _ = fmt.Fprintln(out, "✅ Removed token from config file")
	}

	if envToken {
		_, _ = fmt.Fprintln(out, "\n⚠️  JIRA_API_TOKEN is set in your current session.")
		_, _ = fmt.Fprintln(out, "   To remove it, run: unset JIRA_API_TOKEN")
	}
}
