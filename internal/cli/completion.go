package cli

import (
	"bufio"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var completionAuto bool

// getCompletionVersion hashes the version and the command tree so stale
// completion scripts can be detected.
func getCompletionVersion() string {
	h := sha256.New()
	h.Write([]byte(Version))

	var walk func(*cobra.Command)
	walk = func(cmd *cobra.Command) {
		h.Write([]byte(cmd.Use))
		cmd.Flags().VisitAll(func(flag *pflag.Flag) {
			h.Write([]byte(flag.Name))
		})
		for _, sub := range cmd.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)

	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate completion script",
	Long: `Generate and install shell completion scripts.

Project keys and team labels complete from the configuration file and from
recently used values.

Automatic Configuration:
  $ sprint-inspect completion --auto

Check Completion Status:
  $ sprint-inspect completion status

Bash:
  $ source <(sprint-inspect completion bash)

Zsh:
  $ sprint-inspect completion zsh > "${fpath[1]}/_sprint-inspect"

Fish:
  $ sprint-inspect completion fish > ~/.config/fish/completions/sprint-inspect.fish
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell", "status"},
	Args:                  cobra.MatchAll(cobra.ArbitraryArgs, cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if completionAuto {
			runAutoCompletion(cmd.InOrStdin(), out)
			return
		}

		if len(args) == 0 {
			_ = cmd.Help()
			return
		}

		switch args[0] {
		case "status":
			runCompletionStatus(out)
		case "bash":
			writeCompletionHeader(out)
			_ = cmd.Root().GenBashCompletionV2(out, true)
		case "zsh":
			writeCompletionHeader(out)
			_ = cmd.Root().GenZshCompletion(out)
		case "fish":
			writeCompletionHeader(out)
			_ = cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			writeCompletionHeader(out)
			_ = cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
	completionCmd.Flags().BoolVar(&completionAuto, "auto", false, "Automatically attempt to configure shell completion for the current shell")
}

func promptYesNo(in io.Reader, out io.Writer, question string) bool {
	_, _ = fmt.Fprintf(out, "%s [Y/n]: ", question)
	text, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && text == "" {
		return false
	}
	text = strings.TrimSpace(strings.ToLower(text))
	return text == "" || text == "y" || text == "yes"
}

// shellRCFile returns the rc file and source line for bash and zsh.
func shellRCFile(shellName, home string) (string, string, bool) {
	switch shellName {
	case "bash":
		return filepath.Join(home, ".bashrc"), "source <(sprint-inspect completion bash)", true
	case "zsh":
		return filepath.Join(home, ".zshrc"), "source <(sprint-inspect completion zsh)", true
	}
	return "", "", false
}

func runAutoCompletion(in io.Reader, out io.Writer) {
	shell := os.Getenv("SHELL")
	if shell == "" {
		_, _ = fmt.Fprintln(out, "❌ Could not detect shell (SHELL env var empty). Please configure manually.")
		return
	}
	shellName := filepath.Base(shell)

	home, err := os.UserHomeDir()
	if err != nil {
		_, _ = fmt.Fprintf(out, "❌ Could not find user home directory: %v\n", err)
		return
	}

	targetFile, line, ok := shellRCFile(shellName, home)
	if !ok {
		_, _ = fmt.Fprintf(out, "❌ Auto-completion is only supported for Bash and Zsh (detected: %s).\nPlease follow the manual instructions.\n", shellName)
		return
	}

	_, _ = fmt.Fprintf(out, "Detected Shell: %s\n", shellName)
	_, _ = fmt.Fprintf(out, "Target Config File: %s\n", targetFile)
	_, _ = fmt.Fprintf(out, "Action: Append the following line to the file:\n  %s\n\n", line)

	if !promptYesNo(in, out, "Do you want to proceed?") {
		_, _ = fmt.Fprintln(out, "Aborted.")
		return
	}

	content, err := os.ReadFile(targetFile)
	if err != nil && !os.IsNotExist(err) {
		_, _ = fmt.Fprintf(out, "❌ Failed to read file: %v\n", err)
		return
	}
	if strings.Contains(string(content), "sprint-inspect completion") {
		_, _ = fmt.Fprintln(out, "✅ Completion is already configured.")
		return
	}

	f, err := os.OpenFile(targetFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		_, _ = fmt.Fprintf(out, "❌ Failed to open file: %v\n", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			_, _ = fmt.Fprintf(out, "❌ Failed to close file: %v\n", err)
		}
	}()

	if _, err := fmt.Fprintf(f, "\n# sprint-inspect completion\n%s\n", line); err != nil {
		_, _ = fmt.Fprintf(out, "❌ Failed to write to file: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(out, "✅ Successfully configured completion.")
	_, _ = fmt.Fprintf(out, "🔄 Please restart your terminal or run 'source %s' to activate.\n", targetFile)
}

// writeCompletionHeader writes version metadata as a comment in completion scripts.
func writeCompletionHeader(w io.Writer) {
	_, _ = fmt.Fprintf(w, "# sprint-inspect completion version: %s\n", getCompletionVersion())
	_, _ = fmt.Fprintf(w, "# sprint-inspect version: %s\n\n", Version)
}

func runCompletionStatus(out io.Writer) {
	shell := os.Getenv("SHELL")
	if shell == "" {
		_, _ = fmt.Fprintln(out, "❌ Could not detect shell (SHELL env var empty)")
		return
	}
	shellName := filepath.Base(shell)
	current := getCompletionVersion()

	_, _ = fmt.Fprintf(out, "Current Version: %s (sprint-inspect %s)\n", current, Version)
	_, _ = fmt.Fprintf(out, "Shell: %s\n\n", shellName)

	home, _ := os.UserHomeDir()
	var checkPaths []string
	switch shellName {
	case "bash":
		checkPaths = []string{filepath.Join(home, ".bashrc"), "/etc/bash_completion.d/sprint-inspect"}
	case "zsh":
		checkPaths = []string{filepath.Join(home, ".zshrc"), "/usr/local/share/zsh/site-functions/_sprint-inspect"}
	case "fish":
		checkPaths = []string{filepath.Join(home, ".config/fish/completions/sprint-inspect.fish")}
	default:
		_, _ = fmt.Fprintf(out, "⚠️  Completion status check not supported for %s\n", shellName)
		return
	}

	found, outdated := false, false
	for _, path := range checkPaths {
		content, err := os.ReadFile(path)
		if err != nil || !strings.Contains(string(content), "sprint-inspect") {
			continue
		}
		found = true
		_, _ = fmt.Fprintf(out, "📄 Found: %s\n", path)

		switch {
		case strings.Contains(string(content), "source <(sprint-inspect completion"):
			// Sourced at shell start, always current.
			_, _ = fmt.Fprintln(out, "   ✅ Generated on each shell start")
		case strings.Contains(string(content), "completion version: "+current):
			_, _ = fmt.Fprintln(out, "   ✅ Up to date")
		default:
			_, _ = fmt.Fprintln(out, "   ⚠️  Outdated - regenerate the script")
			outdated = true
		}
	}

	switch {
	case !found:
		_, _ = fmt.Fprintln(out, "❌ No completion configuration found")
		_, _ = fmt.Fprintln(out, "\nRun 'sprint-inspect completion --auto' to set up completions")
	case outdated:
		_, _ = fmt.Fprintln(out, "\n💡 Run 'sprint-inspect completion --auto' to update")
	default:
		_, _ = fmt.Fprintln(out, "\n✅ Completions are up to date")
	}
}
