package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mikematt33/sprint-inspect/internal/cache"
	"github.com/mikematt33/sprint-inspect/internal/config"
)

var flagClearStats bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the sprint issue cache",
	Long: `Manage the disk cache of closed-sprint issues and project names.
Closed sprints do not change, so repeated runs reuse their issue lists instead of
paging through the Jira API again. The cache is used only when CACHE_ENABLED is
true; entries expire after CACHE_TTL (24h by default).`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached entries",
	Example: `  sprint-inspect cache clear
  sprint-inspect cache clear --stats`,
	Args: cobra.NoArgs,
	Run:  runCacheClear,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache location, entry count and size",
	Args:  cobra.NoArgs,
	Run:   runCacheStats,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired entries only",
	Args:  cobra.NoArgs,
	Run:   runCachePrune,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePruneCmd)

	cacheClearCmd.Flags().BoolVar(&flagClearStats, "stats", false, "Show statistics before clearing")
}

// openCache opens the store configured for this user without validating the
// rest of the configuration.
func openCache() (*cache.Store, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	return cache.New(cfg.Cache.Dir, cfg.Cache.TTL)
}

func printCacheStats(w io.Writer, c *cache.Store, st cache.Stats) {
	_, _ = fmt.Fprintf(w, "  Location: %s\n", c.Dir())
	_, _ = fmt.Fprintf(w, "  Entries: %d (%d expired)\n", st.Entries, st.Expired)
	_, _ = fmt.Fprintf(w, "  Size: %.2f MB\n", float64(st.Bytes)/(1024*1024))
	_, _ = fmt.Fprintf(w, "  TTL: %s\n", c.TTL())
}

func runCacheClear(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	c, err := openCache()
	if err != nil {
		fmt.Printf("Error initializing cache: %v\n", err)
		os.Exit(1)
	}

	if flagClearStats {
		st, err := c.Stats()
		if err != nil {
			_, _ = fmt.Fprintf(out, "Error getting cache stats: %v\n", err)
		} else {
			_, _ = fmt.Fprintln(out, "Cache statistics before clearing:")
			printCacheStats(out, c, st)
		}
	}

	if err := c.Clear(); err != nil {
		fmt.Printf("Error clearing cache: %v\n", err)
		os.Exit(1)
	}
	_, _ = fmt.Fprintln(out, "✓ Cache cleared successfully")
}

func runCacheStats(cmd *cobra.Command, args []string) {
	c, err := openCache()
	if err != nil {
		fmt.Printf("Error initializing cache: %v\n", err)
		os.Exit(1)
	}

	st, err := c.Stats()
	if err != nil {
		fmt.Printf("Error getting cache stats: %v\n", err)
		os.Exit(1)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "Cache statistics:")
	printCacheStats(out, c, st)
}

func runCachePrune(cmd *cobra.Command, args []string) {
	c, err := openCache()
	if err != nil {
		fmt.Printf("Error initializing cache: %v\n", err)
		os.Exit(1)
	}

	removed, err := c.Prune()
	if err != nil {
		fmt.Printf("Error pruning cache: %v\n", err)
		os.Exit(1)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d expired entries\n", removed)
}
