package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ragcache/ragcache/internal/cache"
	"github.com/ragcache/ragcache/internal/config"
	"github.com/ragcache/ragcache/internal/engine"
	"github.com/ragcache/ragcache/internal/ui"
)

var (
	cacheLookupExactOnly bool
	cacheStatusJSON      bool
)

// cacheCmd groups the completion-cache subcommands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the completion cache",
	Long: `Work with the exact+semantic completion cache directly.

Examples:
  # Look a prompt up (exact match, then semantic scan)
  ragcache cache lookup "how does billing work"

  # Store a completion for a prompt
  ragcache cache store "how does billing work" "Billing runs monthly."

  # Show cache counters and backend state
  ragcache cache status

  # Drop every cached entry
  ragcache cache clear`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var cacheLookupCmd = &cobra.Command{
	Use:   "lookup <prompt>",
	Short: "Look a prompt up in the cache",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheLookup,
}

var cacheStoreCmd = &cobra.Command{
	Use:   "store <prompt> <output>",
	Short: "Cache a completion for a prompt",
	Args:  cobra.ExactArgs(2),
	RunE:  runCacheStore,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached entries",
	RunE:  runCacheClear,
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache backend state and hit counters",
	RunE:  runCacheStatus,
}

func init() {
	cacheLookupCmd.Flags().BoolVarP(&cacheLookupExactOnly, "exact-only", "e", false, "skip the semantic scan")
	cacheStatusCmd.Flags().BoolVar(&cacheStatusJSON, "json", false, "output status as JSON")

	cacheCmd.AddCommand(cacheLookupCmd)
	cacheCmd.AddCommand(cacheStoreCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
}

func newCache() (*cache.SemanticCache, error) {
	eng, err := engine.New(config.Get())
	if err != nil {
		return nil, err
	}
	return eng.Cache, nil
}

func runCacheLookup(cmd *cobra.Command, args []string) error {
	c, err := newCache()
	if err != nil {
		return err
	}

	res := c.Lookup(context.Background(), args[0], !cacheLookupExactOnly)

	switch res.HitType {
	case cache.HitExact:
		fmt.Println(ui.HitExact.Render("exact hit"))
		fmt.Println(res.Output)
	case cache.HitSemantic:
		fmt.Println(ui.HitSemantic.Render("semantic hit"))
		fmt.Println(res.Output)
	default:
		fmt.Println(ui.HitMiss.Render("miss"))
	}
	return nil
}

func runCacheStore(cmd *cobra.Command, args []string) error {
	c, err := newCache()
	if err != nil {
		return err
	}

	c.Store(context.Background(), args[0], args[1])
	fmt.Printf("%s Cached completion\n", ui.Success.Render("✓"))
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	c, err := newCache()
	if err != nil {
		return err
	}

	removed := c.Clear(context.Background())
	fmt.Printf("%s Removed %d entries\n", ui.Success.Render("✓"), removed)
	return nil
}

func runCacheStatus(cmd *cobra.Command, args []string) error {
	c, err := newCache()
	if err != nil {
		return err
	}

	status := c.Status(context.Background())

	if cacheStatusJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	printCacheStatus(status)
	return nil
}

func printCacheStatus(status cache.Status) {
	fmt.Println(ui.Header.Render("Cache Status"))
	fmt.Println()

	enabled := ui.Success.Render("enabled")
	if !status.Enabled {
		enabled = ui.Warning.Render("disabled")
	}
	fmt.Printf("  %s %s\n", ui.Dim.Render("State:"), enabled)

	backend := status.ActiveBackend
	if status.ActiveBackend != status.ConfiguredBackend {
		backend = fmt.Sprintf("%s %s", status.ActiveBackend,
			ui.Warning.Render(fmt.Sprintf("(configured: %s, fell back)", status.ConfiguredBackend)))
	}
	fmt.Printf("  %s %s\n", ui.Dim.Render("Backend:"), backend)
	fmt.Printf("  %s %d entries (max %d)\n", ui.Dim.Render("Size:"), status.Entries, status.MaxEntries)
	fmt.Printf("  %s %ds\n", ui.Dim.Render("TTL:"), status.TTLSeconds)
	fmt.Printf("  %s %.2f over the latest %d entries\n",
		ui.Dim.Render("Semantic threshold:"),
		status.SimilarityThreshold,
		status.SemanticScanLimit,
	)
	fmt.Println()

	s := status.Stats
	fmt.Println(ui.Bold.Render("Counters:"))
	fmt.Printf("  Requests: %d\n", s.Requests)
	fmt.Printf("  Exact hits: %d\n", s.ExactHits)
	fmt.Printf("  Semantic hits: %d\n", s.SemanticHits)
	fmt.Printf("  Misses: %d\n", s.Misses)
	fmt.Printf("  Writes: %d\n", s.Writes)
	fmt.Printf("  Invalidations: %d\n", s.Invalidations)
	fmt.Printf("  Errors: %d\n", s.Errors)
	fmt.Printf("  Hit ratio: %.4f\n", s.HitRatio)
}
