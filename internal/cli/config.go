package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragcache/ragcache/internal/config"
	"github.com/ragcache/ragcache/internal/ui"
)

var configShowPath bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Display current configuration settings and config file locations.

Examples:
  # Show current configuration
  ragcache config

  # Show config file paths
  ragcache config --path`,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configShowPath, "path", false, "show config file paths")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configShowPath {
		fmt.Println(ui.Header.Render("Configuration Paths"))
		fmt.Println()
		fmt.Printf("Global config: %s\n", config.GlobalConfigPath())
		fmt.Printf("Local config:  .ragcacherc.yaml (searched from cwd upward)\n")
		fmt.Printf("Active config: %s\n", config.ConfigFilePath())
		fmt.Printf("Vector store:  %s\n", config.Get().Store.Path)
		return nil
	}

	// Show current configuration
	cfg := config.Get()

	fmt.Println(ui.Header.Render("Current Configuration"))
	fmt.Println()

	fmt.Println(ui.Bold.Render("Embeddings:"))
	fmt.Printf("  Model: %s\n", cfg.Embeddings.Model)
	fmt.Printf("  Dimension: %d\n", cfg.Embeddings.Dimension)
	fmt.Printf("  OpenAI Model: %s\n", cfg.Embeddings.OpenAI.Model)
	if cfg.Embeddings.OpenAI.BaseURL != "" {
		fmt.Printf("  OpenAI Base URL: %s\n", cfg.Embeddings.OpenAI.BaseURL)
	}
	fmt.Println()

	fmt.Println(ui.Bold.Render("Ingestion:"))
	fmt.Printf("  Data Dir: %s\n", cfg.Ingest.DataDir)
	fmt.Printf("  Chunk Size: %d\n", cfg.Ingest.ChunkSize)
	fmt.Printf("  Chunk Overlap: %d\n", cfg.Ingest.ChunkOverlap)
	fmt.Printf("  Max File Size: %d bytes\n", cfg.Ingest.MaxFileSize)
	fmt.Printf("  Max File Count: %d\n", cfg.Ingest.MaxFileCount)
	fmt.Println()

	fmt.Println(ui.Bold.Render("Retrieval:"))
	fmt.Printf("  Top K: %d\n", cfg.Retrieval.TopK)
	fmt.Printf("  Max Context Chars: %d\n", cfg.Retrieval.MaxContextChars)
	fmt.Println()

	fmt.Println(ui.Bold.Render("Cache:"))
	fmt.Printf("  Enabled: %t\n", cfg.Cache.Enabled)
	fmt.Printf("  Backend: %s\n", cfg.Cache.Backend)
	fmt.Printf("  Redis URL: %s\n", cfg.Cache.RedisURL)
	fmt.Printf("  Namespace: %s\n", cfg.Cache.Namespace)
	fmt.Printf("  TTL: %ds\n", cfg.Cache.TTLSeconds)
	fmt.Printf("  Max Entries: %d\n", cfg.Cache.MaxEntries)
	fmt.Printf("  Similarity Threshold: %.2f\n", cfg.Cache.SimilarityThreshold)
	fmt.Printf("  Semantic Scan Limit: %d\n", cfg.Cache.SemanticScanLimit)
	fmt.Println()

	fmt.Println(ui.Bold.Render("Store:"))
	fmt.Printf("  Path: %s\n", cfg.Store.Path)
	fmt.Println()

	fmt.Println(ui.Bold.Render("Ignore Patterns:"))
	fmt.Printf("  %d patterns configured\n", len(cfg.Ignore))

	return nil
}
