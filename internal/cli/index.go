package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ragcache/ragcache/internal/config"
	"github.com/ragcache/ragcache/internal/engine"
	"github.com/ragcache/ragcache/internal/ingest"
	"github.com/ragcache/ragcache/internal/ui"
)

var (
	indexRebuild bool
	indexDryRun  bool
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index documents for retrieval",
	Long: `Index documents in the configured data directory (or the given path).

This command will:
1. Discover supported text files under the directory
2. Split files into overlapping chunks
3. Generate an embedding for each chunk
4. Upsert the chunks into the local vector store and persist it

Examples:
  # Index the configured data directory
  ragcache index

  # Index a specific directory
  ragcache index ./docs

  # Drop the existing index and rebuild from scratch
  ragcache index --rebuild

  # Preview what would be indexed
  ragcache index --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVarP(&indexRebuild, "rebuild", "r", false, "clear the store before indexing")
	indexCmd.Flags().BoolVarP(&indexDryRun, "dry-run", "d", false, "preview without indexing")
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}

	opts := eng.IngestOptions()
	if len(args) > 0 {
		absPath, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve path: %w", err)
		}
		opts.DataDir = absPath
	}

	info, err := os.Stat(opts.DataDir)
	if err != nil {
		return fmt.Errorf("data directory does not exist: %s", opts.DataDir)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", opts.DataDir)
	}

	log.Debug("Starting index",
		"path", opts.DataDir,
		"rebuild", indexRebuild,
		"dry-run", indexDryRun,
	)

	docs, err := ingest.CollectDocuments(opts)
	if err != nil {
		return fmt.Errorf("failed to collect documents: %w", err)
	}
	if len(docs) == 0 {
		fmt.Println(ui.Warning.Render("No supported documents found."))
		fmt.Printf("Looked in: %s\n", opts.DataDir)
		return nil
	}

	if indexDryRun {
		fmt.Println(ui.Header.Render("Dry Run"))
		fmt.Println()
		for _, doc := range docs {
			fmt.Printf("  %s\n", doc)
		}
		fmt.Printf("\n%d files would be indexed.\n", len(docs))
		return nil
	}

	chunks, err := ingest.BuildChunks(opts)
	if err != nil {
		return fmt.Errorf("failed to chunk documents: %w", err)
	}

	// Handle interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Interrupted, stopping index")
		cancel()
	}()

	stats, err := eng.Retriever.Index(ctx, chunks, indexRebuild)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Printf("%s Indexed %d chunks from %d files\n",
		ui.Success.Render("✓"),
		stats.IndexedChunks,
		len(docs),
	)
	fmt.Printf("  %s %s (dimension %d)\n",
		ui.Dim.Render("Model:"),
		stats.EmbeddingModel,
		stats.EmbeddingDimension,
	)
	return nil
}
