package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ragcache/ragcache/internal/config"
	"github.com/ragcache/ragcache/internal/engine"
	"github.com/ragcache/ragcache/internal/ui"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index and cache status",
	Long: `Display the state of the vector index and the completion cache:
- Number of indexed chunks and the store snapshot path
- Embedding model and dimension
- Cache backend, size, and hit counters

Examples:
  ragcache status`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}

	fmt.Println(ui.Header.Render("Index Status"))
	fmt.Println()

	fmt.Printf("  %s %s\n", ui.Dim.Render("Store:"), cfg.Store.Path)
	if _, err := os.Stat(cfg.Store.Path); os.IsNotExist(err) {
		fmt.Printf("  %s\n", ui.Warning.Render("(no snapshot on disk yet)"))
	}
	fmt.Printf("  %s %s\n", ui.Dim.Render("Model:"), eng.Retriever.EmbeddingModelName())
	fmt.Printf("  %s %d\n", ui.Dim.Render("Dimension:"), eng.Embedder.Dimension())
	fmt.Printf("  %s %d chunks\n", ui.Dim.Render("Indexed:"), eng.Retriever.IndexSize())

	if eng.Retriever.IndexSize() == 0 {
		fmt.Println()
		fmt.Println("Run 'ragcache index [path]' to build the index.")
	}

	fmt.Println()
	printCacheStatus(eng.Cache.Status(context.Background()))
	return nil
}
