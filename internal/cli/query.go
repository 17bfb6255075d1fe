package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ragcache/ragcache/internal/config"
	"github.com/ragcache/ragcache/internal/engine"
	"github.com/ragcache/ragcache/internal/retriever"
	"github.com/ragcache/ragcache/internal/ui"
	"github.com/ragcache/ragcache/internal/vector"
)

var (
	queryTopK     int
	queryMaxChars int
	queryPrompt   bool
	queryJSON     bool
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Retrieve the most relevant indexed chunks for a question",
	Long: `Embed the question and return the top-k most similar chunks from
the vector store, ranked by cosine similarity.

Examples:
  # Basic retrieval
  ragcache query "how does billing work"

  # More results
  ragcache query "error handling" --top-k 8

  # Print the grounded prompt that would be sent to a completion provider
  ragcache query "how does billing work" --prompt

  # Machine-readable output
  ragcache query "api endpoints" --json`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	queryCmd.Flags().IntVar(&queryMaxChars, "max-chars", 0, "context window budget in characters (default from config)")
	queryCmd.Flags().BoolVarP(&queryPrompt, "prompt", "p", false, "print the grounded prompt instead of ranked results")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := args[0]
	cfg := config.Get()

	topK := queryTopK
	if topK <= 0 {
		topK = cfg.Retrieval.TopK
	}
	maxChars := queryMaxChars
	if maxChars <= 0 {
		maxChars = cfg.Retrieval.MaxContextChars
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}

	if eng.Retriever.IndexSize() == 0 {
		fmt.Println(ui.Warning.Render("The index is empty."))
		fmt.Println()
		fmt.Println("Run 'ragcache index [path]' first.")
		return nil
	}

	log.Debug("Running query", "top_k", topK, "max_chars", maxChars)
	ctx := context.Background()

	if queryPrompt {
		contextText, _, err := eng.Retriever.BuildContext(ctx, question, topK, maxChars)
		if err != nil {
			return fmt.Errorf("failed to build context: %w", err)
		}
		fmt.Println(retriever.BuildPrompt(question, contextText))
		return nil
	}

	results, err := eng.Retriever.Retrieve(ctx, question, topK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if queryJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	printResults(question, results)
	return nil
}

func printResults(question string, results []vector.Result) {
	fmt.Println(ui.Header.Render("Results for: ") + ui.Bold.Render(question))
	fmt.Println()

	for i, res := range results {
		source := res.Metadata[vector.MetaSourcePath]
		if source == "" {
			source = "unknown"
		}
		chunkIdx, _ := strconv.Atoi(res.Metadata[vector.MetaChunkIndex])

		fmt.Printf("%s %s %s\n",
			ui.ResultHeader.Render(fmt.Sprintf("%d.", i+1)),
			ui.FormatSource(source, chunkIdx),
			ui.FormatScore(res.Score),
		)
		fmt.Println(ui.ResultContent.Render(res.Text))
		fmt.Println()
	}

	if len(results) == 0 {
		fmt.Println(ui.Dim.Render("No results."))
	}
}
