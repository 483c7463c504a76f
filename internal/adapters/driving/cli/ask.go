package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from your documents",
	Long: `Answer a question using the closest document passages as context.

When the completion service is unavailable a fallback message is printed
instead; run with --verbose to see the cause.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Show the passages closest to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var (
	askSources   bool
	searchLimit  int
	searchAsJSON bool
)

func init() {
	askCmd.Flags().BoolVarP(&askSources, "sources", "s", false, "Print the passages used as context")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Maximum number of results (default: retrieval.top_k)")
	searchCmd.Flags().BoolVar(&searchAsJSON, "json", false, "Print results as JSON")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(searchCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}
	ensureIndex(cmd)

	question := strings.Join(args, " ")
	answer := answerService.Ask(cmd.Context(), question)

	cmd.Println(answer.Text)

	if askSources && len(answer.Hits) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		printHits(cmd, answer.Hits)
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}
	ensureIndex(cmd)

	query := strings.Join(args, " ")
	hits, err := answerService.Retrieve(cmd.Context(), query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchAsJSON {
		return printHitsJSON(cmd, hits)
	}

	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Found %d results for %q:\n\n", len(hits), query)
	printHits(cmd, hits)
	return nil
}

func printHits(cmd *cobra.Command, hits []domain.RetrievalHit) {
	for i := range hits {
		hit := &hits[i]
		cmd.Printf("%d. %s (id %d, chunk %d, distance %.4f)\n",
			i+1, hit.Document.Name, hit.Document.ID, hit.Chunk.Position, hit.Distance)
		cmd.Printf("   %s\n\n", truncate(oneLine(hit.Chunk.Content), 200))
	}
}

type hitJSON struct {
	DocumentID int64   `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	Name       string  `json:"name"`
	Position   int     `json:"position"`
	Distance   float64 `json:"distance"`
	Content    string  `json:"content"`
}

func printHitsJSON(cmd *cobra.Command, hits []domain.RetrievalHit) error {
	out := make([]hitJSON, len(hits))
	for i := range hits {
		out[i] = hitJSON{
			DocumentID: hits[i].Document.ID,
			ChunkID:    hits[i].Chunk.ID,
			Name:       hits[i].Document.Name,
			Position:   hits[i].Chunk.Position,
			Distance:   hits[i].Distance,
			Content:    hits[i].Chunk.Content,
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
