package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vernebot/internal/connectors/filesystem"
	"github.com/custodia-labs/vernebot/internal/core/domain"
)

var (
	retrieveLimit int
	retrieveJSON  bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Show the passages most relevant to a query",
	Long: `Embeds the query and prints the closest passages from the knowledge
index, best first. No answer is generated.`,
	Args: cobra.ExactArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveLimit, "limit", "n", 5, "maximum number of passages")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output passages as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

// passageOutput is the JSON form of a retrieved passage.
type passageOutput struct {
	Source  string  `json:"source"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	loadIndex(cmd)

	hits := retrievalService.RetrieveScored(cmd.Context(), args[0], retrieveLimit)

	if retrieveJSON {
		data, err := json.MarshalIndent(toPassages(hits), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal passages: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(hits) == 0 {
		cmd.Println("No passages found.")
		return nil
	}

	knowledgeDir := ""
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			knowledgeDir = settings.Knowledge.Dir
		}
	}

	cmd.Println("Passages:")
	cmd.Println()
	for i := range hits {
		chunk := hits[i].Chunk
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, chunk.Source, hits[i].Score)
		if knowledgeDir != "" && chunk.Source != "" {
			cmd.Printf("      Path: %s\n", filesystem.ResolvePath(knowledgeDir, chunk.Source))
		}
		cmd.Printf("      %s\n", snippet(chunk.Content, 200))
		cmd.Println()
	}
	return nil
}

func toPassages(hits []domain.ScoredChunk) []passageOutput {
	out := make([]passageOutput, len(hits))
	for i := range hits {
		out[i] = passageOutput{
			Source:  hits[i].Chunk.Source,
			Content: hits[i].Chunk.Content,
			Score:   hits[i].Score,
		}
	}
	return out
}

// snippet collapses whitespace and truncates to limit runes.
func snippet(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > limit {
		return string(r[:limit]) + "..."
	}
	return text
}
