package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vernebot/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask VerneBot a single question",
	Long: `Answers one question using passages from the knowledge index.
The conversation is not kept; use 'vernebot chat' for follow-ups.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the reply and its sources as JSON")
	rootCmd.AddCommand(askCmd)
}

// askOutput is the JSON form of a turn.
type askOutput struct {
	Reply    string          `json:"reply"`
	Degraded bool            `json:"degraded"`
	Error    string          `json:"error,omitempty"`
	Sources  []passageOutput `json:"sources"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	if err := requireValidConfig(); err != nil {
		return err
	}
	store, err := sessions()
	if err != nil {
		return err
	}

	loadIndex(cmd)

	turn, err := chatService.Answer(cmd.Context(), store, args[0])
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAskJSON(cmd, turn)
	}

	cmd.Println(turn.Reply)
	if len(turn.Context) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, source := range distinctSources(turn.Context) {
			cmd.Printf("  - %s\n", source)
		}
	}
	return nil
}

func outputAskJSON(cmd *cobra.Command, turn *domain.Turn) error {
	out := askOutput{
		Reply:    turn.Reply,
		Degraded: turn.Degraded,
		Sources:  toPassages(turn.Context),
	}
	if turn.Cause != nil {
		out.Error = turn.Cause.Error()
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// distinctSources lists passage sources once each, in rank order.
func distinctSources(hits []domain.ScoredChunk) []string {
	var out []string
	seen := make(map[string]bool, len(hits))
	for i := range hits {
		src := hits[i].Chunk.Source
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true
		out = append(out, src)
	}
	return out
}
