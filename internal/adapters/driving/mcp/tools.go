package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/vernebot/internal/core/domain"
)

// defaultK is the number of passages returned when the caller gives none.
const defaultK = 5

// maxK caps the number of passages per call.
const maxK = 50

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the question or topic to look up in the knowledge base"`
	K     int    `json:"k,omitempty" jsonschema:"maximum number of passages to return (default 5)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Passages []PassageOutput `json:"passages"`
	Count    int             `json:"count"`
}

// PassageOutput is one retrieved passage.
type PassageOutput struct {
	Source  string  `json:"source"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question   string `json:"question" jsonschema:"the question for VerneBot"`
	NewSession bool   `json:"new_session,omitempty" jsonschema:"start a fresh conversation before asking"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Reply     string   `json:"reply"`
	SessionID string   `json:"session_id"`
	Degraded  bool     `json:"degraded"`
	Sources   []string `json:"sources,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Find the knowledge-base passages most relevant to a query",
	}, s.handleRetrieve)

	if s.ports.Chat != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Ask VerneBot, the business-scaling coach, a question grounded in the knowledge base",
		}, s.handleAsk)
	}
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, RetrieveOutput{}, errors.New("query is required")
	}

	k := input.K
	if k <= 0 {
		k = defaultK
	}
	k = min(k, maxK)

	hits := s.ports.Retrieval.RetrieveScored(ctx, input.Query, k)

	output := RetrieveOutput{
		Passages: make([]PassageOutput, len(hits)),
		Count:    len(hits),
	}
	for i := range hits {
		output.Passages[i] = PassageOutput{
			Source:  hits[i].Chunk.Source,
			Content: hits[i].Chunk.Content,
			Score:   hits[i].Score,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation. Degraded replies are returned
// as normal output with Degraded set.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if input.NewSession {
		s.ports.Sessions.NewSession()
	}

	turn, err := s.ports.Chat.Answer(ctx, s.ports.Sessions, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Reply:     turn.Reply,
		SessionID: turn.SessionID,
		Degraded:  turn.Degraded,
		Sources:   sources(turn.Context),
	}, nil
}

// sources lists the distinct passage sources in rank order.
func sources(hits []domain.ScoredChunk) []string {
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
