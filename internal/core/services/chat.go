package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driven"
	"github.com/custodia-labs/vernebot/internal/core/ports/driving"
	"github.com/custodia-labs/vernebot/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// DefaultTopK is the number of passages retrieved per turn.
const DefaultTopK = 5

// ChatConfig configures a ChatService.
type ChatConfig struct {
	// TopK is the number of passages retrieved per turn. Zero uses DefaultTopK.
	TopK int

	// HistoryWindow is the number of recent messages in the prompt.
	HistoryWindow int
}

// ChatService runs one chat turn: retrieve, compose, generate, append.
type ChatService struct {
	retriever *Retriever
	generator *GenerationClient
	store     driven.IndexStore
	builder   driven.VectorIndexBuilder
	topK      int
	window    int
}

// NewChatService creates a chat service. store and builder are only used
// by Reload and may be nil when the index never changes.
func NewChatService(
	retriever *Retriever,
	generator *GenerationClient,
	store driven.IndexStore,
	builder driven.VectorIndexBuilder,
	cfg ChatConfig,
) *ChatService {
	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &ChatService{
		retriever: retriever,
		generator: generator,
		store:     store,
		builder:   builder,
		topK:      topK,
		window:    cfg.HistoryWindow,
	}
}

// Answer replies to userInput in the active session of sessions and
// appends exactly two messages to it: the input and the reply.
func (c *ChatService) Answer(ctx context.Context, sessions driving.SessionStore, userInput string) (*domain.Turn, error) {
	if sessions == nil {
		return nil, fmt.Errorf("%w: no session store", domain.ErrInvalidInput)
	}
	question := strings.TrimSpace(userInput)
	if question == "" {
		return nil, fmt.Errorf("%w: empty message", domain.ErrInvalidInput)
	}

	active := sessions.Active()
	logger.Debug("Answer: session=%q, history=%d", active.ID, len(active.Messages))

	hits := c.retriever.RetrieveScored(ctx, question, c.topK)

	prompt := ComposePrompt(PromptInput{
		Persona:       c.generator.Persona(),
		Context:       domain.Chunks(hits),
		History:       active.Messages,
		UserInput:     question,
		HistoryWindow: c.window,
	})

	reply, err := c.generator.Generate(ctx, prompt)

	turn := &domain.Turn{
		SessionID: active.ID,
		Question:  question,
		Reply:     reply,
		Context:   hits,
		Degraded:  err != nil,
		Cause:     err,
	}

	if err := sessions.Append(domain.RoleUser, question); err != nil {
		return turn, fmt.Errorf("append user message: %w", err)
	}
	if err := sessions.Append(domain.RoleAssistant, reply); err != nil {
		return turn, fmt.Errorf("append reply: %w", err)
	}

	return turn, nil
}

// Persona returns the assistant persona.
func (c *ChatService) Persona() domain.Persona {
	return c.generator.Persona()
}

// Reload loads the bundle at indexPath and swaps it in. On failure the
// current index stays in place.
func (c *ChatService) Reload(ctx context.Context, indexPath string) error {
	if c.store == nil || c.builder == nil {
		return fmt.Errorf("%w: no index store configured", domain.ErrIndexUnavailable)
	}
	index, err := LoadIndex(ctx, c.store, c.builder, indexPath)
	if err != nil {
		return err
	}
	c.retriever.SetIndex(index)
	return nil
}
