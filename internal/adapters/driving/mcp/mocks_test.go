package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driving"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	hits  []domain.ScoredChunk
	lastK int
}

func (m *mockRetrievalService) Retrieve(ctx context.Context, query string, k int) []domain.Chunk {
	return domain.Chunks(m.RetrieveScored(ctx, query, k))
}

func (m *mockRetrievalService) RetrieveScored(_ context.Context, _ string, k int) []domain.ScoredChunk {
	m.lastK = k
	if k < len(m.hits) {
		return m.hits[:k]
	}
	return m.hits
}

// mockChatService is a mock implementation of driving.ChatService that
// echoes the question and appends to the given store.
type mockChatService struct {
	persona  domain.Persona
	context  []domain.ScoredChunk
	degraded bool
}

func (m *mockChatService) Answer(
	_ context.Context,
	sessions driving.SessionStore,
	userInput string,
) (*domain.Turn, error) {
	if strings.TrimSpace(userInput) == "" {
		return nil, domain.ErrInvalidInput
	}
	reply := "echo: " + userInput
	var cause error
	if m.degraded {
		cause = errors.New("model down")
		reply = m.persona.DegradedReply(cause)
	}
	if err := sessions.Append(domain.RoleUser, userInput); err != nil {
		return nil, err
	}
	if err := sessions.Append(domain.RoleAssistant, reply); err != nil {
		return nil, err
	}
	return &domain.Turn{
		SessionID: sessions.Active().ID,
		Question:  userInput,
		Reply:     reply,
		Context:   m.context,
		Degraded:  m.degraded,
		Cause:     cause,
	}, nil
}

func (m *mockChatService) Persona() domain.Persona {
	return m.persona
}

func (m *mockChatService) Reload(_ context.Context, _ string) error {
	return nil
}
