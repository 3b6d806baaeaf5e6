package driving

import (
	"context"

	"github.com/custodia-labs/vernebot/internal/core/domain"
)

// ChatService answers user turns against the knowledge index.
type ChatService interface {
	// Answer generates a reply to userInput using the active session of
	// sessions as history, then appends the user input and the reply to that
	// session. Generation failures are absorbed into a degraded reply; the
	// only error is domain.ErrInvalidInput for empty input or a nil store.
	Answer(ctx context.Context, sessions SessionStore, userInput string) (*domain.Turn, error)

	// Persona returns the assistant persona.
	Persona() domain.Persona

	// Reload replaces the loaded index with the bundle at indexPath.
	Reload(ctx context.Context, indexPath string) error
}
