// Package tui provides an interactive terminal chat interface for VerneBot.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/vernebot/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat answers user turns.
	Chat driving.ChatService

	// Sessions holds the conversations of this TUI run.
	Sessions driving.SessionStore
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(chat driving.ChatService, sessions driving.SessionStore) *Ports {
	return &Ports{
		Chat:     chat,
		Sessions: sessions,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Chat == nil {
		return ErrMissingChatService
	}
	if p.Sessions == nil {
		return ErrMissingSessionStore
	}
	return nil
}
