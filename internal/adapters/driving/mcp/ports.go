package mcp

import (
	"github.com/custodia-labs/vernebot/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval finds passages in the knowledge base.
	Retrieval driving.RetrievalService

	// Chat answers questions. Optional: without it only retrieval is served.
	Chat driving.ChatService

	// Sessions holds the conversations of the stdio client.
	Sessions driving.SessionStore

	// NewSessions makes a session store for each HTTP client session.
	// Chat needs Sessions, NewSessions or both.
	NewSessions func() driving.SessionStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if p.Chat != nil && p.Sessions == nil && p.NewSessions == nil {
		return ErrMissingSessionStore
	}
	return nil
}
