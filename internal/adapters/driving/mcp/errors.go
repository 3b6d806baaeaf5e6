// Package mcp provides an MCP (Model Context Protocol) server adapter for VerneBot.
// It lets AI assistants query the knowledge base and ask VerneBot questions.
package mcp

import "errors"

var (
	// ErrMissingRetrievalService is returned when the retrieval service is not provided.
	ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

	// ErrMissingSessionStore is returned when chat is enabled without a session store.
	ErrMissingSessionStore = errors.New("mcp: session store is required for chat")
)
