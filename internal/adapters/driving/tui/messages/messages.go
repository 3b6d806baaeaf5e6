// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/vernebot/internal/core/domain"
)

// ReplyRequested is a command to answer the user's input.
type ReplyRequested struct {
	Input string
}

// ReplyReceived carries the outcome of a ReplyRequested back to the model.
type ReplyReceived struct {
	Turn *domain.Turn
	Err  error
}

// SessionChanged is sent after the active session changes.
type SessionChanged struct {
	ID string
}

// SessionDeleted is sent after a session is deleted.
type SessionDeleted struct {
	ID  string
	Err error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
