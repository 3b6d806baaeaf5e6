package tui

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("tui: chat service is required")

// ErrMissingSessionStore is returned when the session store is not provided.
var ErrMissingSessionStore = errors.New("tui: session store is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")

// ErrReplyPending is returned when a session change is attempted while a reply is pending.
var ErrReplyPending = errors.New("tui: wait for the reply to finish")
