package domain

import (
	"strings"
	"time"
)

// Role identifies who sent a message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Label returns the capitalised role name used in transcripts.
func (r Role) Label() string {
	if r == "" {
		return ""
	}
	s := string(r)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Message is a single entry in a session's log.
type Message struct {
	Role      Role
	Content   string
	CreatedAt time.Time
}

// SessionIDLayout is the time layout used to derive session ids.
const SessionIDLayout = "2006-01-02 15:04:05"

// Session is a named conversation. Its message log is append-only.
type Session struct {
	ID        string
	Messages  []Message
	CreatedAt time.Time
}

// IsEmpty returns true if the session has no messages.
func (s Session) IsEmpty() bool {
	return len(s.Messages) == 0
}

// Title returns a short label for the session, taken from the first user message.
func (s Session) Title() string {
	for _, m := range s.Messages {
		if m.Role != RoleUser {
			continue
		}
		title := strings.Join(strings.Fields(m.Content), " ")
		if r := []rune(title); len(r) > 40 {
			title = string(r[:40]) + "…"
		}
		return title
	}
	return "New chat"
}

// Recent returns the last n messages, or all of them if there are fewer.
func (s Session) Recent(n int) []Message {
	if n <= 0 {
		return nil
	}
	if len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}

// Turn is the outcome of answering one user input.
type Turn struct {
	// SessionID is the session the turn was appended to.
	SessionID string

	// Question is the user input.
	Question string

	// Reply is the assistant text. Never empty.
	Reply string

	// Context holds the passages given to the model, best first.
	Context []ScoredChunk

	// Degraded is true when Reply is the persona's fallback message.
	Degraded bool

	// Cause is the generation error behind a degraded reply.
	Cause error
}
