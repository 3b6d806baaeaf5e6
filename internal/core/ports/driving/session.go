package driving

import "github.com/custodia-labs/vernebot/internal/core/domain"

// SessionStore holds the conversations of one user.
// Exactly one session is active at any time.
type SessionStore interface {
	// NewSession makes a fresh empty session active and returns its id.
	// A non-empty active session is archived; an empty one is replaced.
	NewSession() string

	// Switch makes the retained session id active.
	Switch(id string) error

	// Delete removes session id. Deleting the active session activates a
	// new empty session.
	Delete(id string) error

	// Append adds a message to the active session.
	Append(role domain.Role, text string) error

	// Active returns a copy of the active session.
	Active() domain.Session

	// Get returns a copy of session id.
	Get(id string) (domain.Session, error)

	// List returns copies of all retained sessions, newest first.
	List() []domain.Session
}
