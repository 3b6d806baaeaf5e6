package driven

import "github.com/custodia-labs/vernebot/internal/core/domain"

// PersonaStore provides the assistant persona.
// Implementations may load it from a file or embed it in the binary.
type PersonaStore interface {
	// Load returns the persona. Missing fields fall back to domain.DefaultPersona.
	Load() (domain.Persona, error)

	// Reload clears any cached persona, forcing a fresh load on next access.
	Reload()
}
