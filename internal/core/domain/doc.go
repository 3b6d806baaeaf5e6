// Package domain defines the core business entities for VerneBot.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A normalised file from the knowledge directory
//   - Chunk: A retrievable window of document text
//   - IndexEntry: A chunk paired with its embedding vector
//   - Session: A named conversation made of Messages
//   - Persona: The assistant's instructions and canned replies
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
