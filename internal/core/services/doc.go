// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The chat turn is split across small collaborators: Retriever finds
// passages, ComposePrompt renders the prompt, GenerationClient calls the
// LLM under a time budget and ChatService ties them to a SessionStore.
// IngestService builds the index those collaborators read.
//
// Services are pure Go with no CGO or external dependencies.
package services
