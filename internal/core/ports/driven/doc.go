// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - KnowledgeSource: Reads raw files from the knowledge directory
//   - NormaliserRegistry: Turns raw files into documents
//   - PostProcessor: Splits documents into chunks
//   - IndexStore: Persists and loads the vector index bundle
//   - ConfigStore: Application configuration
//   - PersonaStore: The assistant persona
//
// # Degradable Interfaces
//
// Failures of these are absorbed per turn rather than stopping the process:
//
//   - EmbeddingService: Generates vectors. Without it retrieval returns no context.
//   - VectorIndex: Similarity search. Without it retrieval returns no context.
//   - LLMService: Text generation. Failures become an in-character degraded reply.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
