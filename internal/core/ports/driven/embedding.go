package driven

import "context"

// EmbeddingService generates vector embeddings for text.
// Documents and queries are embedded separately because some providers
// optimise the request differently for each intent.
type EmbeddingService interface {
	// EmbedDocuments generates one embedding per corpus text, in input order.
	// On failure it returns a nil result and an error wrapping
	// domain.ErrEmbeddingUnavailable; the whole batch is lost.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates the embedding for a live query.
	// On failure it returns a nil vector and an error wrapping
	// domain.ErrEmbeddingUnavailable.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ProviderName returns the provider identifier recorded in the index.
	ProviderName() string

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Ping validates the service is reachable and functional.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
