package driving

import (
	"context"

	"github.com/custodia-labs/vernebot/internal/core/domain"
)

// RetrievalService finds the passages most relevant to a query.
type RetrievalService interface {
	// Retrieve returns up to k chunks, best first. It never fails:
	// when embeddings or the index are unavailable it returns an empty list.
	Retrieve(ctx context.Context, query string, k int) []domain.Chunk

	// RetrieveScored is Retrieve with similarity scores kept.
	RetrieveScored(ctx context.Context, query string, k int) []domain.ScoredChunk
}
