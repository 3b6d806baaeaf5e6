package driven

import (
	"context"

	"github.com/custodia-labs/vernebot/internal/core/domain"
)

// VectorIndex provides similarity search over chunk embeddings.
// An index is built once and read-only afterwards, so concurrent
// searches are safe.
type VectorIndex interface {
	// Search returns up to k chunks ranked by descending similarity.
	// Ties keep insertion order. k is clamped to Len().
	// A query of the wrong dimension fails with domain.ErrDimensionMismatch.
	Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error)

	// Len returns the number of indexed entries.
	Len() int

	// Meta returns how the index was built.
	Meta() domain.IndexMeta

	// Snapshot returns the durable form of the index.
	Snapshot() domain.IndexSnapshot
}

// IndexStore persists vector index bundles.
type IndexStore interface {
	// Save writes the snapshot to the bundle at path, replacing any previous one.
	// A failed save never leaves a partially written bundle behind.
	Save(ctx context.Context, path string, snapshot domain.IndexSnapshot) error

	// Load reads the bundle at path. Missing, corrupt or incomplete bundles
	// fail with domain.ErrIndexUnavailable.
	Load(ctx context.Context, path string) (domain.IndexSnapshot, error)
}

// VectorIndexBuilder creates populated, read-only vector indexes.
type VectorIndexBuilder interface {
	// Build returns an index over entries. Mixed vector dimensions fail
	// with domain.ErrDimensionMismatch.
	Build(meta domain.IndexMeta, entries []domain.IndexEntry) (VectorIndex, error)
}
