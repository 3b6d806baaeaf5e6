package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an exact, brute-force cosine similarity index.
type VectorIndex struct {
	mu      sync.RWMutex
	meta    domain.IndexMeta
	entries []domain.IndexEntry
	norms   []float64
}

// NewVectorIndex creates an empty index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{}
}

// Builder creates VectorIndex instances for the core services.
type Builder struct{}

// Ensure Builder implements the interface.
var _ driven.VectorIndexBuilder = Builder{}

// Build returns a new VectorIndex over entries.
func (Builder) Build(meta domain.IndexMeta, entries []domain.IndexEntry) (driven.VectorIndex, error) {
	idx := NewVectorIndex()
	if err := idx.Build(meta, entries); err != nil {
		return nil, err
	}
	return idx, nil
}

// FromSnapshot builds an index from a persisted snapshot.
func FromSnapshot(snapshot domain.IndexSnapshot) (*VectorIndex, error) {
	idx := NewVectorIndex()
	if err := idx.Build(snapshot.Meta, snapshot.Entries); err != nil {
		return nil, err
	}
	return idx, nil
}

// Build replaces the index contents. Every vector must share one dimension,
// which is recorded in the index meta. Empty input yields an empty index.
func (idx *VectorIndex) Build(meta domain.IndexMeta, entries []domain.IndexEntry) error {
	dims := meta.Dimensions
	if len(entries) > 0 {
		dims = len(entries[0].Vector)
		if dims == 0 {
			return fmt.Errorf("%w: entry 0 has an empty vector", domain.ErrInvalidInput)
		}
		if meta.Dimensions > 0 && meta.Dimensions != dims {
			return fmt.Errorf("%w: meta declares %d dimensions, vectors have %d",
				domain.ErrDimensionMismatch, meta.Dimensions, dims)
		}
	}

	copied := make([]domain.IndexEntry, len(entries))
	norms := make([]float64, len(entries))
	for i, e := range entries {
		if len(e.Vector) != dims {
			return fmt.Errorf("%w: entry %d has %d dimensions, want %d",
				domain.ErrDimensionMismatch, i, len(e.Vector), dims)
		}
		vec := make([]float32, dims)
		copy(vec, e.Vector)
		copied[i] = domain.IndexEntry{Chunk: e.Chunk, Vector: vec}
		norms[i] = norm(vec)
	}

	meta.Dimensions = dims
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.meta = meta
	idx.entries = copied
	idx.norms = norms
	return nil
}

// Search ranks entries by cosine similarity to query.
func (idx *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if k <= 0 || len(idx.entries) == 0 {
		return []domain.ScoredChunk{}, nil
	}
	if len(query) != idx.meta.Dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), idx.meta.Dimensions)
	}
	if k > len(idx.entries) {
		k = len(idx.entries)
	}

	qNorm := norm(query)
	hits := make([]domain.ScoredChunk, len(idx.entries))
	for i, e := range idx.entries {
		hits[i] = domain.ScoredChunk{
			Chunk: e.Chunk,
			Score: cosine(query, qNorm, e.Vector, idx.norms[i]),
		}
	}

	// Stable sort keeps insertion order among equal scores.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	return hits[:k], nil
}

// Len returns the number of indexed entries.
func (idx *VectorIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Meta returns how the index was built.
func (idx *VectorIndex) Meta() domain.IndexMeta {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.meta
}

// Entries returns a copy of the indexed entries in insertion order.
func (idx *VectorIndex) Entries() []domain.IndexEntry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]domain.IndexEntry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Snapshot returns the durable form of the index.
func (idx *VectorIndex) Snapshot() domain.IndexSnapshot {
	return domain.IndexSnapshot{Meta: idx.Meta(), Entries: idx.Entries()}
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine returns 0 when either vector has zero length.
func cosine(a []float32, aNorm float64, b []float32, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (aNorm * bNorm)
}
