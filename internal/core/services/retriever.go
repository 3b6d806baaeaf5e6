package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driven"
	"github.com/custodia-labs/vernebot/internal/core/ports/driving"
	"github.com/custodia-labs/vernebot/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// Retriever finds the chunks closest to a query in the loaded index.
// Every failure degrades to an empty result so a chat turn can still
// be answered without context.
type Retriever struct {
	embedder driven.EmbeddingService

	mu    sync.RWMutex
	index driven.VectorIndex
}

// NewRetriever creates a retriever. Either argument may be nil.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
	}
}

// SetIndex swaps the index used by subsequent queries.
func (r *Retriever) SetIndex(index driven.VectorIndex) {
	r.mu.Lock()
	r.index = index
	r.mu.Unlock()
}

// Index returns the current index, or nil.
func (r *Retriever) Index() driven.VectorIndex {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index
}

// Retrieve returns up to k chunks, best first.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) []domain.Chunk {
	return domain.Chunks(r.RetrieveScored(ctx, query, k))
}

// RetrieveScored returns up to k chunks with their similarity scores.
func (r *Retriever) RetrieveScored(ctx context.Context, query string, k int) []domain.ScoredChunk {
	empty := []domain.ScoredChunk{}

	query = strings.TrimSpace(query)
	if query == "" || k <= 0 {
		return empty
	}

	index := r.Index()
	if index == nil {
		logger.Warn("Retrieval skipped: %v", domain.ErrIndexUnavailable)
		return empty
	}
	if index.Len() == 0 {
		logger.Debug("Retrieval skipped: index is empty")
		return empty
	}
	if r.embedder == nil {
		logger.Warn("Retrieval skipped: %v", domain.ErrEmbeddingUnavailable)
		return empty
	}

	meta := index.Meta()
	if !meta.Compatible(r.embedder.ProviderName(), r.embedder.ModelName()) {
		logger.Warn("Retrieval skipped: %v: index built with %s/%s, querying with %s/%s",
			domain.ErrProviderMismatch, meta.Provider, meta.Model,
			r.embedder.ProviderName(), r.embedder.ModelName())
		return empty
	}

	logger.Debug("Retrieve: query=%q, k=%d", query, k)
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil || len(vector) == 0 {
		logger.Warn("Query embedding failed, answering without context: %v", err)
		return empty
	}

	hits, err := index.Search(ctx, vector, k)
	if err != nil {
		logger.Warn("Vector search failed, answering without context: %v", err)
		return empty
	}

	logger.Debug("Retrieve: %d hits", len(hits))
	return hits
}

// LoadIndex reads the bundle at dir and builds a searchable index from it.
// Any failure wraps domain.ErrIndexUnavailable.
func LoadIndex(
	ctx context.Context,
	store driven.IndexStore,
	builder driven.VectorIndexBuilder,
	dir string,
) (driven.VectorIndex, error) {
	snapshot, err := store.Load(ctx, dir)
	if err != nil {
		return nil, err
	}

	index, err := builder.Build(snapshot.Meta, snapshot.Entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}

	logger.Info("Loaded index: %d entries, %s/%s (%d dims)",
		index.Len(), snapshot.Meta.Provider, snapshot.Meta.Model, snapshot.Meta.Dimensions)
	return index, nil
}
