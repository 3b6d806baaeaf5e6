package domain

import "time"

// IndexEntry pairs a chunk with its embedding vector.
type IndexEntry struct {
	Chunk  Chunk
	Vector []float32
}

// IndexMeta records how an index was built.
// An index may only be queried with vectors from the same provider and model.
type IndexMeta struct {
	// Provider is the embedding provider name (e.g., "gemini").
	Provider string

	// Model is the embedding model name.
	Model string

	// Dimensions is the shared length of every vector in the index.
	Dimensions int

	// CreatedAt is when the index was built.
	CreatedAt time.Time
}

// Compatible reports whether vectors from provider/model can query this index.
func (m IndexMeta) Compatible(provider, model string) bool {
	return m.Provider == provider && m.Model == model
}

// IndexSnapshot is the durable form of a vector index.
type IndexSnapshot struct {
	Meta    IndexMeta
	Entries []IndexEntry
}

// ScoredChunk is a search hit. Higher scores are more similar.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Chunks strips the scores from hits, keeping their order.
func Chunks(hits []ScoredChunk) []Chunk {
	chunks := make([]Chunk, len(hits))
	for i := range hits {
		chunks[i] = hits[i].Chunk
	}
	return chunks
}
