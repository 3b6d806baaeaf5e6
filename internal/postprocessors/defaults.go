package postprocessors

import (
	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/postprocessors/chunker"
)

// NewDefaultPipeline builds the ingestion pipeline from chunking settings.
// A non-positive size falls back to the chunker default; a negative overlap
// does too. Zero overlap disables overlap.
func NewDefaultPipeline(settings domain.ChunkingSettings) *Pipeline {
	var opts []chunker.Option
	if settings.Size > 0 {
		opts = append(opts, chunker.WithChunkSize(settings.Size))
	}
	if settings.Overlap >= 0 {
		opts = append(opts, chunker.WithOverlap(settings.Overlap))
	}
	return NewPipeline(chunker.New(opts...))
}
