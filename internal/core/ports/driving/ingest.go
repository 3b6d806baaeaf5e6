package driving

import (
	"context"

	"github.com/custodia-labs/vernebot/internal/core/domain"
)

// IngestService builds the persisted vector index from a knowledge directory.
type IngestService interface {
	// Ingest loads, chunks and embeds every supported file under knowledgeDir
	// and writes the index bundle to indexPath. Per-file and per-batch failures
	// are recorded in the report; an error is returned only when the index
	// could not be saved.
	Ingest(ctx context.Context, knowledgeDir, indexPath string) (*domain.IngestReport, error)

	// Watch re-runs Ingest whenever the knowledge directory changes.
	// It blocks until ctx is cancelled.
	Watch(ctx context.Context, knowledgeDir, indexPath string, onReport func(*domain.IngestReport, error)) error
}

// IngestProgressFunc receives progress updates during ingestion.
type IngestProgressFunc func(domain.IngestProgress)
