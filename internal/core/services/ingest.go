package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driven"
	"github.com/custodia-labs/vernebot/internal/core/ports/driving"
	"github.com/custodia-labs/vernebot/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultBatchSize is the number of chunks embedded per request.
const DefaultBatchSize = 64

// IngestService turns a knowledge directory into a persisted vector index.
// Runs are serialised so a watch-triggered run never overlaps a manual one.
type IngestService struct {
	source    driven.KnowledgeSource
	registry  driven.NormaliserRegistry
	pipeline  driven.PostProcessorPipeline
	embedder  driven.EmbeddingService
	builder   driven.VectorIndexBuilder
	store     driven.IndexStore
	batchSize int
	progress  driving.IngestProgressFunc
	now       func() time.Time

	mu sync.Mutex
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithBatchSize sets the number of chunks per embedding request.
// Non-positive values keep DefaultBatchSize.
func WithBatchSize(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn driving.IngestProgressFunc) IngestOption {
	return func(s *IngestService) {
		s.progress = fn
	}
}

// NewIngestService creates an ingestion service.
// The embedder may be nil, in which case Ingest fails with
// domain.ErrEmbeddingUnavailable before touching the existing index.
func NewIngestService(
	source driven.KnowledgeSource,
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	builder driven.VectorIndexBuilder,
	store driven.IndexStore,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		source:    source,
		registry:  registry,
		pipeline:  pipeline,
		embedder:  embedder,
		builder:   builder,
		store:     store,
		batchSize: DefaultBatchSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest loads, chunks and embeds the knowledge directory, then saves the index.
//
//nolint:gocyclo // Pipeline orchestration with sequential steps
func (s *IngestService) Ingest(ctx context.Context, knowledgeDir, indexPath string) (*domain.IngestReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	report := &domain.IngestReport{
		KnowledgeDir: knowledgeDir,
		IndexPath:    indexPath,
	}
	defer func() {
		report.Duration = s.now().Sub(start)
	}()

	if s.embedder == nil {
		return report, fmt.Errorf("%w: no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}

	logger.Section("Ingest")
	logger.Info("Loading knowledge from %s", knowledgeDir)

	// 1. LOAD
	s.report(domain.StageLoading, 0, 0)
	raws, loadErrs := s.source.Load(ctx, knowledgeDir)
	for _, err := range loadErrs {
		s.skip(report, err)
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	s.report(domain.StageLoading, len(raws), len(raws))

	// 2. NORMALISE + CHUNK
	var chunks []domain.Chunk
	for i := range raws {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		s.report(domain.StageChunking, i+1, len(raws))

		docChunks, err := s.chunkOne(ctx, &raws[i])
		if err != nil {
			s.skip(report, &domain.FileError{Source: raws[i].Source, Err: err})
			continue
		}
		if len(docChunks) == 0 {
			logger.Debug("No text in %s", raws[i].Source)
			continue
		}
		report.Documents++
		chunks = append(chunks, docChunks...)
	}
	report.Chunks = len(chunks)
	logger.Info("Chunked %d documents into %d chunks", report.Documents, report.Chunks)

	// 3. EMBED
	entries, err := s.embed(ctx, chunks, report)
	if err != nil {
		return report, err
	}
	report.Embedded = len(entries)
	if report.Chunks > 0 && len(entries) == 0 {
		return report, fmt.Errorf("%w: all %d chunks failed to embed, keeping the previous index",
			domain.ErrEmbeddingUnavailable, report.Chunks)
	}

	// 4. BUILD
	meta := domain.IndexMeta{
		Provider:   s.embedder.ProviderName(),
		Model:      s.embedder.ModelName(),
		Dimensions: s.embedder.Dimensions(),
		CreatedAt:  s.now().UTC(),
	}
	if len(entries) > 0 {
		meta.Dimensions = len(entries[0].Vector)
	}
	index, err := s.builder.Build(meta, entries)
	if err != nil {
		return report, fmt.Errorf("build index: %w", err)
	}

	// 5. SAVE
	s.report(domain.StageSaving, 0, 1)
	if err := s.store.Save(ctx, indexPath, index.Snapshot()); err != nil {
		return report, fmt.Errorf("save index: %w", err)
	}
	s.report(domain.StageSaving, 1, 1)

	logger.Info("Indexed %d of %d chunks (%d dropped, %d files skipped)",
		report.Embedded, report.Chunks, report.Dropped, len(report.Skipped))
	return report, nil
}

// Watch re-ingests whenever the knowledge directory changes.
// The first run is left to the caller.
func (s *IngestService) Watch(
	ctx context.Context,
	knowledgeDir, indexPath string,
	onReport func(*domain.IngestReport, error),
) error {
	return s.source.Watch(ctx, knowledgeDir, func() {
		logger.Info("Change detected in %s, re-ingesting", knowledgeDir)
		report, err := s.Ingest(ctx, knowledgeDir, indexPath)
		if err != nil {
			logger.Error("Re-ingest failed: %v", err)
		}
		if onReport != nil {
			onReport(report, err)
		}
	})
}

// chunkOne normalises a raw file and splits it into chunks.
func (s *IngestService) chunkOne(ctx context.Context, raw *domain.RawDocument) ([]domain.Chunk, error) {
	doc, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, nil
	}
	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("chunk: %w", err)
	}
	return chunks, nil
}

// embed embeds chunks batch by batch. A failed batch is dropped and
// recorded; only cancellation aborts the run.
func (s *IngestService) embed(
	ctx context.Context,
	chunks []domain.Chunk,
	report *domain.IngestReport,
) ([]domain.IndexEntry, error) {
	entries := make([]domain.IndexEntry, 0, len(chunks))
	batches := (len(chunks) + s.batchSize - 1) / s.batchSize
	dims := 0

	for b := 0; b < batches; b++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.report(domain.StageEmbedding, b, batches)

		lo := b * s.batchSize
		hi := min(lo+s.batchSize, len(chunks))
		batch := chunks[lo:hi]

		texts := make([]string, len(batch))
		for i := range batch {
			texts[i] = batch[i].Content
		}

		vectors, err := s.embedder.EmbedDocuments(ctx, texts)
		if err == nil && len(vectors) != len(batch) {
			err = fmt.Errorf("%w: got %d embeddings for %d texts",
				domain.ErrEmbeddingUnavailable, len(vectors), len(batch))
		}
		if err == nil {
			if dims == 0 && len(vectors) > 0 {
				dims = len(vectors[0])
			}
			err = checkDimensions(vectors, dims)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logger.Warn("Dropping embedding batch %d/%d (%d chunks): %v", b+1, batches, len(batch), err)
			report.Dropped += len(batch)
			report.Failures = append(report.Failures, fmt.Errorf("embed batch %d/%d: %w", b+1, batches, err))
			continue
		}

		for i := range batch {
			entries = append(entries, domain.IndexEntry{Chunk: batch[i], Vector: vectors[i]})
		}
	}
	s.report(domain.StageEmbedding, batches, batches)

	return entries, nil
}

func checkDimensions(vectors [][]float32, dims int) error {
	for i, v := range vectors {
		if len(v) == 0 || len(v) != dims {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d",
				domain.ErrDimensionMismatch, i, len(v), dims)
		}
	}
	return nil
}

// skip records a file that could not be ingested.
func (s *IngestService) skip(report *domain.IngestReport, err error) {
	var fileErr *domain.FileError
	if errors.As(err, &fileErr) {
		report.Skipped = append(report.Skipped, fileErr.Source)
	}
	logger.Warn("Skipping: %v", err)
	report.Failures = append(report.Failures, err)
}

func (s *IngestService) report(stage domain.IngestStage, current, total int) {
	if s.progress != nil {
		s.progress(domain.IngestProgress{Stage: stage, Current: current, Total: total})
	}
}

// IngestFailures joins the non-fatal failures of a report, or returns nil.
func IngestFailures(report *domain.IngestReport) error {
	if report == nil || len(report.Failures) == 0 {
		return nil
	}
	return errors.Join(report.Failures...)
}
