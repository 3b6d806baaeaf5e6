package domain

import "time"

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// KnowledgeDir is the directory that was read.
	KnowledgeDir string

	// IndexPath is where the index bundle was written.
	IndexPath string

	// Documents is the number of documents that produced text.
	Documents int

	// Skipped lists files that failed to load or normalise.
	Skipped []string

	// Chunks is the number of chunks produced by the chunker.
	Chunks int

	// Embedded is the number of chunks that made it into the index.
	Embedded int

	// Dropped is the number of chunks lost to embedding failures.
	Dropped int

	// Failures holds per-file and per-batch errors, none of them fatal.
	Failures []error

	// Duration is the wall time of the run.
	Duration time.Duration
}

// IngestStage identifies a step of the ingestion pipeline.
type IngestStage string

// Ingestion stages reported to progress callbacks.
const (
	StageLoading   IngestStage = "loading"
	StageChunking  IngestStage = "chunking"
	StageEmbedding IngestStage = "embedding"
	StageSaving    IngestStage = "saving"
)

// IngestProgress is reported while an ingestion runs.
type IngestProgress struct {
	Stage   IngestStage
	Current int
	Total   int
}
