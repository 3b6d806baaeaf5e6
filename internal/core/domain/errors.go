package domain

import (
	"context"
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfigInvalid indicates the configuration cannot be used to serve.
	// This is the only error kind allowed to stop the process at startup.
	ErrConfigInvalid = errors.New("invalid configuration")

	// Ingestion Errors.

	// ErrIngestion indicates a single knowledge file could not be read or parsed.
	// The file is skipped and ingestion continues.
	ErrIngestion = errors.New("ingestion failed")

	// ErrUnsupportedFormat indicates no normaliser handles the file type.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrPDFToolNotFound indicates pdftotext is not installed.
	ErrPDFToolNotFound = errors.New("pdftotext not found")

	// ErrEmptyDocument indicates a document produced no extractable text.
	ErrEmptyDocument = errors.New("document has no extractable text")

	// Embedding Errors.

	// ErrEmbeddingUnavailable indicates the embedding provider failed or is not configured.
	// Batch callers drop the affected chunks, query callers fall back to no context.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Index Errors.

	// ErrIndexUnavailable indicates the persisted index is missing or corrupt.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrDimensionMismatch indicates a vector does not match the index dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrProviderMismatch indicates the index was built with a different embedding model.
	ErrProviderMismatch = errors.New("embedding provider mismatch")

	// Generation Errors.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrGeneration indicates the LLM provider returned an error or no text.
	ErrGeneration = errors.New("generation failed")

	// ErrGenerationTimeout indicates generation exceeded its time budget.
	ErrGenerationTimeout = errors.New("generation timed out")

	// Session Errors.

	// ErrSessionNotFound indicates the session id is not retained by the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrRateLimited indicates the provider API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// GenerationFailure wraps a provider failure with ErrGeneration.
// Deadline failures also wrap ErrGenerationTimeout.
func GenerationFailure(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w: %s: %w", ErrGeneration, ErrGenerationTimeout, provider, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrGeneration, provider, err)
}

// FileError reports a knowledge file that could not be ingested.
// It matches ErrIngestion and its cause with errors.Is.
type FileError struct {
	// Source is the path relative to the knowledge directory.
	Source string
	Err    error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrIngestion, e.Source, e.Err)
}

// Unwrap returns ErrIngestion and the cause.
func (e *FileError) Unwrap() []error {
	return []error{ErrIngestion, e.Err}
}
