package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrConfigInvalid", ErrConfigInvalid},
		{"ErrIngestion", ErrIngestion},
		{"ErrUnsupportedFormat", ErrUnsupportedFormat},
		{"ErrPDFToolNotFound", ErrPDFToolNotFound},
		{"ErrEmptyDocument", ErrEmptyDocument},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrIndexUnavailable", ErrIndexUnavailable},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrProviderMismatch", ErrProviderMismatch},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrGeneration", ErrGeneration},
		{"ErrGenerationTimeout", ErrGenerationTimeout},
		{"ErrSessionNotFound", ErrSessionNotFound},
		{"ErrRateLimited", ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrors_Distinct tests that error kinds never match each other
func TestErrors_Distinct(t *testing.T) {
	kinds := []error{
		ErrIngestion,
		ErrEmbeddingUnavailable,
		ErrIndexUnavailable,
		ErrGeneration,
		ErrGenerationTimeout,
	}

	for i, a := range kinds {
		for j, b := range kinds {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

// TestErrors_Wrapping tests that wrapped errors keep their kind
func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("reading handbook.pdf: %w: %w", ErrIngestion, ErrPDFToolNotFound)

	assert.ErrorIs(t, wrapped, ErrIngestion)
	assert.ErrorIs(t, wrapped, ErrPDFToolNotFound)
	assert.NotErrorIs(t, wrapped, ErrEmbeddingUnavailable)
}

// TestErrGenerationTimeout tests the timeout error message
func TestErrGenerationTimeout(t *testing.T) {
	assert.Equal(t, "generation timed out", ErrGenerationTimeout.Error())
}

func TestGenerationFailure(t *testing.T) {
	assert.Nil(t, GenerationFailure("gemini", nil))

	err := GenerationFailure("gemini", errors.New("boom"))
	assert.ErrorIs(t, err, ErrGeneration)
	assert.NotErrorIs(t, err, ErrGenerationTimeout)
	assert.Contains(t, err.Error(), "gemini")

	timeout := GenerationFailure("ollama", fmt.Errorf("post: %w", context.DeadlineExceeded))
	assert.ErrorIs(t, timeout, ErrGeneration)
	assert.ErrorIs(t, timeout, ErrGenerationTimeout)
	assert.ErrorIs(t, timeout, context.DeadlineExceeded)
}

func TestFileError(t *testing.T) {
	cause := errors.New("permission denied")
	err := error(&FileError{Source: "notes/a.txt", Err: cause})

	assert.ErrorIs(t, err, ErrIngestion)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "ingestion failed: notes/a.txt: permission denied", err.Error())

	var fileErr *FileError
	require.ErrorAs(t, fmt.Errorf("batch: %w", err), &fileErr)
	assert.Equal(t, "notes/a.txt", fileErr.Source)
}
