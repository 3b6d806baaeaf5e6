package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driven"
)

func TestNewConfigValidator(t *testing.T) {
	validator := NewConfigValidator()

	require.NotNil(t, validator)
}

func TestConfigValidator_ImplementsInterface(t *testing.T) {
	var _ driven.AIConfigValidator = (*ConfigValidator)(nil)
}

func TestConfigValidator_NilConfig(t *testing.T) {
	validator := NewConfigValidator()
	ctx := context.Background()

	// nil config returns nil (nothing to validate)
	assert.NoError(t, validator.ValidateEmbedding(ctx, nil))
	assert.NoError(t, validator.ValidateLLM(ctx, nil))
}

func TestConfigValidator_UnconfiguredProvider(t *testing.T) {
	validator := NewConfigValidator()
	ctx := context.Background()

	assert.NoError(t, validator.ValidateEmbedding(ctx, &domain.EmbeddingSettings{Model: "test-model"}))
	assert.NoError(t, validator.ValidateLLM(ctx, &domain.LLMSettings{Model: "test-model"}))
}

func TestConfigValidator_UnreachableProvider(t *testing.T) {
	validator := NewConfigValidator()
	ctx := context.Background()

	err := validator.ValidateEmbedding(ctx, &domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  "http://127.0.0.1:1",
	})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	err = validator.ValidateLLM(ctx, &domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  "http://127.0.0.1:1",
	})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}
