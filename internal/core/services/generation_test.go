package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vernebot/internal/core/domain"
)

func TestGenerationClient_Success(t *testing.T) {
	llm := &stubLLM{reply: "  Cash is king.  \n"}
	client := NewGenerationClient(llm, GenerationConfig{MaxTokens: 256, Temperature: 0.3})

	reply, err := client.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Cash is king.", reply)
	assert.Equal(t, "prompt", llm.lastPrompt())
	require.Len(t, llm.opts, 1)
	assert.Equal(t, 256, llm.opts[0].MaxTokens)
	assert.InDelta(t, 0.3, llm.opts[0].Temperature, 1e-9)
}

func TestGenerationClient_Defaults(t *testing.T) {
	client := NewGenerationClient(nil, GenerationConfig{})

	assert.Equal(t, DefaultGenerationTimeout, client.Timeout())
	assert.Equal(t, domain.DefaultPersona(), client.Persona())
}

func TestGenerationClient_ProviderError(t *testing.T) {
	llm := &stubLLM{err: errors.New("quota exceeded")}
	client := NewGenerationClient(llm, GenerationConfig{})

	reply, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.NotErrorIs(t, err, domain.ErrGenerationTimeout)
	assert.Contains(t, err.Error(), "stub")
	assert.True(t, strings.HasPrefix(reply, "Something went wrong, but we're still scaling:"))
	assert.Contains(t, reply, "quota exceeded")
}

func TestGenerationClient_KeepsClassifiedError(t *testing.T) {
	cause := domain.GenerationFailure("remote", errors.New("bad gateway"))
	client := NewGenerationClient(&stubLLM{err: cause}, GenerationConfig{})

	_, err := client.Generate(context.Background(), "prompt")
	assert.Equal(t, cause, err)
}

func TestGenerationClient_EmptyReply(t *testing.T) {
	client := NewGenerationClient(&stubLLM{reply: " \n "}, GenerationConfig{})

	reply, err := client.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.Contains(t, err.Error(), "empty response")
	assert.NotEmpty(t, strings.TrimSpace(reply))
}

func TestGenerationClient_Timeout(t *testing.T) {
	client := NewGenerationClient(&stubLLM{block: true}, GenerationConfig{Timeout: 20 * time.Millisecond})

	start := time.Now()
	reply, err := client.Generate(context.Background(), "prompt")

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.ErrorIs(t, err, domain.ErrGenerationTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotEmpty(t, reply)
}

func TestGenerationClient_NoLLM(t *testing.T) {
	persona := domain.Persona{DegradedPrefix: "Offline:"}
	client := NewGenerationClient(nil, GenerationConfig{Persona: persona})

	reply, err := client.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.True(t, strings.HasPrefix(reply, "Offline:"))
	assert.Equal(t, "VerneBot", client.Persona().Name)
}
