package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driven"
	"github.com/custodia-labs/vernebot/internal/logger"
)

// DefaultGenerationTimeout bounds a generation call when none is configured.
const DefaultGenerationTimeout = 60 * time.Second

// GenerationConfig configures a GenerationClient.
type GenerationConfig struct {
	// Persona provides the degraded reply.
	Persona domain.Persona

	// Timeout bounds each call. Zero uses DefaultGenerationTimeout.
	Timeout time.Duration

	MaxTokens   int
	Temperature float64
}

// GenerationClient calls the LLM with a time budget and never hands back
// empty text: failures produce the persona's degraded reply alongside the error.
type GenerationClient struct {
	llm     driven.LLMService
	persona domain.Persona
	timeout time.Duration
	opts    driven.GenerateOptions
}

// NewGenerationClient creates a generation client. llm may be nil, in which
// case every call degrades.
func NewGenerationClient(llm driven.LLMService, cfg GenerationConfig) *GenerationClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}
	return &GenerationClient{
		llm:     llm,
		persona: cfg.Persona.WithDefaults(),
		timeout: timeout,
		opts: driven.GenerateOptions{
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		},
	}
}

// Persona returns the persona used for degraded replies.
func (c *GenerationClient) Persona() domain.Persona {
	return c.persona
}

// Timeout returns the per-call time budget.
func (c *GenerationClient) Timeout() time.Duration {
	return c.timeout
}

// Generate returns the model's reply to prompt. On failure the text is the
// persona's degraded reply and the error wraps domain.ErrGeneration, plus
// domain.ErrGenerationTimeout when the time budget ran out.
func (c *GenerationClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.llm == nil {
		err := fmt.Errorf("%w: %w", domain.ErrGeneration, domain.ErrLLMUnavailable)
		logger.Warn("Generation skipped: %v", err)
		return c.persona.DegradedReply(err), err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	started := time.Now()
	text, err := c.llm.Generate(ctx, prompt, c.opts)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty response")
	}
	if err != nil {
		err = c.classify(ctx, err)
		logger.Warn("Generation failed after %s: %v", time.Since(started).Round(time.Millisecond), err)
		return c.persona.DegradedReply(err), err
	}

	logger.Debug("Generated %d chars in %s", len(text), time.Since(started).Round(time.Millisecond))
	return strings.TrimSpace(text), nil
}

// classify makes sure err carries the generation error kinds.
func (c *GenerationClient) classify(ctx context.Context, err error) error {
	timedOut := errors.Is(ctx.Err(), context.DeadlineExceeded)
	if timedOut && !errors.Is(err, domain.ErrGenerationTimeout) {
		return fmt.Errorf("%w: %w: no reply within %s: %w",
			domain.ErrGeneration, domain.ErrGenerationTimeout, c.timeout, err)
	}
	if !errors.Is(err, domain.ErrGeneration) {
		return domain.GenerationFailure(c.llm.ProviderName(), err)
	}
	return err
}
