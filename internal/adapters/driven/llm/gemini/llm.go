// Package gemini provides an LLM service adapter using the Google
// Generative Language API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/generativelanguage/v1beta"

	"github.com/custodia-labs/vernebot/internal/adapters/driven/googleai"
	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is the default generation model.
const DefaultModel = "models/gemini-1.5-flash"

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Google AI Studio key. Without one, application
	// default credentials are used.
	APIKey string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// Model is the generation model (default: models/gemini-1.5-flash).
	Model string

	// HTTPClient replaces the transport; used by tests.
	HTTPClient *http.Client
}

// LLMService generates text with Gemini models.
type LLMService struct {
	models *generativelanguage.ModelsService
	model  string
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	model := googleai.ModelName(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	svc, err := googleai.NewService(ctx, googleai.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, err
	}

	return &LLMService{models: svc.Models, model: model}, nil
}

// Generate sends the prompt as a single user turn.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Role:  "user",
			Parts: []*generativelanguage.Part{{Text: prompt}},
		}},
		GenerationConfig: generationConfig(opts),
	}

	resp, err := s.models.GenerateContent(s.model, req).Context(ctx).Do()
	if err != nil {
		return "", googleai.WrapError(domain.ErrGeneration, err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", domain.GenerationFailure("gemini", err)
	}
	return text, nil
}

func generationConfig(opts driven.GenerateOptions) *generativelanguage.GenerationConfig {
	cfg := &generativelanguage.GenerationConfig{
		Temperature:   opts.Temperature,
		StopSequences: opts.StopWords,
		// A zero temperature is meaningful.
		ForceSendFields: []string{"Temperature"},
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int64(opts.MaxTokens)
	}
	return cfg
}

// responseText joins the text parts of the first candidate.
func responseText(resp *generativelanguage.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("no candidates returned")
	}

	candidate := resp.Candidates[0]
	var b strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil {
				b.WriteString(part.Text)
			}
		}
	}

	text := b.String()
	if strings.TrimSpace(text) == "" {
		if candidate.FinishReason != "" && candidate.FinishReason != "STOP" {
			return "", fmt.Errorf("empty response (finish reason %s)", candidate.FinishReason)
		}
		return "", errors.New("empty response")
	}
	return text, nil
}

// ProviderName returns the provider identifier.
func (s *LLMService) ProviderName() string {
	return string(domain.AIProviderGemini)
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates credentials by fetching the model description.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.models.Get(s.model).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gemini: ping failed: %s", googleai.Message(err))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
