// Package gemini provides an embedding service adapter using the
// Google Generative Language API.
package gemini

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/generativelanguage/v1beta"

	"github.com/custodia-labs/vernebot/internal/adapters/driven/googleai"
	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "models/embedding-001"
	DefaultDimensions = 768

	// maxBatch is the API limit on requests per batchEmbedContents call.
	maxBatch = 100

	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

// Model dimensions for Gemini embedding models.
var modelDimensions = map[string]int{
	"models/embedding-001":        768,
	"models/text-embedding-004":   768,
	"models/gemini-embedding-001": 3072,
}

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// APIKey is the Google AI Studio key. Without one, application
	// default credentials are used.
	APIKey string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// Model is the embedding model (default: models/embedding-001).
	Model string

	// Dimensions overrides the default dimension for the model.
	Dimensions int

	// HTTPClient replaces the transport; used by tests.
	HTTPClient *http.Client
}

// EmbeddingService generates embeddings using Gemini embedding models.
type EmbeddingService struct {
	models     *generativelanguage.ModelsService
	model      string
	dimensions int
}

// NewEmbeddingService creates a new Gemini embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	model := googleai.ModelName(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		var ok bool
		if dimensions, ok = modelDimensions[model]; !ok {
			dimensions = DefaultDimensions
		}
	}

	svc, err := googleai.NewService(ctx, googleai.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, err
	}

	return &EmbeddingService{
		models:     svc.Models,
		model:      model,
		dimensions: dimensions,
	}, nil
}

// EmbedQuery embeds a live query with the retrieval query task type.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.models.EmbedContent(s.model, &generativelanguage.EmbedContentRequest{
		Content:  textContent(text),
		TaskType: taskQuery,
	}).Context(ctx).Do()
	if err != nil {
		return nil, googleai.WrapError(domain.ErrEmbeddingUnavailable, err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: gemini: empty embedding", domain.ErrEmbeddingUnavailable)
	}
	return toFloat32(resp.Embedding.Values), nil
}

// EmbedDocuments embeds corpus texts with the retrieval document task type.
func (s *EmbeddingService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := min(start+maxBatch, len(texts))

		requests := make([]*generativelanguage.EmbedContentRequest, 0, end-start)
		for _, text := range texts[start:end] {
			requests = append(requests, &generativelanguage.EmbedContentRequest{
				Model:    s.model,
				Content:  textContent(text),
				TaskType: taskDocument,
			})
		}

		resp, err := s.models.BatchEmbedContents(s.model, &generativelanguage.BatchEmbedContentsRequest{
			Requests: requests,
		}).Context(ctx).Do()
		if err != nil {
			return nil, googleai.WrapError(domain.ErrEmbeddingUnavailable, err)
		}
		if len(resp.Embeddings) != len(requests) {
			return nil, fmt.Errorf("%w: gemini: got %d embeddings for %d texts",
				domain.ErrEmbeddingUnavailable, len(resp.Embeddings), len(requests))
		}

		for i, e := range resp.Embeddings {
			if e == nil || len(e.Values) == 0 {
				return nil, fmt.Errorf("%w: gemini: empty embedding for text %d",
					domain.ErrEmbeddingUnavailable, start+i)
			}
			embeddings = append(embeddings, toFloat32(e.Values))
		}
	}

	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ProviderName returns the provider identifier.
func (s *EmbeddingService) ProviderName() string {
	return string(domain.AIProviderGemini)
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates credentials by fetching the model description.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.models.Get(s.model).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gemini: ping failed: %s", googleai.Message(err))
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

func textContent(text string) *generativelanguage.Content {
	return &generativelanguage.Content{
		Parts: []*generativelanguage.Part{{Text: text}},
	}
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
