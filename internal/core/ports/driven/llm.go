package driven

import "context"

// LLMService generates text from a composed prompt.
type LLMService interface {
	// Generate produces a completion for the prompt.
	// Implementations wrap context deadline failures with
	// domain.ErrGenerationTimeout and all other failures with domain.ErrGeneration.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ProviderName returns the provider identifier.
	ProviderName() string

	// ModelName returns the name of the LLM model.
	ModelName() string

	// Ping validates the service is reachable and functional.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation.
type GenerateOptions struct {
	// MaxTokens limits the response length.
	MaxTokens int

	// Temperature controls randomness (0.0-1.0).
	Temperature float64

	// StopWords are sequences that stop generation.
	StopWords []string
}
