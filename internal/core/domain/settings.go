package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGemini is the Google Generative Language API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGemini, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
// Gemini can fall back to application default credentials.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// SupportsEmbeddings returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderGemini || p == AIProviderOllama || p == AIProviderOpenAI
}

// APIKeyEnv returns the environment variable holding the provider's API key.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderGemini:
		return "GOOGLE_API_KEY"
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey is the provider API key.
	APIKey string

	// BatchSize is the number of texts sent per embedding request.
	BatchSize int

	// RequestsPerSecond throttles embedding requests. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey is the provider API key.
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// KnowledgeSettings locates the corpus.
type KnowledgeSettings struct {
	// Dir is the knowledge directory.
	Dir string

	// Include holds doublestar patterns matched against paths relative to Dir.
	Include []string
}

// IndexSettings locates the persisted index bundle.
type IndexSettings struct {
	Path string
}

// ChunkingSettings configures the chunker, in runes.
type ChunkingSettings struct {
	Size    int
	Overlap int
}

// ChatSettings configures retrieval and generation per turn.
type ChatSettings struct {
	// TopK is the number of passages retrieved per turn.
	TopK int

	// HistoryWindow is the number of recent messages included in the prompt.
	HistoryWindow int

	// Timeout bounds a single generation call.
	Timeout time.Duration

	// MaxTokens caps the generated reply.
	MaxTokens int

	// Temperature is the sampling temperature.
	Temperature float64
}

// AppSettings holds all application settings.
type AppSettings struct {
	Knowledge KnowledgeSettings
	Index     IndexSettings
	Chunking  ChunkingSettings
	Chat      ChatSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// API keys are never defaulted.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Knowledge: KnowledgeSettings{
			Dir:     "knowledge",
			Include: []string{"**/*.pdf", "**/*.txt"},
		},
		Index: IndexSettings{
			Path: "verne_vectorstore",
		},
		Chunking: ChunkingSettings{
			Size:    1000,
			Overlap: 150,
		},
		Chat: ChatSettings{
			TopK:          5,
			HistoryWindow: 6,
			Timeout:       60 * time.Second,
			MaxTokens:     1024,
			Temperature:   0.7,
		},
		Embedding: EmbeddingSettings{
			Provider:          AIProviderGemini,
			Model:             DefaultEmbeddingModels()[AIProviderGemini],
			BatchSize:         64,
			RequestsPerSecond: 2,
		},
		LLM: LLMSettings{
			Provider: AIProviderGemini,
			Model:    DefaultLLMModels()[AIProviderGemini],
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini: "models/embedding-001",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini:    "models/gemini-1.5-flash",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Gemini models
		"models/embedding-001":        768,
		"models/text-embedding-004":   768,
		"models/gemini-embedding-001": 3072,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
