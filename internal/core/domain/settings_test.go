package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAIProvider_IsValid tests all valid and invalid providers
func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{name: "gemini is valid", provider: AIProviderGemini, expected: true},
		{name: "ollama is valid", provider: AIProviderOllama, expected: true},
		{name: "openai is valid", provider: AIProviderOpenAI, expected: true},
		{name: "anthropic is valid", provider: AIProviderAnthropic, expected: true},
		{name: "empty string is invalid", provider: AIProvider(""), expected: false},
		{name: "unknown provider is invalid", provider: AIProvider("palm"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.False(t, AIProviderGemini.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
}

func TestAIProvider_SupportsEmbeddings(t *testing.T) {
	for _, p := range AllEmbeddingProviders() {
		assert.True(t, p.SupportsEmbeddings(), p.String())
	}
	assert.False(t, AIProviderAnthropic.SupportsEmbeddings())
}

func TestAIProvider_APIKeyEnv(t *testing.T) {
	assert.Equal(t, "GOOGLE_API_KEY", AIProviderGemini.APIKeyEnv())
	assert.Equal(t, "OPENAI_API_KEY", AIProviderOpenAI.APIKeyEnv())
	assert.Equal(t, "ANTHROPIC_API_KEY", AIProviderAnthropic.APIKeyEnv())
	assert.Empty(t, AIProviderOllama.APIKeyEnv())
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "Google Gemini (cloud)", AIProviderGemini.Description())
	assert.Equal(t, "Ollama (local)", AIProviderOllama.Description())
	assert.Equal(t, unknownDescription, AIProvider("x").Description())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{name: "gemini without key", settings: EmbeddingSettings{Provider: AIProviderGemini}, expected: true},
		{name: "openai without key", settings: EmbeddingSettings{Provider: AIProviderOpenAI}, expected: false},
		{name: "openai with key", settings: EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}, expected: true},
		{name: "anthropic has no embeddings", settings: EmbeddingSettings{Provider: AIProviderAnthropic, APIKey: "k"}, expected: false},
		{name: "empty provider", settings: EmbeddingSettings{}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.True(t, LLMSettings{Provider: AIProviderGemini}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderAnthropic}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderAnthropic, APIKey: "k"}.IsConfigured())
	assert.False(t, LLMSettings{}.IsConfigured())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, "knowledge", s.Knowledge.Dir)
	assert.Equal(t, []string{"**/*.pdf", "**/*.txt"}, s.Knowledge.Include)
	assert.Equal(t, "verne_vectorstore", s.Index.Path)
	assert.Equal(t, 1000, s.Chunking.Size)
	assert.Equal(t, 150, s.Chunking.Overlap)
	assert.Equal(t, 5, s.Chat.TopK)
	assert.Equal(t, 6, s.Chat.HistoryWindow)
	assert.Equal(t, 60*time.Second, s.Chat.Timeout)
	assert.Equal(t, AIProviderGemini, s.Embedding.Provider)
	assert.Equal(t, "models/embedding-001", s.Embedding.Model)
	assert.Equal(t, AIProviderGemini, s.LLM.Provider)
	assert.Equal(t, "models/gemini-1.5-flash", s.LLM.Model)
	assert.Empty(t, s.LLM.APIKey)
}

func TestDefaultModels_CoverProviders(t *testing.T) {
	embedModels := DefaultEmbeddingModels()
	for _, p := range AllEmbeddingProviders() {
		model, ok := embedModels[p]
		require.True(t, ok, p.String())
		_, known := EmbeddingDimensions()[model]
		assert.True(t, known, model)
	}

	llmModels := DefaultLLMModels()
	for _, p := range AllLLMProviders() {
		assert.NotEmpty(t, llmModels[p], p.String())
	}
}
