package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driven"
	"github.com/custodia-labs/vernebot/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyKnowledgeDir     = "knowledge.dir"
	keyKnowledgeInclude = "knowledge.include"
	keyIndexPath        = "index.path"
	keyChunkSize        = "chunking.size"
	keyChunkOverlap     = "chunking.overlap"
	keyTopK             = "retrieval.top_k"
	keyHistoryWindow    = "chat.history_window"
	keyChatTimeout      = "chat.timeout"
	keyMaxTokens        = "chat.max_tokens"
	keyTemperature      = "chat.temperature"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedBatchSize   = "embedding.batch_size"
	keyEmbedRPS         = "embedding.requests_per_second"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
)

// defaultOllamaURL is filled in when switching to Ollama without a base URL.
const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// Unknown providers fall back to the defaults; an unparseable
// chat.timeout is reported as domain.ErrConfigInvalid.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	timeout, err := s.getDuration(keyChatTimeout, defaults.Chat.Timeout)
	if err != nil {
		return nil, err
	}

	embedProvider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	llmProvider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)

	settings := &domain.AppSettings{
		Knowledge: domain.KnowledgeSettings{
			Dir:     s.getString(keyKnowledgeDir, defaults.Knowledge.Dir),
			Include: s.getStringSlice(keyKnowledgeInclude, defaults.Knowledge.Include),
		},
		Index: domain.IndexSettings{
			Path: s.getString(keyIndexPath, defaults.Index.Path),
		},
		Chunking: domain.ChunkingSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunking.Size),
			Overlap: s.getInt(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Chat: domain.ChatSettings{
			TopK:          s.getInt(keyTopK, defaults.Chat.TopK),
			HistoryWindow: s.getInt(keyHistoryWindow, defaults.Chat.HistoryWindow),
			Timeout:       timeout,
			MaxTokens:     s.getInt(keyMaxTokens, defaults.Chat.MaxTokens),
			Temperature:   s.getFloat(keyTemperature, defaults.Chat.Temperature),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          embedProvider,
			Model:             s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[embedProvider]),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.apiKey(keyEmbedAPIKey, embedProvider),
			BatchSize:         s.getInt(keyEmbedBatchSize, defaults.Embedding.BatchSize),
			RequestsPerSecond: s.getFloat(keyEmbedRPS, defaults.Embedding.RequestsPerSecond),
		},
		LLM: domain.LLMSettings{
			Provider: llmProvider,
			Model:    s.getString(keyLLMModel, domain.DefaultLLMModels()[llmProvider]),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.apiKey(keyLLMAPIKey, llmProvider),
		},
	}

	return settings, nil
}

// Save persists application settings.
// API keys that are empty or came from the environment are not written.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if settings == nil {
		return fmt.Errorf("%w: nil settings", domain.ErrInvalidInput)
	}

	type setting struct {
		key   string
		value any
	}
	values := []setting{
		{keyKnowledgeDir, settings.Knowledge.Dir},
		{keyKnowledgeInclude, settings.Knowledge.Include},
		{keyIndexPath, settings.Index.Path},
		{keyChunkSize, settings.Chunking.Size},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyTopK, settings.Chat.TopK},
		{keyHistoryWindow, settings.Chat.HistoryWindow},
		{keyChatTimeout, settings.Chat.Timeout.String()},
		{keyMaxTokens, settings.Chat.MaxTokens},
		{keyTemperature, settings.Chat.Temperature},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedBatchSize, settings.Embedding.BatchSize},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
	}
	if key := s.storedKey(settings.Embedding.Provider, settings.Embedding.APIKey); key != "" {
		values = append(values, setting{keyEmbedAPIKey, key})
	}
	if key := s.storedKey(settings.LLM.Provider, settings.LLM.APIKey); key != "" {
		values = append(values, setting{keyLLMAPIKey, key})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if !provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.getenv(provider.APIKeyEnv()) == "" {
		return fmt.Errorf("%w: API key required for %s (or set %s)",
			domain.ErrInvalidInput, provider, provider.APIKeyEnv())
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	if err := s.Save(settings); err != nil {
		return err
	}
	if apiKey == "" {
		return s.configStore.Set(keyEmbedAPIKey, "")
	}
	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.getenv(provider.APIKeyEnv()) == "" {
		return fmt.Errorf("%w: API key required for %s (or set %s)",
			domain.ErrInvalidInput, provider, provider.APIKeyEnv())
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	if err := s.Save(settings); err != nil {
		return err
	}
	if apiKey == "" {
		return s.configStore.Set(keyLLMAPIKey, "")
	}
	return nil
}

// Validate checks that the current settings can serve a chat turn.
// All problems are reported together, wrapped in domain.ErrConfigInvalid.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var problems []error

	for _, key := range []string{keyEmbedProvider, keyLLMProvider} {
		if val := s.configStore.GetString(key); val != "" && !domain.AIProvider(val).IsValid() {
			problems = append(problems, fmt.Errorf("unknown provider %q for %s", val, key))
		}
	}

	embed := settings.Embedding
	switch {
	case !embed.Provider.SupportsEmbeddings():
		problems = append(problems, fmt.Errorf("provider %s does not support embeddings", embed.Provider))
	case embed.Provider.RequiresAPIKey() && embed.APIKey == "":
		problems = append(problems, fmt.Errorf("embedding provider %s needs an API key: set %s or %s",
			embed.Provider, keyEmbedAPIKey, embed.Provider.APIKeyEnv()))
	}
	if embed.Model == "" {
		problems = append(problems, errors.New("embedding model is empty"))
	}
	if embed.BatchSize <= 0 {
		problems = append(problems, fmt.Errorf("%s must be positive", keyEmbedBatchSize))
	}
	if embed.RequestsPerSecond < 0 {
		problems = append(problems, fmt.Errorf("%s must not be negative", keyEmbedRPS))
	}

	llm := settings.LLM
	if llm.Provider.RequiresAPIKey() && llm.APIKey == "" {
		problems = append(problems, fmt.Errorf("LLM provider %s needs an API key: set %s or %s",
			llm.Provider, keyLLMAPIKey, llm.Provider.APIKeyEnv()))
	}
	if llm.Model == "" {
		problems = append(problems, errors.New("LLM model is empty"))
	}

	if settings.Chunking.Size <= 0 {
		problems = append(problems, fmt.Errorf("%s must be positive", keyChunkSize))
	}
	if settings.Chunking.Overlap < 0 {
		problems = append(problems, fmt.Errorf("%s must not be negative", keyChunkOverlap))
	}
	if settings.Chat.TopK <= 0 {
		problems = append(problems, fmt.Errorf("%s must be positive", keyTopK))
	}
	if settings.Chat.HistoryWindow < 0 {
		problems = append(problems, fmt.Errorf("%s must not be negative", keyHistoryWindow))
	}
	if settings.Chat.Timeout <= 0 {
		problems = append(problems, fmt.Errorf("%s must be positive", keyChatTimeout))
	}
	if settings.Knowledge.Dir == "" {
		problems = append(problems, fmt.Errorf("%s is empty", keyKnowledgeDir))
	}
	if settings.Index.Path == "" {
		problems = append(problems, fmt.Errorf("%s is empty", keyIndexPath))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrConfigInvalid, errors.Join(problems...))
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig(ctx context.Context) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(ctx, &settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig(ctx context.Context) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(ctx, &settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getInt keeps an explicit zero, so "chunking.overlap = 0" disables overlap.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := s.configStore.GetString(key)
	if val == "" {
		if secs := s.configStore.GetInt(key); secs > 0 {
			return time.Duration(secs) * time.Second, nil
		}
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", domain.ErrConfigInvalid, key, err)
	}
	return d, nil
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

// apiKey prefers the config file and falls back to the provider's
// environment variable.
func (s *SettingsService) apiKey(key string, provider domain.AIProvider) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	if env := provider.APIKeyEnv(); env != "" {
		return s.getenv(env)
	}
	return ""
}

// storedKey returns the key to persist, or "" when it is the one
// already provided by the environment.
func (s *SettingsService) storedKey(provider domain.AIProvider, key string) string {
	if key == "" {
		return ""
	}
	if env := provider.APIKeyEnv(); env != "" && s.getenv(env) == key {
		return ""
	}
	return key
}

func baseURLFor(provider domain.AIProvider, current string) string {
	if provider != domain.AIProviderOllama {
		return ""
	}
	if current == "" {
		return defaultOllamaURL
	}
	return current
}
