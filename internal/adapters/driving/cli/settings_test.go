package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vernebot/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsCmd_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range settingsCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["show"])
	assert.True(t, names["set-embedding"])
	assert.True(t, names["set-llm"])
}

func TestSettingsShow(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.LLM.Provider = domain.AIProviderOpenAI
	ts.settings.settings.LLM.Model = "gpt-4o-mini"
	ts.settings.settings.LLM.APIKey = "sk-1234567890abcdef"

	out, err := executeCommand(t, "", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Directory: knowledge")
	assert.Contains(t, out, "Include: **/*.pdf, **/*.txt")
	assert.Contains(t, out, "Index: verne_vectorstore")
	assert.Contains(t, out, "Provider: Google Gemini (cloud)")
	assert.Contains(t, out, "Model: gpt-4o-mini")
	assert.Contains(t, out, "API Key: sk-1...cdef")
	assert.NotContains(t, out, "sk-1234567890abcdef")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShow_InvalidConfigIsAWarning(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.validateErr = fmt.Errorf("%w: chunking.size must be positive", domain.ErrConfigInvalid)

	out, err := executeCommand(t, "", "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: invalid configuration: chunking.size must be positive")
}

func TestSettingsSetLLM_WithArgs(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "", "settings", "set-llm", "anthropic",
		"--model", "claude-3-5-haiku-latest", "--api-key", "sk-ant-0123456789")

	require.NoError(t, err)
	require.Len(t, ts.settings.llmCalls, 1)
	assert.Equal(t, providerCall{
		provider: domain.AIProviderAnthropic,
		model:    "claude-3-5-haiku-latest",
		apiKey:   "sk-ant-0123456789",
	}, ts.settings.llmCalls[0])
	assert.Contains(t, out, "Validating configuration... OK")
	assert.Contains(t, out, "LLM provider configured: Anthropic (cloud) (claude-3-5-haiku-latest)")
}

func TestSettingsSetEmbedding_Menu(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "2\n\n", "settings", "set-embedding")

	require.NoError(t, err)
	require.Len(t, ts.settings.embedCalls, 1)
	assert.Equal(t, domain.AIProviderOllama, ts.settings.embedCalls[0].provider)
	assert.Empty(t, ts.settings.embedCalls[0].model)
	assert.Contains(t, out, "Enter model name [nomic-embed-text]")
	assert.Contains(t, out, "Embedding provider configured: Ollama (local) (nomic-embed-text)")
	assert.Contains(t, out, "vernebot ingest")
}

func TestSettingsSetEmbedding_RejectsUnsupportedProvider(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand(t, "", "settings", "set-embedding", "anthropic")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, ts.settings.embedCalls)
}

func TestSettingsSetLLM_ValidationFailure(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.pingErr = errors.New("401 unauthorized")

	out, err := executeCommand(t, "", "settings", "set-llm", "ollama")

	require.Error(t, err)
	assert.Contains(t, out, "FAILED: 401 unauthorized")
	assert.Contains(t, err.Error(), "LLM configuration validation failed")
}

func TestSettingsSetLLM_NoValidate(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.pingErr = errors.New("offline")

	out, err := executeCommand(t, "", "settings", "set-llm", "ollama", "--no-validate")

	require.NoError(t, err)
	assert.NotContains(t, out, "Validating")
}
