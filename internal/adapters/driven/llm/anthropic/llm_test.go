package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driven"
)

func newTestLLM(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewLLMService(Config{APIKey: "ak-test", BaseURL: srv.URL})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService_RequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.ErrorIs(t, err, domain.ErrConfigInvalid)
}

func TestGenerate(t *testing.T) {
	svc := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ak-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultMaxTokens, req.MaxTokens)
		assert.Equal(t, "prompt", req.Messages[0].Content)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Part one. "},{"type":"tool_use"},{"type":"text","text":"Part two."}]}`))
	})

	got, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Part one. Part two.", got)
	assert.Equal(t, "anthropic", svc.ProviderName())
	assert.Equal(t, DefaultModel, svc.ModelName())
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"api error", http.StatusBadRequest, `{"error":{"type":"invalid_request_error","message":"bad"}}`, domain.ErrGeneration},
		{"rate limited", http.StatusTooManyRequests, `{}`, domain.ErrRateLimited},
		{"empty content", http.StatusOK, `{"content":[]}`, domain.ErrGeneration},
		{"not json", http.StatusBadGateway, `<html>`, domain.ErrGeneration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestLLM(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{})
			assert.Empty(t, got)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrGeneration)
		})
	}
}

func TestPing(t *testing.T) {
	svc := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		assert.Equal(t, "ak-test", r.Header.Get("x-api-key"))
	})
	assert.NoError(t, svc.Ping(context.Background()))
}
