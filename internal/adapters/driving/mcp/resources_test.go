package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/services"
)

func TestExtractSessionID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid session URI",
			uri:      "vernebot://sessions/abc",
			expected: "abc",
		},
		{
			name:     "percent-encoded id",
			uri:      "vernebot://sessions/2025-03-14%2009:30:00%20%232",
			expected: "2025-03-14 09:30:00 #2",
		},
		{
			name:     "raw id with spaces",
			uri:      "vernebot://sessions/2025-03-14 09:30:00",
			expected: "2025-03-14 09:30:00",
		},
		{
			name:     "invalid prefix",
			uri:      "file://sessions/abc",
			expected: "",
		},
		{
			name:     "sessions list URI",
			uri:      "vernebot://sessions",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractSessionID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func newChatServer(t *testing.T) (*Server, *services.SessionStore) {
	t.Helper()
	sessions := services.NewSessionStore()
	server, err := NewServer(&Ports{
		Retrieval: &mockRetrievalService{},
		Chat:      &mockChatService{persona: domain.DefaultPersona()},
		Sessions:  sessions,
	})
	require.NoError(t, err)
	return server, sessions
}

func TestServer_handlePersonaResource(t *testing.T) {
	server, _ := newChatServer(t)

	req := makeReadResourceRequest("vernebot://persona")
	result, err := server.handlePersonaResource(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &got))
	assert.Equal(t, "VerneBot", got["name"])
	assert.Contains(t, got["welcome"], "Welcome, founder")
	assert.NotEmpty(t, got["instructions"])
}

func TestServer_handleSessionsResource(t *testing.T) {
	ctx := context.Background()
	server, sessions := newChatServer(t)

	_, _, err := server.handleAsk(ctx, nil, AskInput{Question: "How do I build an OPSP?"})
	require.NoError(t, err)

	req := makeReadResourceRequest("vernebot://sessions")
	result, err := server.handleSessionsResource(ctx, req)
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)

	var got []struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Messages int    `json:"messages"`
		Active   bool   `json:"active"`
	}
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &got))
	require.Len(t, got, 1)
	assert.Equal(t, sessions.Active().ID, got[0].ID)
	assert.Equal(t, "How do I build an OPSP?", got[0].Title)
	assert.Equal(t, 2, got[0].Messages)
	assert.True(t, got[0].Active)
}

func TestServer_handleTranscriptResource(t *testing.T) {
	ctx := context.Background()

	t.Run("renders transcript", func(t *testing.T) {
		server, sessions := newChatServer(t)
		_, _, err := server.handleAsk(ctx, nil, AskInput{Question: "hello"})
		require.NoError(t, err)

		req := makeReadResourceRequest("vernebot://sessions/" + sessions.Active().ID)
		result, err := server.handleTranscriptResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "User: hello\nVerneBot: echo: hello\n", result.Contents[0].Text)
	})

	t.Run("unknown session returns not found", func(t *testing.T) {
		server, _ := newChatServer(t)

		req := makeReadResourceRequest("vernebot://sessions/nope")
		_, err := server.handleTranscriptResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server, _ := newChatServer(t)

		req := makeReadResourceRequest("vernebot://other")
		_, err := server.handleTranscriptResource(ctx, req)

		require.Error(t, err)
	})
}
