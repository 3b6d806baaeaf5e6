package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/vernebot/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for VerneBot resources.
	uriScheme = "vernebot://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Chat == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "persona",
		Name:        "persona",
		Description: "The assistant persona: name, welcome message and instructions",
		MIMEType:    "application/json",
	}, s.handlePersonaResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sessions",
		Name:        "sessions",
		Description: "Conversations held through this server, newest first",
		MIMEType:    "application/json",
	}, s.handleSessionsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{sessionId}",
		Name:        "session-transcript",
		Description: "Transcript of one conversation",
		MIMEType:    "text/plain",
	}, s.handleTranscriptResource)
}

// handlePersonaResource returns the persona as JSON.
func (s *Server) handlePersonaResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	persona := s.ports.Chat.Persona()

	type personaInfo struct {
		Name         string `json:"name"`
		Welcome      string `json:"welcome"`
		Instructions string `json:"instructions"`
	}

	data, err := json.MarshalIndent(personaInfo{
		Name:         persona.Name,
		Welcome:      persona.Welcome,
		Instructions: persona.Instructions,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling persona: %w", err)
	}

	return jsonResult(req.Params.URI, data), nil
}

// handleSessionsResource lists the server's sessions.
func (s *Server) handleSessionsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type sessionInfo struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Messages int    `json:"messages"`
		Active   bool   `json:"active"`
	}

	activeID := s.ports.Sessions.Active().ID
	list := s.ports.Sessions.List()
	infos := make([]sessionInfo, len(list))
	for i := range list {
		infos[i] = sessionInfo{
			ID:       list[i].ID,
			Title:    list[i].Title(),
			Messages: len(list[i].Messages),
			Active:   list[i].ID == activeID,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sessions: %w", err)
	}

	return jsonResult(req.Params.URI, data), nil
}

// handleTranscriptResource renders one session as "Speaker: text" lines.
func (s *Server) handleTranscriptResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractSessionID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	session, err := s.ports.Sessions.Get(id)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	label := s.ports.Chat.Persona().Name
	var b strings.Builder
	for _, m := range session.Messages {
		speaker := m.Role.Label()
		if label != "" && m.Role == domain.RoleAssistant {
			speaker = label
		}
		b.WriteString(speaker + ": " + m.Content + "\n")
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     b.String(),
		}},
	}, nil
}

func jsonResult(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}

// extractSessionID extracts the session ID from a URI like vernebot://sessions/{sessionId}.
// Session ids contain spaces, so percent-encoded forms are accepted too.
func extractSessionID(uri string) string {
	const prefix = uriScheme + "sessions/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if decoded, err := url.PathUnescape(id); err == nil {
		id = decoded
	}
	return id
}
