package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/vernebot/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server is the MCP server for VerneBot.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates a new MCP server with the given ports.
// When ports has NewSessions but no Sessions, the stdio session store is made from it.
func NewServer(ports *Ports) (*Server, error) {
	if ports == nil {
		return nil, ErrMissingRetrievalService
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if ports.Chat != nil && ports.Sessions == nil {
		p := *ports
		p.Sessions = p.NewSessions()
		ports = &p
	}
	return newServer(ports), nil
}

func newServer(ports *Ports) *Server {
	impl := &mcp.Implementation{
		Name:    "vernebot",
		Version: Version,
	}

	s := &Server{
		ports:  ports,
		server: mcp.NewServer(impl, nil),
	}

	s.registerTools()
	s.registerResources()

	return s
}

// forSession returns the server for one HTTP client session. It has its own
// session store when the ports can make one, and is s itself otherwise.
func (s *Server) forSession() *Server {
	if s.ports.Chat == nil || s.ports.NewSessions == nil {
		return s
	}
	p := *s.ports
	p.Sessions = p.NewSessions()
	return newServer(&p)
}

// HTTPHandler serves MCP over streamable HTTP. The handler asks for a server
// once per new client session, so each client gets its own conversations.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.forSession().server
	}, nil)
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("MCP server on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	logger.Debug("MCP server on http://%s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
