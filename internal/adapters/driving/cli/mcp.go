package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vernebot/internal/adapters/driving/mcp"
	"github.com/custodia-labs/vernebot/internal/core/services"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can query
the VerneBot knowledge base and ask VerneBot questions.

Tools:
  retrieve  - passages most relevant to a query, with scores
  ask       - a VerneBot reply; the conversation continues across calls

By default the server communicates over stdio using JSON-RPC.
Use --http to serve over HTTP instead; without --port the first free
port from 8765 is used.

Examples:
  # Stdio mode (default, for desktop assistants)
  vernebot mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  vernebot mcp serve --http --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "vernebot": {
        "command": "/path/to/vernebot",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (implies --http)")
	mcpServeCmd.Flags().Bool("http", false, "serve over HTTP instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	useHTTP, err := cmd.Flags().GetBool("http")
	if err != nil {
		return fmt.Errorf("getting http flag: %w", err)
	}

	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	if err := requireValidConfig(); err != nil {
		return err
	}

	loadIndex(cmd)

	ports := &mcp.Ports{Retrieval: retrievalService}
	if chatService != nil && newSessionStore != nil {
		ports.Chat = chatService
		ports.NewSessions = newSessionStore
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 || useHTTP {
		if port == 0 {
			port, err = services.FindAvailablePort(services.DefaultMCPPortStart, services.DefaultMCPPortEnd)
			if err != nil {
				return err
			}
		}
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
