package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/vernebot/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive chat UI",
	Long: `Launch the full-screen chat interface for VerneBot.

The chat fills the main pane and earlier conversations are listed in the
sidebar.

Controls:
  Enter    - Send message / Open selected chat
  Tab      - Switch focus between input and sidebar
  ↑/k, ↓/j - Move in the sidebar
  Ctrl+N   - New chat
  Ctrl+D   - Delete selected chat
  Esc      - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if chatService == nil {
		return errors.New("chat service not configured")
	}
	if err := requireValidConfig(); err != nil {
		return err
	}
	store, err := sessions()
	if err != nil {
		return err
	}

	loadIndex(cmd)

	app, err := tui.NewApp(&tui.Ports{
		Chat:     chatService,
		Sessions: store,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
