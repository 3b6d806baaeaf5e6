package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/vernebot/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/vernebot/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/vernebot/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/vernebot/internal/adapters/driving/tui/components/transcript"
	"github.com/custodia-labs/vernebot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/vernebot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vernebot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vernebot/internal/core/domain"
)

// Layout constants.
const (
	// sidebarWidth is the session list width including padding.
	sidebarWidth = 28

	// sidebarBorder is the border around the session list.
	sidebarBorder = 2

	// minSidebarTerminal is the narrowest terminal that still shows the sidebar.
	minSidebarTerminal = 72

	// inputHeight is the bordered input field.
	inputHeight = 3
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the keybindings.
	keymap *keymap.KeyMap

	// persona labels the assistant.
	persona domain.Persona

	// transcript shows the active session.
	transcript *transcript.Transcript

	// input composes the next message.
	input *input.ChatInput

	// sidebar lists the sessions.
	sidebar *list.SessionList

	// status shows state and key hints.
	status *status.Bar

	// sidebarFocused is true while keys go to the session list.
	sidebarFocused bool

	// pending is true while a reply is being generated.
	pending bool

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	persona := ports.Chat.Persona().WithDefaults()

	a := &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     s,
		keymap:     km,
		persona:    persona,
		transcript: transcript.New(s, persona),
		input:      input.NewChatInput(s, fmt.Sprintf("Ask %s...", persona.Name)),
		sidebar:    list.NewSessionList(s),
		status:     status.NewBar(s, km),
	}
	a.syncSessions()
	return a, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.input.Init(),
		tea.SetWindowTitle(a.persona.Name),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case messages.ReplyReceived:
		a.handleReply(msg)
		return a, nil

	case messages.ErrorOccurred:
		a.setError(msg.Err)
		return a, nil

	case messages.Quit:
		return a, tea.Quit

	case spinner.TickMsg:
		a.status, cmd = a.status.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keyStr == "ctrl+c":
		return a, tea.Quit

	case keymap.Matches(keyStr, a.keymap.Quit):
		if a.sidebarFocused {
			return a, a.setSidebarFocus(false)
		}
		return a, tea.Quit

	case keymap.Matches(keyStr, a.keymap.Focus):
		return a, a.setSidebarFocus(!a.sidebarFocused)

	case keymap.Matches(keyStr, a.keymap.NewChat):
		a.newChat()
		return a, nil

	case keymap.Matches(keyStr, a.keymap.ScrollUp), keymap.Matches(keyStr, a.keymap.ScrollDown):
		var cmd tea.Cmd
		a.transcript, cmd = a.transcript.Update(msg)
		return a, cmd
	}

	if a.sidebarFocused {
		return a.handleSidebarKey(msg)
	}

	if keymap.Matches(keyStr, a.keymap.Send) {
		return a, a.send()
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, a.keymap.Open):
		if err := a.switchTo(a.sidebar.SelectedID()); err != nil {
			a.setError(err)
			return a, nil
		}
		return a, a.setSidebarFocus(false)

	case keymap.Matches(keyStr, a.keymap.DeleteChat):
		if err := a.deleteSession(a.sidebar.SelectedID()); err != nil {
			a.setError(err)
		}
		return a, nil
	}

	a.sidebar, _ = a.sidebar.Update(msg)
	return a, nil
}

// send submits the input. It returns the reply command batched with
// the spinner tick, or nil when there is nothing to send.
func (a *App) send() tea.Cmd {
	if a.pending {
		return nil
	}
	text := a.input.Submit()
	if text == "" {
		return nil
	}

	a.pending = true
	a.err = nil
	a.transcript.SetPending(text)
	a.status.SetMessage("")
	return tea.Batch(a.status.SetState(status.StateThinking), a.ask(text))
}

// ask answers text in the background.
func (a *App) ask(text string) tea.Cmd {
	chat, sessions, ctx := a.ports.Chat, a.ports.Sessions, a.ctx
	return func() tea.Msg {
		turn, err := chat.Answer(ctx, sessions, text)
		return messages.ReplyReceived{Turn: turn, Err: err}
	}
}

func (a *App) handleReply(msg messages.ReplyReceived) {
	a.pending = false
	a.transcript.SetPending("")

	switch {
	case msg.Err != nil:
		a.setError(msg.Err)
	case msg.Turn != nil && msg.Turn.Degraded:
		a.status.SetState(status.StateDegraded)
		if msg.Turn.Cause != nil {
			a.status.SetMessage(msg.Turn.Cause.Error())
		}
	default:
		a.status.Clear()
	}
	a.syncSessions()
}

func (a *App) newChat() {
	if a.pending {
		a.setError(ErrReplyPending)
		return
	}
	a.ports.Sessions.NewSession()
	a.status.Clear()
	a.syncSessions()
}

func (a *App) switchTo(id string) error {
	if a.pending {
		return ErrReplyPending
	}
	if id == "" {
		return nil
	}
	if err := a.ports.Sessions.Switch(id); err != nil {
		return err
	}
	a.status.Clear()
	a.syncSessions()
	return nil
}

func (a *App) deleteSession(id string) error {
	if a.pending {
		return ErrReplyPending
	}
	if id == "" {
		return nil
	}
	if err := a.ports.Sessions.Delete(id); err != nil {
		return err
	}
	a.syncSessions()
	return nil
}

func (a *App) setSidebarFocus(focused bool) tea.Cmd {
	a.sidebarFocused = focused
	a.status.SetSidebarFocused(focused)
	if focused {
		a.input.Blur()
		return nil
	}
	return a.input.Focus()
}

// setError records err. The status bar keeps its spinner while a reply is pending.
func (a *App) setError(err error) {
	a.err = err
	if err == nil || a.pending {
		return
	}
	a.status.SetState(status.StateError)
	a.status.SetMessage(err.Error())
}

// syncSessions refreshes the sidebar and transcript from the store.
func (a *App) syncSessions() {
	active := a.ports.Sessions.Active()
	sessions := a.ports.Sessions.List()
	a.sidebar.SetSessions(sessions, active.ID)
	a.status.SetSessionCount(len(sessions))
	a.transcript.SetSession(active)
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	header := a.styles.Title.Render(a.persona.Name) + "  " +
		a.styles.Muted.Render(a.ports.Sessions.Active().Title())

	main := lipgloss.JoinVertical(lipgloss.Left,
		a.transcript.View(),
		a.input.View(),
	)

	body := main
	if a.showSidebar() {
		frame := a.styles.Sidebar
		if a.sidebarFocused {
			frame = a.styles.SidebarFocused
		}
		side := frame.Width(sidebarWidth).Height(a.bodyHeight() - sidebarBorder).Render(a.sidebar.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, side, main)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, a.status.View())
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// Pending returns whether a reply is being generated.
func (a *App) Pending() bool {
	return a.pending
}

// SidebarFocused returns whether keys go to the session list.
func (a *App) SidebarFocused() bool {
	return a.sidebarFocused
}

// Status returns the status bar state.
func (a *App) Status() status.State {
	return a.status.State()
}

// Transcript returns the full rendered transcript.
func (a *App) Transcript() string {
	return a.transcript.Content()
}

// SetDimensions sets the terminal dimensions and lays out the components.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	mainWidth := width
	if a.showSidebar() {
		mainWidth = width - sidebarWidth - sidebarBorder
		a.sidebar.SetDimensions(sidebarWidth-2, a.bodyHeight()-sidebarBorder)
	}

	a.transcript.SetDimensions(mainWidth, a.bodyHeight()-inputHeight)
	a.input.SetWidth(mainWidth)
	a.status.SetWidth(width)
}

func (a *App) showSidebar() bool {
	return a.width >= minSidebarTerminal
}

// bodyHeight is the height left after the header and status lines.
func (a *App) bodyHeight() int {
	return a.height - 2
}
