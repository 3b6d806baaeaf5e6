// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/vernebot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vernebot/internal/core/domain"
)

// SessionList displays chat sessions in a navigable list.
// The active session is marked; the cursor moves independently of it.
type SessionList struct {
	sessions []domain.Session
	active   string
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewSessionList creates a new session list component.
func NewSessionList(s *styles.Styles) *SessionList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &SessionList{
		styles: s,
		width:  28,
		height: 10,
	}
}

// Init initialises the session list.
func (l *SessionList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *SessionList) Update(msg tea.Msg) (*SessionList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the session list.
func (l *SessionList) View() string {
	lines := make([]string, 0, len(l.sessions)+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Chats (%d)", len(l.sessions))), "")

	if len(l.sessions) == 0 {
		lines = append(lines, l.styles.Muted.Render("No chats"))
		return strings.Join(lines, "\n")
	}

	visible := l.height - 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.sessions) {
		end = len(l.sessions)
	}

	for i := start; i < end; i++ {
		lines = append(lines, l.renderSession(i, &l.sessions[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *SessionList) renderSession(index int, s *domain.Session) string {
	marker := "  "
	if s.ID == l.active {
		marker = "● "
	}

	title := s.Title()
	maxLen := l.width - 4
	if maxLen < 8 {
		maxLen = 8
	}
	if r := []rune(title); len(r) > maxLen {
		title = string(r[:maxLen-3]) + "..."
	}

	line := fmt.Sprintf("%s%-*s", marker, maxLen, title)
	if index == l.selected {
		return l.styles.Selected.Render(line)
	}
	if s.ID == l.active {
		return l.styles.Normal.Render(line)
	}
	return l.styles.Muted.Render(line)
}

// SetSessions replaces the listed sessions and marks active.
// The cursor follows the active session.
func (l *SessionList) SetSessions(sessions []domain.Session, active string) {
	l.sessions = sessions
	l.active = active
	l.selected = 0
	for i, s := range sessions {
		if s.ID == active {
			l.selected = i
			break
		}
	}
}

// Sessions returns the listed sessions.
func (l *SessionList) Sessions() []domain.Session {
	return l.sessions
}

// Active returns the id of the active session.
func (l *SessionList) Active() string {
	return l.active
}

// Selected returns the cursor index.
func (l *SessionList) Selected() int {
	return l.selected
}

// SelectedID returns the id under the cursor, or "" when empty.
func (l *SessionList) SelectedID() string {
	if l.selected < 0 || l.selected >= len(l.sessions) {
		return ""
	}
	return l.sessions[l.selected].ID
}

// MoveUp moves the cursor up.
func (l *SessionList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves the cursor down.
func (l *SessionList) MoveDown() {
	if l.selected < len(l.sessions)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *SessionList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Width returns the current width.
func (l *SessionList) Width() int {
	return l.width
}

// Height returns the current height.
func (l *SessionList) Height() int {
	return l.height
}

// Count returns the number of sessions.
func (l *SessionList) Count() int {
	return len(l.sessions)
}
