// Package transcript renders the active chat session in a scrollable viewport.
// Assistant replies are rendered as markdown.
package transcript

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/custodia-labs/vernebot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vernebot/internal/core/domain"
)

const minHeight = 3

// Transcript shows the messages of one session.
type Transcript struct {
	viewport viewport.Model
	renderer *glamour.TermRenderer
	styles   *styles.Styles
	persona  domain.Persona
	session  domain.Session
	pending  string
	width    int
	height   int
}

// New creates a transcript for persona.
func New(s *styles.Styles, persona domain.Persona) *Transcript {
	if s == nil {
		s = styles.DefaultStyles()
	}
	t := &Transcript{
		styles:  s,
		persona: persona.WithDefaults(),
	}
	t.SetDimensions(80, 20)
	return t
}

// Update forwards scrolling keys and mouse events to the viewport.
func (t *Transcript) Update(msg tea.Msg) (*Transcript, tea.Cmd) {
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return t, cmd
}

// View renders the visible part of the transcript.
func (t *Transcript) View() string {
	return t.viewport.View()
}

// SetSession shows session and scrolls to its end.
func (t *Transcript) SetSession(session domain.Session) {
	t.session = session
	t.refresh()
}

// SetPending shows text as a user message awaiting a reply.
// An empty text clears it.
func (t *Transcript) SetPending(text string) {
	t.pending = text
	t.refresh()
}

// Pending returns the user message awaiting a reply.
func (t *Transcript) Pending() string {
	return t.pending
}

// SetDimensions resizes the viewport and rewraps the content.
func (t *Transcript) SetDimensions(width, height int) {
	if height < minHeight {
		height = minHeight
	}
	t.width = width
	t.height = height
	t.viewport = viewport.New(width, height)

	wrap := width - 2
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		t.renderer = r
	}
	t.refresh()
}

// Width returns the current width.
func (t *Transcript) Width() int {
	return t.width
}

// Height returns the current height.
func (t *Transcript) Height() int {
	return t.height
}

// Content returns the full rendered transcript.
func (t *Transcript) Content() string {
	return t.render()
}

func (t *Transcript) refresh() {
	t.viewport.SetContent(t.render())
	t.viewport.GotoBottom()
}

func (t *Transcript) render() string {
	var sb strings.Builder

	if t.session.IsEmpty() && t.pending == "" {
		sb.WriteString(t.renderMarkdown(t.persona.Welcome))
		sb.WriteString("\n")
		return sb.String()
	}

	for _, m := range t.session.Messages {
		if m.Role == domain.RoleUser {
			t.writeUser(&sb, m.Content)
			continue
		}
		sb.WriteString(t.styles.Assistant.Render(t.persona.Name+":") + "\n")
		sb.WriteString(t.renderMarkdown(m.Content) + "\n\n")
	}

	if t.pending != "" {
		t.writeUser(&sb, t.pending)
	}

	return sb.String()
}

func (t *Transcript) writeUser(sb *strings.Builder, text string) {
	sb.WriteString(t.styles.User.Render("You: ") + text + "\n\n")
}

func (t *Transcript) renderMarkdown(content string) string {
	if t.renderer == nil {
		return content
	}
	rendered, err := t.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(rendered, "\n")
}
