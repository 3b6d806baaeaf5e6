package services

import (
	"strconv"
	"strings"

	"github.com/custodia-labs/vernebot/internal/core/domain"
)

// DefaultHistoryWindow is the number of recent messages carried into a prompt.
const DefaultHistoryWindow = 6

// noContext stands in for the context section when retrieval found nothing.
const noContext = "(no relevant context found)"

// PromptInput holds everything that goes into one generation prompt.
type PromptInput struct {
	// Persona supplies the instructions that open the prompt.
	Persona domain.Persona

	// Context holds the retrieved passages, best first.
	Context []domain.Chunk

	// History is the active session's log, oldest first.
	History []domain.Message

	// UserInput is the new turn.
	UserInput string

	// HistoryWindow is the number of trailing History messages kept.
	// Zero or less omits the conversation section.
	HistoryWindow int

	// AssistantLabel prefixes assistant lines and the final cue.
	// Empty falls back to the persona name, then "Assistant".
	AssistantLabel string
}

// ComposePrompt renders the prompt in a fixed order: persona instructions,
// retrieved passages, recent conversation, then the new user turn followed
// by the assistant cue.
//
// Passages are framed by numbered open and close markers so that blank lines
// inside a passage cannot be mistaken for a passage boundary.
func ComposePrompt(in PromptInput) string {
	label := assistantLabel(in)

	var b strings.Builder

	if instructions := strings.TrimSpace(in.Persona.Instructions); instructions != "" {
		b.WriteString(instructions)
		b.WriteString("\n\n")
	}

	b.WriteString("Here's some context from the knowledge base:\n")
	if len(in.Context) == 0 {
		b.WriteString(noContext)
		b.WriteString("\n")
	}
	for i, chunk := range in.Context {
		n := strconv.Itoa(i + 1)
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("[Passage " + n)
		if chunk.Source != "" {
			b.WriteString(" | " + chunk.Source)
		}
		b.WriteString("]\n")
		b.WriteString(strings.TrimSpace(chunk.Content))
		b.WriteString("\n[End passage " + n + "]\n")
	}

	if recent := recentHistory(in.History, in.HistoryWindow); len(recent) > 0 {
		b.WriteString("\nHere's our conversation so far:\n")
		for _, m := range recent {
			speaker := m.Role.Label()
			if m.Role == domain.RoleAssistant {
				speaker = label
			}
			b.WriteString(speaker + ": " + m.Content + "\n")
		}
	}

	b.WriteString("\nUser: " + in.UserInput + "\n")
	b.WriteString(label + ":")

	return b.String()
}

func recentHistory(history []domain.Message, window int) []domain.Message {
	if window <= 0 || len(history) == 0 {
		return nil
	}
	return domain.Session{Messages: history}.Recent(window)
}

func assistantLabel(in PromptInput) string {
	if label := strings.TrimSpace(in.AssistantLabel); label != "" {
		return label
	}
	if name := strings.TrimSpace(in.Persona.Name); name != "" {
		return name
	}
	return domain.RoleAssistant.Label()
}
