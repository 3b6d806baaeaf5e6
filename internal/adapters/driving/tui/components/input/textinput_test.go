package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vernebot/internal/adapters/driving/tui/styles"
)

func TestNewChatInput(t *testing.T) {
	input := NewChatInput(styles.DefaultStyles(), "Ask VerneBot...")

	require.NotNil(t, input)
	assert.Equal(t, "", input.Value())
	assert.True(t, input.Focused())
	assert.Equal(t, "Ask VerneBot...", input.textinput.Placeholder)
}

func TestNewChatInput_Defaults(t *testing.T) {
	input := NewChatInput(nil, "")

	require.NotNil(t, input)
	assert.NotNil(t, input.styles)
	assert.Equal(t, "Type a message...", input.textinput.Placeholder)
}

func TestChatInput_Init(t *testing.T) {
	input := NewChatInput(nil, "")

	assert.NotNil(t, input.Init())
}

func TestChatInput_Update(t *testing.T) {
	input := NewChatInput(nil, "")

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h', 'i'}}
	updated, _ := input.Update(msg)

	assert.Equal(t, input, updated)
	assert.Equal(t, "hi", input.Value())
}

func TestChatInput_View(t *testing.T) {
	input := NewChatInput(nil, "")

	view := input.View()

	assert.Contains(t, view, "You")
}

func TestChatInput_Submit(t *testing.T) {
	t.Run("returns trimmed text and clears", func(t *testing.T) {
		input := NewChatInput(nil, "")
		input.SetValue("  what is the OPSP?  ")

		assert.Equal(t, "what is the OPSP?", input.Submit())
		assert.Equal(t, "", input.Value())
	})

	t.Run("blank input is kept", func(t *testing.T) {
		input := NewChatInput(nil, "")
		input.SetValue("   ")

		assert.Equal(t, "", input.Submit())
		assert.Equal(t, "   ", input.Value())
	})
}

func TestChatInput_FocusBlur(t *testing.T) {
	input := NewChatInput(nil, "")

	input.Blur()
	assert.False(t, input.Focused())

	input.Focus()
	assert.True(t, input.Focused())
}

func TestChatInput_SetWidth(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		fieldWidth int
	}{
		{name: "wide", width: 100, fieldWidth: 88},
		{name: "narrow clamps", width: 15, fieldWidth: minInputWidth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := NewChatInput(nil, "")
			input.SetWidth(tt.width)

			assert.Equal(t, tt.width, input.Width())
			assert.Equal(t, tt.fieldWidth, input.textinput.Width)
		})
	}
}

func TestChatInput_Reset(t *testing.T) {
	input := NewChatInput(nil, "")
	input.SetValue("draft")

	input.Reset()

	assert.Equal(t, "", input.Value())
}
