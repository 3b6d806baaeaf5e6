package status

import (
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vernebot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/vernebot/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestStatusBar_Init(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Nil(t, bar.Init())
}

func TestStatusBar_Update(t *testing.T) {
	t.Run("ignores keys", func(t *testing.T) {
		bar := NewBar(nil, nil)

		updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})

		assert.Equal(t, bar, updated)
		assert.Nil(t, cmd)
	})

	t.Run("ignores ticks when idle", func(t *testing.T) {
		bar := NewBar(nil, nil)

		_, cmd := bar.Update(spinner.TickMsg{})

		assert.Nil(t, cmd)
	})
}

func TestStatusBar_SetState(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.NotNil(t, bar.SetState(StateThinking))
	assert.Equal(t, StateThinking, bar.State())

	assert.Nil(t, bar.SetState(StateReady))
	assert.Equal(t, StateReady, bar.State())
}

func TestStatusBar_View(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		message  string
		sessions int
		contains string
	}{
		{name: "ready", state: StateReady, contains: "Ready"},
		{name: "ready with chats", state: StateReady, sessions: 3, contains: "3 chats"},
		{name: "thinking", state: StateThinking, contains: "Thinking"},
		{name: "degraded", state: StateDegraded, message: "model down", contains: "Degraded: model down"},
		{name: "degraded without message", state: StateDegraded, contains: "Degraded"},
		{name: "error", state: StateError, message: "boom", contains: "Error: boom"},
		{name: "error without message", state: StateError, contains: "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(200)
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)
			bar.SetSessionCount(tt.sessions)

			assert.Contains(t, bar.View(), tt.contains)
		})
	}
}

func TestStatusBar_Hints(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)

	assert.Contains(t, bar.View(), "send")

	bar.SetSidebarFocused(true)
	assert.Contains(t, bar.View(), "delete chat")
}

func TestStatusBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
}
