package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/logger"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "vernebot", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"ingest", "chat", "ask", "retrieve", "tui", "mcp", "settings", "version"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"verbose", "config", "log-file"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing flag %q", name)
	}
}

func TestBootstrap_InstallsServicesAndCloses(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	settingsService = nil

	var gotOpts Options
	closed := false
	SetBootstrap(func(_ context.Context, opts Options) (*Services, func(), error) {
		gotOpts = opts
		return &Services{
			Settings:  ts.settings,
			Retrieval: ts.retrieval,
			Chat:      ts.chat,
		}, func() { closed = true }, nil
	})
	defer SetBootstrap(nil)

	_, err := executeCommand(t, "", "--config", "/tmp/vernebot.toml", "settings", "show")

	require.NoError(t, err)
	assert.Equal(t, "/tmp/vernebot.toml", gotOpts.ConfigPath)
	assert.NotNil(t, gotOpts.Progress)
	assert.Same(t, ts.settings, settingsService)
	assert.True(t, closed)
}

func TestBootstrap_Error(t *testing.T) {
	SetBootstrap(func(context.Context, Options) (*Services, func(), error) {
		return nil, nil, fmt.Errorf("%w: bad toml", domain.ErrConfigInvalid)
	})
	defer SetBootstrap(nil)

	_, err := executeCommand(t, "", "version")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigInvalid)
	assert.Contains(t, err.Error(), "starting vernebot")
}

func TestRequireValidConfig(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	assert.NoError(t, requireValidConfig())

	ts.settings.validateErr = fmt.Errorf("%w: llm needs a key", domain.ErrConfigInvalid)
	err := requireValidConfig()
	assert.ErrorIs(t, err, domain.ErrConfigInvalid)
	assert.Contains(t, err.Error(), "vernebot settings show")

	settingsService = nil
	assert.Error(t, requireValidConfig())
}

func TestLoadIndex_WarnsWhenMissing(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.chat.reloadErr = fmt.Errorf("%w: no bundle", domain.ErrIndexUnavailable)

	var logs bytes.Buffer
	logger.SetOutput(&logs)
	defer logger.SetOutput(os.Stderr)

	out, err := executeCommand(t, "", "ask", "hello")

	require.NoError(t, err)
	assert.Equal(t, []string{"verne_vectorstore"}, ts.chat.reloaded)
	assert.Contains(t, logs.String(), "vernebot ingest")
	assert.Contains(t, out, "echo: hello")
}

func TestLoadIndex_OtherErrorIsNotFatal(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.chat.reloadErr = errors.New("disk on fire")

	var logs bytes.Buffer
	logger.SetOutput(&logs)
	defer logger.SetOutput(os.Stderr)

	_, err := executeCommand(t, "", "ask", "hello")

	require.NoError(t, err)
	assert.Contains(t, logs.String(), "disk on fire")
}
