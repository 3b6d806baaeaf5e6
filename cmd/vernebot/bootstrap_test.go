package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vernebot/internal/adapters/driven/config/file"
	"github.com/custodia-labs/vernebot/internal/adapters/driving/cli"
	"github.com/custodia-labs/vernebot/internal/core/domain"
)

const ollamaConfig = `[knowledge]
dir = "knowledge"

[embedding]
provider = "ollama"

[llm]
provider = "ollama"
`

func TestBootstrap_WiresServices(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, file.ConfigFile)
	require.NoError(t, os.WriteFile(configPath, []byte(ollamaConfig), 0o600))
	t.Chdir(dir)

	svc, closer, err := bootstrap(context.Background(), cli.Options{ConfigPath: configPath})
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer()

	require.NotNil(t, svc)
	assert.NotNil(t, svc.Settings)
	assert.NotNil(t, svc.Ingest)
	assert.NotNil(t, svc.Retrieval)
	assert.NotNil(t, svc.Chat)
	require.NotNil(t, svc.NewSessions)

	settings, err := svc.Settings.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)

	a, b := svc.NewSessions(), svc.NewSessions()
	assert.NotSame(t, a, b)

	assert.Equal(t, "VerneBot", svc.Chat.Persona().Name)
	assert.FileExists(t, filepath.Join(dir, file.PersonaFile))
}

func TestBootstrap_MissingIndexDegrades(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, file.ConfigFile)
	require.NoError(t, os.WriteFile(configPath, []byte(ollamaConfig), 0o600))
	t.Chdir(dir)

	svc, closer, err := bootstrap(context.Background(), cli.Options{ConfigPath: configPath})
	require.NoError(t, err)
	defer closer()

	err = svc.Chat.Reload(context.Background(), filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	assert.Empty(t, svc.Retrieval.Retrieve(context.Background(), "cash", 3))
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, file.ConfigFile)
	require.NoError(t, os.WriteFile(configPath, []byte("not = [valid"), 0o600))
	t.Chdir(dir)

	svc, closer, err := bootstrap(context.Background(), cli.Options{ConfigPath: configPath})

	assert.Error(t, err)
	assert.Nil(t, svc)
	assert.Nil(t, closer)
}
