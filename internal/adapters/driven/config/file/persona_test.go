package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vernebot/internal/core/domain"
)

func TestNewPersonaStore_DefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewPersonaStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".vernebot", PersonaFile), store.Path())
}

func TestPersonaStore_Load_WritesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", PersonaFile)
	store, err := NewPersonaStore(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err), "constructor must not touch the disk")

	p, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPersona(), p)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "name: VerneBot")
	assert.Contains(t, string(raw), "degraded_prefix:")
}

func TestPersonaStore_Load_CustomFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), PersonaFile)
	content := "name: Coach\ninstructions: |\n  Be brief.\n  Cite passages.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	store, err := NewPersonaStore(path)
	require.NoError(t, err)

	p, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "Coach", p.Name)
	assert.Equal(t, "Be brief.\nCite passages.\n", p.Instructions)
	assert.Equal(t, domain.DefaultPersona().Welcome, p.Welcome)
	assert.Equal(t, domain.DefaultPersona().DegradedPrefix, p.DegradedPrefix)
}

func TestPersonaStore_Load_DoesNotOverwriteExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), PersonaFile)
	require.NoError(t, os.WriteFile(path, []byte("name: Mine\n"), 0600))

	store, err := NewPersonaStore(path)
	require.NoError(t, err)
	_, err = store.Load()
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name: Mine\n", string(raw))
}

func TestPersonaStore_Load_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), PersonaFile)
	require.NoError(t, os.WriteFile(path, []byte("name: [unterminated\n"), 0600))

	store, err := NewPersonaStore(path)
	require.NoError(t, err)

	_, err = store.Load()
	assert.ErrorIs(t, err, domain.ErrConfigInvalid)
}

func TestPersonaStore_Load_FallsBackWhenInitFails(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	store, err := NewPersonaStore(filepath.Join(blocker, PersonaFile))
	require.NoError(t, err)

	p, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPersona(), p)
}

func TestPersonaStore_CachesUntilReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), PersonaFile)
	require.NoError(t, os.WriteFile(path, []byte("name: First\n"), 0600))

	store, err := NewPersonaStore(path)
	require.NoError(t, err)

	p, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "First", p.Name)

	require.NoError(t, os.WriteFile(path, []byte("name: Second\n"), 0600))

	p, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "First", p.Name)

	store.Reload()

	p, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "Second", p.Name)
}

func TestPersonaStore_ConcurrentLoad(t *testing.T) {
	store, err := NewPersonaStore(filepath.Join(t.TempDir(), PersonaFile))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := store.Load()
			assert.NoError(t, err)
			assert.Equal(t, "VerneBot", p.Name)
		}()
	}
	wg.Wait()
}
