package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driven"
)

// Ensure PersonaStore implements the interface.
var _ driven.PersonaStore = (*PersonaStore)(nil)

// PersonaFile is the name of the persona profile inside the config directory.
const PersonaFile = "persona.yaml"

// PersonaStore loads the assistant persona from a user-editable YAML file.
//
// The store uses lazy initialisation: the file is written with the default
// persona on the first Load, not in the constructor. Fields missing from the
// file fall back to domain.DefaultPersona.
type PersonaStore struct {
	mu       sync.RWMutex
	path     string
	cached   *domain.Persona
	initOnce sync.Once
	initErr  error
}

// NewPersonaStore creates a persona store backed by path.
// If path is empty, defaults to ~/.vernebot/persona.yaml.
func NewPersonaStore(path string) (*PersonaStore, error) {
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, PersonaFile)
	}
	return &PersonaStore{path: path}, nil
}

// Load returns the persona, reading the file on first access or after Reload.
// If the file cannot be created the default persona is returned without error;
// a file that exists but does not parse is an ErrConfigInvalid.
func (s *PersonaStore) Load() (domain.Persona, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return domain.DefaultPersona(), nil
	}

	s.mu.RLock()
	if s.cached != nil {
		p := *s.cached
		s.mu.RUnlock()
		return p, nil
	}
	s.mu.RUnlock()

	p, err := s.read()
	if err != nil {
		return domain.Persona{}, err
	}

	s.mu.Lock()
	s.cached = &p
	s.mu.Unlock()

	return p, nil
}

// Reload clears the cached persona, forcing a fresh read on next access.
func (s *PersonaStore) Reload() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// Path returns the persona file path.
func (s *PersonaStore) Path() string {
	return s.path
}

// initialise writes the default persona if no file exists yet.
func (s *PersonaStore) initialise() {
	if _, err := os.Stat(s.path); err == nil {
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		s.initErr = fmt.Errorf("create persona directory: %w", err)
		return
	}

	data, err := yaml.Marshal(domain.DefaultPersona())
	if err != nil {
		s.initErr = fmt.Errorf("encode default persona: %w", err)
		return
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		s.initErr = fmt.Errorf("write default persona: %w", err)
	}
}

func (s *PersonaStore) read() (domain.Persona, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.DefaultPersona(), nil
		}
		return domain.Persona{}, fmt.Errorf("%w: read %s: %w", domain.ErrConfigInvalid, s.path, err)
	}

	var p domain.Persona
	if err := yaml.Unmarshal(data, &p); err != nil {
		return domain.Persona{}, fmt.Errorf("%w: parse %s: %w", domain.ErrConfigInvalid, s.path, err)
	}

	return p.WithDefaults(), nil
}
