package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driving"
)

// Ensure SessionStore implements the interface.
var _ driving.SessionStore = (*SessionStore)(nil)

// SessionStore keeps the conversations of one interaction surface in memory.
// The active session is always present in the map.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	active   string
	now      func() time.Time
}

// NewSessionStore creates a store holding one empty active session.
func NewSessionStore() *SessionStore {
	return newSessionStore(time.Now)
}

func newSessionStore(now func() time.Time) *SessionStore {
	s := &SessionStore{
		sessions: make(map[string]*domain.Session),
		now:      now,
	}
	s.active = s.create()
	return s
}

// NewSession makes a fresh empty session active and returns its id.
// A non-empty active session is archived; an empty one is replaced.
func (s *SessionStore) NewSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.active
	id := s.create()
	if s.sessions[previous].IsEmpty() {
		delete(s.sessions, previous)
	}
	s.active = id
	return id
}

// Switch makes session id active. An empty active session is discarded.
func (s *SessionStore) Switch(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	if id == s.active {
		return nil
	}
	if s.sessions[s.active].IsEmpty() {
		delete(s.sessions, s.active)
	}
	s.active = id
	return nil
}

// Delete removes session id. Deleting the active session activates a new
// empty one in the same critical section.
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	if id == s.active {
		s.active = s.create()
	}
	delete(s.sessions, id)
	return nil
}

// Append adds a message to the active session.
func (s *SessionStore) Append(role domain.Role, text string) error {
	if !role.IsValid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: empty message", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.sessions[s.active]
	session.Messages = append(session.Messages, domain.Message{
		Role:      role,
		Content:   text,
		CreatedAt: s.now(),
	})
	return nil
}

// Active returns a copy of the active session.
func (s *SessionStore) Active() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySession(s.sessions[s.active])
}

// Get returns a copy of session id.
func (s *SessionStore) Get(id string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return copySession(session), nil
}

// List returns copies of all sessions, newest first.
func (s *SessionStore) List() []domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]domain.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		list = append(list, copySession(session))
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return sessionSeq(list[i].ID) > sessionSeq(list[j].ID)
	})
	return list
}

// create adds an empty session with a fresh id (caller must hold lock).
// Ids come from the creation time; a "#n" suffix disambiguates sessions
// created within the same second.
func (s *SessionStore) create() string {
	now := s.now()
	base := now.Format(domain.SessionIDLayout)
	id := base
	for n := 2; s.taken(id); n++ {
		id = fmt.Sprintf("%s #%d", base, n)
	}
	s.sessions[id] = &domain.Session{ID: id, CreatedAt: now}
	return id
}

func (s *SessionStore) taken(id string) bool {
	if _, ok := s.sessions[id]; ok {
		return true
	}
	return id == s.active
}

// sessionSeq orders ids that share a timestamp.
func sessionSeq(id string) int {
	i := strings.LastIndex(id, " #")
	if i < 0 {
		return 1
	}
	var n int
	if _, err := fmt.Sscanf(id[i+2:], "%d", &n); err != nil {
		return 1
	}
	return n
}

func copySession(session *domain.Session) domain.Session {
	c := *session
	c.Messages = append([]domain.Message(nil), session.Messages...)
	return c
}
