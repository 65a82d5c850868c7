package session

import (
	"sync"

	"github.com/google/uuid"
)

// Store is the uuid-keyed session registry a hosting process shares
// between request handlers.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore returns an empty registry.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create builds a new session and registers it under a fresh id.
func (st *Store) Create(code string, input []byte, language, source string, cfg Config) (*Session, error) {
	s, err := New(code, input, language, source, cfg)
	if err != nil {
		return nil, err
	}
	s.ID = uuid.NewString()

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s, nil
}

// Get looks up a session by id.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Remove deletes the session with the given id, reporting whether it
// existed.
func (st *Store) Remove(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Clear drops every session.
func (st *Store) Clear() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions = make(map[string]*Session)
}
