// Package session tracks operator sessions. A session owns the bearer token
// for the upstream transaction API and the risk gate watching the sender
// account field. Sessions live in memory only and disappear on restart.
package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/banking-fraud-console/internal/riskgate"
)

// ErrNotFound signals an unknown or expired session id.
var ErrNotFound = errors.New("session not found")

// Credentials is the view of a session its collaborators need: the current
// bearer token and whether one is held. It satisfies txapi.TokenSource.
type Credentials interface {
	Token() string
	Authenticated() bool
}

// GateFactory builds the per-session risk gate from the owning session's
// credentials.
type GateFactory func(creds Credentials) riskgate.FieldGate

// Session is one operator's console session.
type Session struct {
	ID string

	mu    sync.RWMutex
	token string
	gate  riskgate.FieldGate
}

// Token implements txapi.TokenSource for the upstream client.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether the session holds a bearer token.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// SetToken stores the token obtained from a successful login.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// ClearToken drops the token, returning the session to the unauthenticated
// optimistic path.
func (s *Session) ClearToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

// Gate returns the session's sender-account risk gate.
func (s *Session) Gate() riskgate.FieldGate {
	return s.gate
}

// Manager owns all live sessions.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	gateFactory GateFactory
}

// NewManager creates a session manager using the given gate factory.
func NewManager(gateFactory GateFactory) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		gateFactory: gateFactory,
	}
}

// Create registers a new unauthenticated session and returns it.
func (m *Manager) Create() *Session {
	s := &Session{ID: uuid.New().String()}
	s.gate = m.gateFactory(s)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return s
}

// Get looks up a live session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete removes a session and closes its gate. Deleting an unknown id
// returns ErrNotFound.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	s.gate.Close()
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll tears down every session, closing each gate. Used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.gate.Close()
	}
}
