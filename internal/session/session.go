// Package session holds per-session UI state: navigation plus the quiz
// session. Each session is an isolated copy keyed by a server-issued id;
// nothing here is shared between sessions or persisted into snapshots.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/oikos/internal/quiz"
)

// Navigation tabs.
const (
	TabLessons   = "lessons"
	TabTests     = "tests"
	TabNotes     = "notes"
	TabSummaries = "summaries"
	TabSettings  = "settings"
)

// Navigation tracks which view is rendered and which unit/page is open.
// It replaces the string-keyed toggle globals of the early prototypes with
// named fields.
type Navigation struct {
	ActiveTab    string `json:"active_tab"`
	SelectedUnit int    `json:"selected_unit,omitempty"`
	SelectedPage int    `json:"selected_page,omitempty"`
}

// ValidTab reports whether tab names a known view.
func ValidTab(tab string) bool {
	switch tab {
	case TabLessons, TabTests, TabNotes, TabSummaries, TabSettings:
		return true
	}
	return false
}

// Session is the state owned by one client.
type Session struct {
	ID        string
	CreatedAt time.Time
	Quiz      *quiz.Session

	mu  sync.Mutex
	nav Navigation
}

// Nav returns the current navigation state.
func (s *Session) Nav() Navigation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav
}

// SetNav replaces the navigation state.
func (s *Session) SetNav(nav Navigation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nav = nav
}

// Manager is the session registry.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty session registry.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// GetOrCreate returns the session with the given id, creating one when it is
// unknown. An empty id gets a server-issued uuid; a non-empty unknown id is
// adopted, so a client can keep its session key across server restarts.
func (m *Manager) GetOrCreate(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s
	}
	if id == "" {
		id = uuid.NewString()
	}
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		Quiz:      quiz.NewSession(),
		nav:       Navigation{ActiveTab: TabLessons},
	}
	m.sessions[id] = s
	return s
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
