package storage

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/radassist/internal/workflow"
)

// SessionStore keeps one workflow controller per browser session in memory
type SessionStore struct {
	sessions    map[string]*workflow.Controller
	analyzer    workflow.Analyzer
	maxSessions int
	mu          sync.RWMutex
}

func New(analyzer workflow.Analyzer) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*workflow.Controller),
		analyzer: analyzer,
	}
}

// WithMaxSessions caps the number of live sessions; zero means unlimited.
func (s *SessionStore) WithMaxSessions(n int) *SessionStore {
	s.maxSessions = n
	return s
}

// Create registers a fresh controller under a new random ID. When the store is
// full the least recently active session is evicted to make room.
func (s *SessionStore) Create() *workflow.Controller {
	c := workflow.New(uuid.NewString(), s.analyzer)

	s.mu.Lock()
	defer s.mu.Unlock()
	for s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		s.evictOldest()
	}
	s.sessions[c.ID()] = c
	return c
}

// evictOldest must be called with mu held.
func (s *SessionStore) evictOldest() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, c := range s.sessions {
		if last := c.LastActive(); oldestID == "" || last.Before(oldest) {
			oldestID, oldest = id, last
		}
	}
	delete(s.sessions, oldestID)
	slog.Info("Evicted least recently active session", "session_id", oldestID, "max_sessions", s.maxSessions)
}

func (s *SessionStore) Get(sessionID string) (*workflow.Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than ttl and returns how many were removed.
// In-flight analyses finish against the detached controller and are then garbage collected.
func (s *SessionStore) Sweep(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, c := range s.sessions {
		if c.LastActive().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
