package services

import (
	"sync"

	"github.com/checkfox/go_reassign/internal/models"
)

// LookupSession is the locally held state between a duplicate lookup and a
// subsequent action: the entered phone, the found lead, and its computed
// eligibility. Cancel clears it so the form returns to its pre-lookup state.
type LookupSession struct {
	Phone       string
	Lead        models.LeadRecord
	Eligibility models.EligibilityResult
}

// SessionStore keeps lookup sessions in memory, keyed by an opaque session
// ID handed to the caller after a successful lookup.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*LookupSession
}

// NewSessionStore creates a new SessionStore instance
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*LookupSession),
	}
}

// Put stores a session under the given ID, replacing any previous state
func (s *SessionStore) Put(id string, session *LookupSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = session
}

// Get returns the session for an ID, or nil if none exists
func (s *SessionStore) Get(id string) *LookupSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// Clear removes the session for an ID. Safe to call for unknown IDs.
func (s *SessionStore) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
