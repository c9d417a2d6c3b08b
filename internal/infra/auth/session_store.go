// Package auth provides session-state holding and local token inspection.
package auth

import (
	"sync"

	"libris/internal/domain/entity"
	"libris/internal/domain/service"
)

// SessionStore holds the current auth session in memory. It is the single
// process-wide owner of "who is logged in right now"; the session usecase
// mutates it, everything else (gateway included) only reads it through the
// SessionState and TokenSource interfaces.
type SessionStore struct {
	mu      sync.RWMutex
	token   string
	profile *entity.Profile
}

// NewSessionStore is the constructor for SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Token returns the current bearer token, or "" when unauthenticated.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Namespace returns the fallback-store namespace for the current identity.
func (s *SessionStore) Namespace() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.profile.Namespace()
}

// Profile returns the current profile, or nil when unauthenticated.
func (s *SessionStore) Profile() *entity.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.profile
}

// Set installs a new session.
func (s *SessionStore) Set(token string, profile *entity.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.profile = profile
}

// Reset tears the session down, returning the store to the guest state.
func (s *SessionStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.profile = nil
}

var _ service.SessionState = (*SessionStore)(nil)
