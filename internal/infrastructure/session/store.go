package session

import (
	"sync"

	"github.com/chargedocs/chargedocs/internal/core/domain"
)

// Store holds the token and user identity for the lifetime of the client
// process. It is the only component that mutates them; the document and
// upload components read the token per call and never write it.
type Store struct {
	mu      sync.RWMutex
	session domain.Session
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.UserID
}

func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

func (s *Store) Set(session domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
}

// Clear drops the local identity. Called on logout and whenever the
// backend answers 401, which forces the views back into the login flow.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = domain.Session{}
}
