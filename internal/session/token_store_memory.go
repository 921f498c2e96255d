package session

import (
	"context"
	"sync"
)

// NewMemoryTokenStore returns a TokenStore backed by process memory.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

// MemoryTokenStore implements TokenStore for tests and ephemeral sessions.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
	set   bool
}

// Save persists the provided token.
func (s *MemoryTokenStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.set = true
	s.mu.Unlock()
	return nil
}

// Load retrieves the persisted token.
func (s *MemoryTokenStore) Load(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return "", ErrNoToken
	}
	return s.token, nil
}

// Clear removes the persisted token.
func (s *MemoryTokenStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.set = false
	s.mu.Unlock()
	return nil
}
