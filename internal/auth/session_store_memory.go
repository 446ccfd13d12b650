package auth

import (
	"context"
	"crypto/subtle"
	"sync"
)

// NewInMemorySessionStore returns a SessionStore backed by an in-memory map.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{tokens: make(map[string]string)}
}

// InMemorySessionStore implements SessionStore for tests.
type InMemorySessionStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// SaveRefreshToken records the user's refresh token.
func (s *InMemorySessionStore) SaveRefreshToken(_ context.Context, userID, token string) error {
	s.mu.Lock()
	s.tokens[userID] = token
	s.mu.Unlock()
	return nil
}

// RefreshToken returns the user's refresh token, or "" when none is stored.
func (s *InMemorySessionStore) RefreshToken(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens[userID], nil
}

// RotateRefreshToken swaps current for next when current is the stored token.
func (s *InMemorySessionStore) RotateRefreshToken(_ context.Context, userID, current, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tokens[userID]
	if !ok || stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(current)) != 1 {
		return false, nil
	}
	s.tokens[userID] = next
	return true, nil
}

// ClearRefreshToken removes the user's refresh token.
func (s *InMemorySessionStore) ClearRefreshToken(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.tokens, userID)
	s.mu.Unlock()
	return nil
}
