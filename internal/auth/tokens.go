package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TokenStore issues opaque bearer tokens bound to a player id.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]tokenEntry
	ttl    time.Duration
}

type tokenEntry struct {
	playerID  string
	expiresAt time.Time
}

// NewTokenStore creates a token store with the given token lifetime.
func NewTokenStore(ttl time.Duration) *TokenStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenStore{tokens: make(map[string]tokenEntry), ttl: ttl}
}

// Issue mints a fresh token for the player.
func (s *TokenStore) Issue(playerID string) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = tokenEntry{playerID: playerID, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return token
}

// Validate resolves a token to its player id. Expired tokens are invalid.
func (s *TokenStore) Validate(token string) (string, bool) {
	s.mu.RLock()
	entry, ok := s.tokens[token]
	s.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.playerID, true
}

// Revoke invalidates a token immediately.
func (s *TokenStore) Revoke(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// CleanupExpired drops expired tokens every minute until the context ends.
func (s *TokenStore) CleanupExpired(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for token, entry := range s.tokens {
				if now.After(entry.expiresAt) {
					delete(s.tokens, token)
				}
			}
			s.mu.Unlock()
		}
	}
}
