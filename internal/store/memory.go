package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps discoveries and match results in process memory. It is
// the default when no database URL is configured, and the test double.
type MemoryStore struct {
	mu          sync.RWMutex
	discoveries map[string]map[string]Discovery // playerID -> key -> discovery
	matches     []MatchRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{discoveries: make(map[string]map[string]Discovery)}
}

func (s *MemoryStore) SaveDiscovery(_ context.Context, d Discovery) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byKey := s.discoveries[d.PlayerID]
	if byKey == nil {
		byKey = make(map[string]Discovery)
		s.discoveries[d.PlayerID] = byKey
	}
	if _, seen := byKey[d.DiscoveryKey]; seen {
		return false, nil
	}
	byKey[d.DiscoveryKey] = d
	return true, nil
}

func (s *MemoryStore) ListDiscoveries(_ context.Context, playerID string) ([]Discovery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byKey := s.discoveries[playerID]
	out := make([]Discovery, 0, len(byKey))
	for _, d := range byKey {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DiscoveredAt.Before(out[j].DiscoveredAt) })
	return out, nil
}

func (s *MemoryStore) RecordMatch(_ context.Context, m MatchRecord) error {
	s.mu.Lock()
	s.matches = append(s.matches, m)
	s.mu.Unlock()
	return nil
}

// Matches returns a copy of all recorded matches. Test helper.
func (s *MemoryStore) Matches() []MatchRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]MatchRecord(nil), s.matches...)
}

func (s *MemoryStore) Close() {}
