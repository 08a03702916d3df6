package store

import (
	"context"
	"time"
)

// Discovery is one first-time fusion combination found by a player.
type Discovery struct {
	PlayerID         string
	DiscoveryKey     string
	ResultTemplateID string
	MaterialIDs      []string
	DiscoveredAt     time.Time
}

// MatchRecord summarizes one finished duel.
type MatchRecord struct {
	RoomCode   string
	WinnerID   string
	LoserID    string
	Turns      int
	FinishedAt time.Time
}

// Store persists fusion discoveries and match results. Implementations must
// be safe for concurrent use by every room worker.
type Store interface {
	// SaveDiscovery records the combination and reports whether it was new
	// for this player.
	SaveDiscovery(ctx context.Context, d Discovery) (bool, error)
	ListDiscoveries(ctx context.Context, playerID string) ([]Discovery, error)
	RecordMatch(ctx context.Context, m MatchRecord) error
	Close()
}
