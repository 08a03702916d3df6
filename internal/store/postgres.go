package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arcanaduel/arcana-server-go/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS fusion_discoveries (
    player_id          TEXT NOT NULL,
    discovery_key      TEXT NOT NULL,
    result_template_id TEXT NOT NULL,
    material_ids       TEXT[] NOT NULL,
    discovered_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (player_id, discovery_key)
);

CREATE TABLE IF NOT EXISTS match_results (
    id          BIGSERIAL PRIMARY KEY,
    room_code   TEXT NOT NULL,
    winner_id   TEXT NOT NULL,
    loser_id    TEXT NOT NULL,
    turns       INT NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL
);
`

// PostgresStore persists discoveries and match results in Postgres.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore opens a pgx pool, verifies connectivity and ensures the
// schema exists.
func NewPostgresStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	logger.Info("database store initialized",
		zap.Int32("max_conns", poolCfg.MaxConns),
	)
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) SaveDiscovery(ctx context.Context, d Discovery) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO fusion_discoveries (player_id, discovery_key, result_template_id, material_ids, discovered_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (player_id, discovery_key) DO NOTHING`,
		d.PlayerID, d.DiscoveryKey, d.ResultTemplateID, d.MaterialIDs, d.DiscoveredAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to save discovery: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) ListDiscoveries(ctx context.Context, playerID string) ([]Discovery, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT player_id, discovery_key, result_template_id, material_ids, discovered_at
		FROM fusion_discoveries
		WHERE player_id = $1
		ORDER BY discovered_at`,
		playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list discoveries: %w", err)
	}
	defer rows.Close()

	var out []Discovery
	for rows.Next() {
		var d Discovery
		if err := rows.Scan(&d.PlayerID, &d.DiscoveryKey, &d.ResultTemplateID, &d.MaterialIDs, &d.DiscoveredAt); err != nil {
			return nil, fmt.Errorf("failed to scan discovery: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) RecordMatch(ctx context.Context, m MatchRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO match_results (room_code, winner_id, loser_id, turns, finished_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.RoomCode, m.WinnerID, m.LoserID, m.Turns, m.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record match: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
