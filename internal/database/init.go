package database

import (
	"context"
	"fmt"

	"github.com/yourusername/stable-stakes/internal/config"
)

// schema holds the tables backing race history and the statistics
// registry. Idempotent so startup can always apply it.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS race_records (
		id UUID PRIMARY KEY,
		room_id BIGINT NOT NULL,
		outcome TEXT NOT NULL,
		pot BIGINT NOT NULL,
		entrants INT NOT NULL,
		cheaters INT NOT NULL,
		casualties INT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_race_records_room ON race_records (room_id, ended_at DESC)`,
	`CREATE TABLE IF NOT EXISTS wager_records (
		id UUID PRIMARY KEY,
		race_id UUID NOT NULL REFERENCES race_records (id),
		placer_id BIGINT NOT NULL,
		target_id BIGINT NOT NULL,
		odds_name TEXT NOT NULL,
		amount BIGINT NOT NULL,
		won BOOLEAN NOT NULL,
		payout BIGINT NOT NULL,
		settled_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS participant_stats (
		participant_id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		races_played INT NOT NULL DEFAULT 0,
		won_first INT NOT NULL DEFAULT 0,
		won_second INT NOT NULL DEFAULT 0,
		won_third INT NOT NULL DEFAULT 0,
		race_winnings BIGINT NOT NULL DEFAULT 0,
		wagers_placed INT NOT NULL DEFAULT 0,
		wagers_won INT NOT NULL DEFAULT 0,
		amount_wagered BIGINT NOT NULL DEFAULT 0,
		doping_spend BIGINT NOT NULL DEFAULT 0,
		cheats_caught INT NOT NULL DEFAULT 0,
		mounts_lost INT NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
}

// Initialize creates a database connection pool and applies the schema
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return db, nil
}
