package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/stable-stakes/internal/database"
	"github.com/yourusername/stable-stakes/internal/models"
	"github.com/yourusername/stable-stakes/internal/statistics"
)

// PostgresStatsRepository implements StatsRepository for PostgreSQL
type PostgresStatsRepository struct {
	db *database.DB
}

// NewPostgresStatsRepository creates a new stats repository
func NewPostgresStatsRepository(db *database.DB) StatsRepository {
	return &PostgresStatsRepository{db: db}
}

// Upsert writes a participant's accumulated statistics
func (r *PostgresStatsRepository) Upsert(ctx context.Context, stats *statistics.ParticipantStats) error {
	query := `
		INSERT INTO participant_stats (participant_id, name, races_played, won_first, won_second, won_third,
		                               race_winnings, wagers_placed, wagers_won, amount_wagered, doping_spend,
		                               cheats_caught, mounts_lost, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (participant_id) DO UPDATE SET
			name = EXCLUDED.name,
			races_played = EXCLUDED.races_played,
			won_first = EXCLUDED.won_first,
			won_second = EXCLUDED.won_second,
			won_third = EXCLUDED.won_third,
			race_winnings = EXCLUDED.race_winnings,
			wagers_placed = EXCLUDED.wagers_placed,
			wagers_won = EXCLUDED.wagers_won,
			amount_wagered = EXCLUDED.amount_wagered,
			doping_spend = EXCLUDED.doping_spend,
			cheats_caught = EXCLUDED.cheats_caught,
			mounts_lost = EXCLUDED.mounts_lost,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		stats.Participant.ID, stats.Participant.Name, stats.RacesPlayed, stats.WonFirst,
		stats.WonSecond, stats.WonThird, stats.RaceWinnings, stats.WagersPlaced,
		stats.WagersWon, stats.AmountWagered, stats.DopingSpend,
		stats.CheatsCaught, stats.MountsLost, stats.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert participant stats: %w", err)
	}

	return nil
}

// GetAll retrieves every persisted participant's statistics
func (r *PostgresStatsRepository) GetAll(ctx context.Context) ([]*statistics.ParticipantStats, error) {
	query := `
		SELECT participant_id, name, races_played, won_first, won_second, won_third,
		       race_winnings, wagers_placed, wagers_won, amount_wagered, doping_spend,
		       cheats_caught, mounts_lost, updated_at
		FROM participant_stats
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query participant stats: %w", err)
	}
	defer rows.Close()

	var all []*statistics.ParticipantStats
	for rows.Next() {
		stats, err := scanStats(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, stats)
	}

	return all, rows.Err()
}

// GetByParticipantID retrieves one participant's statistics
func (r *PostgresStatsRepository) GetByParticipantID(ctx context.Context, id int64) (*statistics.ParticipantStats, error) {
	query := `
		SELECT participant_id, name, races_played, won_first, won_second, won_third,
		       race_winnings, wagers_placed, wagers_won, amount_wagered, doping_spend,
		       cheats_caught, mounts_lost, updated_at
		FROM participant_stats WHERE participant_id = $1
	`

	stats, err := scanStats(r.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStats(row rowScanner) (*statistics.ParticipantStats, error) {
	stats := &statistics.ParticipantStats{}
	err := row.Scan(
		&stats.Participant.ID, &stats.Participant.Name, &stats.RacesPlayed, &stats.WonFirst,
		&stats.WonSecond, &stats.WonThird, &stats.RaceWinnings, &stats.WagersPlaced,
		&stats.WagersWon, &stats.AmountWagered, &stats.DopingSpend,
		&stats.CheatsCaught, &stats.MountsLost, &stats.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan participant stats: %w", err)
	}
	return stats, nil
}
