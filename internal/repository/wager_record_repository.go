package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/yourusername/stable-stakes/internal/database"
	"github.com/yourusername/stable-stakes/internal/models"
)

// PostgresWagerRecordRepository implements WagerRecordRepository for PostgreSQL
type PostgresWagerRecordRepository struct {
	db *database.DB
}

// NewPostgresWagerRecordRepository creates a new wager record repository
func NewPostgresWagerRecordRepository(db *database.DB) WagerRecordRepository {
	return &PostgresWagerRecordRepository{db: db}
}

// Create inserts a settled wager's audit row
func (r *PostgresWagerRecordRepository) Create(ctx context.Context, rec *models.WagerRecord) error {
	query := `
		INSERT INTO wager_records (id, race_id, placer_id, target_id, odds_name, amount, won, payout, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		rec.ID, rec.RaceID, rec.PlacerID, rec.TargetID, rec.OddsName, rec.Amount,
		rec.Won, rec.Payout, rec.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create wager record: %w", err)
	}

	return nil
}

// GetByRaceID retrieves every wager settled in one race
func (r *PostgresWagerRecordRepository) GetByRaceID(ctx context.Context, raceID uuid.UUID) ([]*models.WagerRecord, error) {
	query := `
		SELECT id, race_id, placer_id, target_id, odds_name, amount, won, payout, settled_at
		FROM wager_records
		WHERE race_id = $1
		ORDER BY settled_at DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wager records: %w", err)
	}
	defer rows.Close()

	var records []*models.WagerRecord
	for rows.Next() {
		rec := &models.WagerRecord{}
		err := rows.Scan(
			&rec.ID, &rec.RaceID, &rec.PlacerID, &rec.TargetID, &rec.OddsName,
			&rec.Amount, &rec.Won, &rec.Payout, &rec.SettledAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wager record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
