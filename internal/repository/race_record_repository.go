package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/stable-stakes/internal/database"
	"github.com/yourusername/stable-stakes/internal/models"
)

// PostgresRaceRecordRepository implements RaceRecordRepository for PostgreSQL
type PostgresRaceRecordRepository struct {
	db *database.DB
}

// NewPostgresRaceRecordRepository creates a new race record repository
func NewPostgresRaceRecordRepository(db *database.DB) RaceRecordRepository {
	return &PostgresRaceRecordRepository{db: db}
}

// Create inserts a finished race's summary
func (r *PostgresRaceRecordRepository) Create(ctx context.Context, rec *models.RaceRecord) error {
	query := `
		INSERT INTO race_records (id, room_id, outcome, pot, entrants, cheaters, casualties, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		rec.ID, rec.RoomID, rec.Outcome, rec.Pot, rec.Entrants, rec.Cheaters, rec.Casualties,
		rec.StartedAt, rec.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create race record: %w", err)
	}

	return nil
}

// GetByID retrieves a race record by ID
func (r *PostgresRaceRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RaceRecord, error) {
	query := `
		SELECT id, room_id, outcome, pot, entrants, cheaters, casualties, started_at, ended_at
		FROM race_records WHERE id = $1
	`

	rec := &models.RaceRecord{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.RoomID, &rec.Outcome, &rec.Pot, &rec.Entrants, &rec.Cheaters,
		&rec.Casualties, &rec.StartedAt, &rec.EndedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get race record: %w", err)
	}

	return rec, nil
}

// GetByRoomID retrieves the most recent races of a room
func (r *PostgresRaceRecordRepository) GetByRoomID(ctx context.Context, roomID int64, limit int) ([]*models.RaceRecord, error) {
	query := `
		SELECT id, room_id, outcome, pot, entrants, cheaters, casualties, started_at, ended_at
		FROM race_records
		WHERE room_id = $1
		ORDER BY ended_at DESC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query race records: %w", err)
	}
	defer rows.Close()

	var records []*models.RaceRecord
	for rows.Next() {
		rec := &models.RaceRecord{}
		err := rows.Scan(
			&rec.ID, &rec.RoomID, &rec.Outcome, &rec.Pot, &rec.Entrants, &rec.Cheaters,
			&rec.Casualties, &rec.StartedAt, &rec.EndedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan race record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// CountByOutcome counts a room's races with the given outcome
func (r *PostgresRaceRecordRepository) CountByOutcome(ctx context.Context, roomID int64, outcome models.RaceOutcome) (int, error) {
	query := `SELECT COUNT(*) FROM race_records WHERE room_id = $1 AND outcome = $2`

	var count int
	err := r.db.GetPool().QueryRow(ctx, query, roomID, outcome).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count race records: %w", err)
	}

	return count, nil
}
