package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yourusername/stable-stakes/internal/models"
	"github.com/yourusername/stable-stakes/internal/statistics"
)

// RaceRecordRepository defines the interface for race history access
type RaceRecordRepository interface {
	Create(ctx context.Context, rec *models.RaceRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RaceRecord, error)
	GetByRoomID(ctx context.Context, roomID int64, limit int) ([]*models.RaceRecord, error)
	CountByOutcome(ctx context.Context, roomID int64, outcome models.RaceOutcome) (int, error)
}

// WagerRecordRepository defines the interface for the wager audit trail
type WagerRecordRepository interface {
	Create(ctx context.Context, rec *models.WagerRecord) error
	GetByRaceID(ctx context.Context, raceID uuid.UUID) ([]*models.WagerRecord, error)
}

// StatsRepository defines the interface for persisted participant statistics
type StatsRepository interface {
	Upsert(ctx context.Context, stats *statistics.ParticipantStats) error
	GetAll(ctx context.Context) ([]*statistics.ParticipantStats, error)
	GetByParticipantID(ctx context.Context, id int64) (*statistics.ParticipantStats, error)
}
