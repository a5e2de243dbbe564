package repository

import (
	"fmt"

	"github.com/yourusername/stable-stakes/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	RaceRecord  RaceRecordRepository
	WagerRecord WagerRecordRepository
	Stats       StatsRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		RaceRecord:  NewPostgresRaceRecordRepository(db),
		WagerRecord: NewPostgresWagerRecordRepository(db),
		Stats:       NewPostgresStatsRepository(db),
	}, nil
}
