// Package service contains the background maintenance workers running
// next to the race rooms.
package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/stable-stakes/internal/repository"
	"github.com/yourusername/stable-stakes/internal/statistics"
)

// MaintenanceService flushes the in-memory statistics registry to the
// database and restores it at startup. Race settlement stays fast by
// never waiting on the database; durability comes from this flush.
type MaintenanceService struct {
	registry *statistics.Registry
	repo     repository.StatsRepository
	log      *logrus.Entry
}

// NewMaintenanceService creates the maintenance worker.
func NewMaintenanceService(registry *statistics.Registry, repo repository.StatsRepository, log *logrus.Entry) *MaintenanceService {
	return &MaintenanceService{
		registry: registry,
		repo:     repo,
		log:      log.WithField("component", "maintenance"),
	}
}

// Restore loads persisted statistics into the registry. Called once
// before the first race.
func (m *MaintenanceService) Restore(ctx context.Context) error {
	all, err := m.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore statistics: %w", err)
	}

	for _, s := range all {
		m.registry.Load(*s)
	}

	m.log.WithField("participants", len(all)).Info("Statistics restored")
	return nil
}

// FlushStats persists every participant's current statistics. Partial
// failures are logged and the flush continues; the next run retries.
func (m *MaintenanceService) FlushStats(ctx context.Context) error {
	snapshot := m.registry.Snapshot()

	var failed int
	for i := range snapshot {
		if err := m.repo.Upsert(ctx, &snapshot[i]); err != nil {
			failed++
			m.log.WithError(err).WithField("participant_id", snapshot[i].Participant.ID).
				Error("Failed to flush participant stats")
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to flush %d of %d participants", failed, len(snapshot))
	}

	m.log.WithField("participants", len(snapshot)).Debug("Statistics flushed")
	return nil
}
