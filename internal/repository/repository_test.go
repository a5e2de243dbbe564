package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/stable-stakes/internal/database"
	"github.com/yourusername/stable-stakes/internal/models"
	"github.com/yourusername/stable-stakes/internal/statistics"
)

// Integration tests; skipped unless the test database from
// config/config.yaml.test is reachable.

func TestRaceRecordRoundTrip(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	require.NoError(t, err)

	rec := &models.RaceRecord{
		ID:         uuid.New(),
		RoomID:     42,
		Outcome:    models.RaceOutcomeSettled,
		Pot:        300,
		Entrants:   5,
		Cheaters:   1,
		Casualties: 1,
		StartedAt:  time.Now().Add(-10 * time.Minute).UTC(),
		EndedAt:    time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, repos.RaceRecord.Create(ctx, rec))

	got, err := repos.RaceRecord.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.RoomID, got.RoomID)
	assert.Equal(t, rec.Outcome, got.Outcome)
	assert.Equal(t, rec.Pot, got.Pot)
}

func TestWagerRecordRoundTrip(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	race := &models.RaceRecord{
		ID:        uuid.New(),
		RoomID:    42,
		Outcome:   models.RaceOutcomeSettled,
		Pot:       100,
		Entrants:  3,
		StartedAt: time.Now().Add(-5 * time.Minute).UTC(),
		EndedAt:   time.Now().UTC(),
	}
	require.NoError(t, repos.RaceRecord.Create(ctx, race))

	won := &models.WagerRecord{
		ID:        uuid.New(),
		RaceID:    race.ID,
		PlacerID:  7,
		TargetID:  8,
		OddsName:  "first",
		Amount:    20,
		Won:       true,
		Payout:    200,
		SettledAt: race.EndedAt,
	}
	lost := &models.WagerRecord{
		ID:        uuid.New(),
		RaceID:    race.ID,
		PlacerID:  8,
		TargetID:  7,
		OddsName:  "second",
		Amount:    15,
		SettledAt: race.EndedAt,
	}
	require.NoError(t, repos.WagerRecord.Create(ctx, won))
	require.NoError(t, repos.WagerRecord.Create(ctx, lost))

	got, err := repos.WagerRecord.GetByRaceID(ctx, race.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, rec := range got {
		if rec.ID == won.ID {
			assert.True(t, rec.Won)
			assert.Equal(t, int64(200), rec.Payout)
			assert.True(t, rec.WasProfitable())
		} else {
			assert.False(t, rec.Won)
			assert.False(t, rec.WasProfitable())
		}
	}
}

func TestRaceRecordNotFound(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = repos.RaceRecord.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStatsUpsertTwice(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats := &statistics.ParticipantStats{
		Participant:  models.Participant{ID: 7, Name: "alice"},
		RacesPlayed:  3,
		WonFirst:     1,
		CheatsCaught: 1,
		MountsLost:   2,
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, repos.Stats.Upsert(ctx, stats))

	stats.RacesPlayed = 4
	require.NoError(t, repos.Stats.Upsert(ctx, stats))

	got, err := repos.Stats.GetByParticipantID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 4, got.RacesPlayed)
	assert.Equal(t, 1, got.WonFirst)
	assert.Equal(t, 1, got.CheatsCaught)
	assert.Equal(t, 2, got.MountsLost)
}
