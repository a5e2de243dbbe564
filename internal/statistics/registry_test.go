package statistics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/stable-stakes/internal/bookkeeper"
	"github.com/yourusername/stable-stakes/internal/models"
)

var (
	rider  = models.Participant{ID: 1, Name: "rider"}
	punter = models.Participant{ID: 2, Name: "punter"}
)

func TestWinRateSplitsByOutcome(t *testing.T) {
	r := NewRegistry()

	r.RecordRaceResult(rider, 1, 60)
	r.RecordRaceResult(rider, 2, 30)
	r.RecordRaceResult(rider, 0, 0)
	r.RecordRaceResult(rider, 0, 0)

	assert.Equal(t, 0.25, r.WinRate(rider.ID, bookkeeper.OutcomeFirst))
	assert.Equal(t, 0.25, r.WinRate(rider.ID, bookkeeper.OutcomeSecond))
	assert.Equal(t, 0.0, r.WinRate(rider.ID, bookkeeper.OutcomeThird))
}

func TestWinRateUnknownParticipant(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0.0, r.WinRate(99, bookkeeper.OutcomeFirst))

	// Doping spend alone does not make a raced participant.
	r.RecordDoping(rider, 50)
	assert.Equal(t, 0.0, r.WinRate(rider.ID, bookkeeper.OutcomeFirst))
}

func TestSnapshotOrdering(t *testing.T) {
	r := NewRegistry()

	r.RecordRaceResult(rider, 2, 30)
	r.RecordRaceResult(punter, 1, 60)

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, punter.ID, snapshot[0].Participant.ID)
	assert.Equal(t, rider.ID, snapshot[1].Participant.ID)
}

func TestWagerAndDopingAccumulation(t *testing.T) {
	r := NewRegistry()

	r.RecordWagerOutcome(punter, true, 20)
	r.RecordWagerOutcome(punter, false, 35)
	r.RecordDoping(punter, 100)

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 1)
	s := snapshot[0]
	assert.Equal(t, 2, s.WagersPlaced)
	assert.Equal(t, 1, s.WagersWon)
	assert.Equal(t, int64(55), s.AmountWagered)
	assert.Equal(t, int64(100), s.DopingSpend)

	// Wagers never count as played races.
	assert.Zero(t, s.RacesPlayed)
}

func TestCheatAndDeathCounters(t *testing.T) {
	r := NewRegistry()

	r.RecordCheaterCaught(rider)
	r.RecordCheaterCaught(rider)
	r.RecordMountDeath(rider)

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, 2, snapshot[0].CheatsCaught)
	assert.Equal(t, 1, snapshot[0].MountsLost)

	// Neither counter makes a raced participant.
	assert.Equal(t, 0.0, r.WinRate(rider.ID, bookkeeper.OutcomeFirst))
}

func TestLoadRestoresPersistedRows(t *testing.T) {
	r := NewRegistry()

	r.Load(ParticipantStats{
		Participant:  rider,
		RacesPlayed:  8,
		WonFirst:     2,
		RaceWinnings: 120,
	})

	assert.Equal(t, 0.25, r.WinRate(rider.ID, bookkeeper.OutcomeFirst))

	// Fresh results accumulate on top of the restored row.
	r.RecordRaceResult(rider, 1, 60)
	snapshot := r.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, 9, snapshot[0].RacesPlayed)
	assert.Equal(t, 3, snapshot[0].WonFirst)
	assert.Equal(t, int64(180), snapshot[0].RaceWinnings)
}

func TestPodiums(t *testing.T) {
	s := ParticipantStats{WonFirst: 2, WonSecond: 1, WonThird: 3}
	assert.Equal(t, 6, s.Podiums())
}

func TestRenderTable(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "Nobody has raced yet.", r.RenderTable())

	r.RecordRaceResult(rider, 1, 60)
	table := r.RenderTable()
	assert.Contains(t, table, "🏆 Stable standings:")
	assert.Contains(t, table, "1. rider: 1 races, 1🥇")
}

type countingHistory struct {
	calls int
	rate  float64
}

func (h *countingHistory) WinRate(int64, bookkeeper.Outcome) float64 {
	h.calls++
	return h.rate
}

func TestCachedHistoryMemoizes(t *testing.T) {
	source := &countingHistory{rate: 0.5}
	cached := NewCachedHistory(source, time.Minute)

	assert.Equal(t, 0.5, cached.WinRate(1, bookkeeper.OutcomeFirst))
	assert.Equal(t, 0.5, cached.WinRate(1, bookkeeper.OutcomeFirst))
	assert.Equal(t, 1, source.calls)

	// Distinct participant or outcome misses.
	cached.WinRate(1, bookkeeper.OutcomeSecond)
	cached.WinRate(2, bookkeeper.OutcomeFirst)
	assert.Equal(t, 3, source.calls)
}

func TestCachedHistoryInvalidate(t *testing.T) {
	source := &countingHistory{rate: 0.25}
	cached := NewCachedHistory(source, time.Minute)

	cached.WinRate(1, bookkeeper.OutcomeFirst)
	source.rate = 0.75
	assert.Equal(t, 0.25, cached.WinRate(1, bookkeeper.OutcomeFirst))

	cached.Invalidate()
	assert.Equal(t, 0.75, cached.WinRate(1, bookkeeper.OutcomeFirst))
}
