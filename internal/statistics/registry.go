// Package statistics aggregates per-participant race and wager
// outcomes. The registry doubles as the history feed the odds provider
// derives payouts from.
package statistics

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yourusername/stable-stakes/internal/bookkeeper"
	"github.com/yourusername/stable-stakes/internal/models"
)

// ParticipantStats is the accumulated record of one participant.
type ParticipantStats struct {
	Participant   models.Participant `json:"participant"`
	RacesPlayed   int                `json:"races_played"`
	WonFirst      int                `json:"won_first"`
	WonSecond     int                `json:"won_second"`
	WonThird      int                `json:"won_third"`
	RaceWinnings  int64              `json:"race_winnings"`
	WagersPlaced  int                `json:"wagers_placed"`
	WagersWon     int                `json:"wagers_won"`
	AmountWagered int64              `json:"amount_wagered"`
	DopingSpend   int64              `json:"doping_spend"`
	CheatsCaught  int                `json:"cheats_caught"`
	MountsLost    int                `json:"mounts_lost"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// Podiums returns the total number of top-three finishes.
func (s *ParticipantStats) Podiums() int {
	return s.WonFirst + s.WonSecond + s.WonThird
}

// Registry is the in-memory statistics store.
type Registry struct {
	mu    sync.Mutex
	stats map[int64]*ParticipantStats
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{stats: make(map[int64]*ParticipantStats)}
}

func (r *Registry) get(p models.Participant) *ParticipantStats {
	s, ok := r.stats[p.ID]
	if !ok {
		s = &ParticipantStats{Participant: p}
		r.stats[p.ID] = s
	}
	s.Participant.Name = p.Name
	return s
}

// RecordRaceResult records one finished race for a participant.
// position is 1..3 for podium places, 0 otherwise.
func (r *Registry) RecordRaceResult(p models.Participant, position int, winnings int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.get(p)
	s.RacesPlayed++
	switch position {
	case 1:
		s.WonFirst++
	case 2:
		s.WonSecond++
	case 3:
		s.WonThird++
	}
	s.RaceWinnings += winnings
	s.UpdatedAt = time.Now()
}

// RecordWagerOutcome records a settled wager.
func (r *Registry) RecordWagerOutcome(p models.Participant, won bool, amount int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.get(p)
	s.WagersPlaced++
	if won {
		s.WagersWon++
	}
	s.AmountWagered += amount
	s.UpdatedAt = time.Now()
}

// RecordDoping records currency spent on doses.
func (r *Registry) RecordDoping(p models.Participant, amount int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.get(p)
	s.DopingSpend += amount
	s.UpdatedAt = time.Now()
}

// RecordCheaterCaught records a disqualification by the jury.
func (r *Registry) RecordCheaterCaught(p models.Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.get(p)
	s.CheatsCaught++
	s.UpdatedAt = time.Now()
}

// RecordMountDeath records a mount lost to an overdose.
func (r *Registry) RecordMountDeath(p models.Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.get(p)
	s.MountsLost++
	s.UpdatedAt = time.Now()
}

// WinRate returns the participant's historical rate for the outcome.
// Participants with no recorded races rate 0, which quotes them at the
// maximum payout.
func (r *Registry) WinRate(participantID int64, outcome bookkeeper.Outcome) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stats[participantID]
	if !ok || s.RacesPlayed == 0 {
		return 0
	}

	var won int
	switch outcome {
	case bookkeeper.OutcomeFirst:
		won = s.WonFirst
	case bookkeeper.OutcomeSecond:
		won = s.WonSecond
	case bookkeeper.OutcomeThird:
		won = s.WonThird
	}
	return float64(won) / float64(s.RacesPlayed)
}

// Snapshot returns a copy of every participant's stats, sorted by
// race winnings descending.
func (r *Registry) Snapshot() []ParticipantStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ParticipantStats, 0, len(r.stats))
	for _, s := range r.stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RaceWinnings != out[j].RaceWinnings {
			return out[i].RaceWinnings > out[j].RaceWinnings
		}
		return out[i].Participant.ID < out[j].Participant.ID
	})
	return out
}

// Load replaces a participant's stats, used when restoring persisted
// rows at startup.
func (r *Registry) Load(s ParticipantStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := s
	r.stats[s.Participant.ID] = &copied
}

// RenderTable writes the standings for the stats command.
func (r *Registry) RenderTable() string {
	snapshot := r.Snapshot()
	if len(snapshot) == 0 {
		return "Nobody has raced yet."
	}

	msg := "🏆 Stable standings:\n"
	for i, s := range snapshot {
		msg += fmt.Sprintf("%d. %s: %d races, %d🥇 %d🥈 %d🥉, %d won racing, %d/%d bets won\n",
			i+1, s.Participant.Name, s.RacesPlayed, s.WonFirst, s.WonSecond, s.WonThird,
			s.RaceWinnings, s.WagersWon, s.WagersPlaced)
	}
	return msg
}
