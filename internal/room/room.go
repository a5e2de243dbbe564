// Package room hosts one race lifecycle per chat room: founding,
// joining, betting, doping and the cooldown between races.
package room

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/stable-stakes/internal/bookkeeper"
	"github.com/yourusername/stable-stakes/internal/clock"
	"github.com/yourusername/stable-stakes/internal/config"
	"github.com/yourusername/stable-stakes/internal/models"
	"github.com/yourusername/stable-stakes/internal/race"
)

// Ledger is the currency authority shared by race and bookkeeper.
type Ledger interface {
	race.Ledger
}

// StatsSink combines the race and wager outcome sinks.
type StatsSink interface {
	race.StatsSink
	bookkeeper.StatsSink
}

// Recorder persists the terminal summary of every race and the audit
// rows of its settled wagers.
type Recorder interface {
	SaveRaceRecord(ctx context.Context, rec models.RaceRecord) error
	SaveWagerRecords(ctx context.Context, recs []models.WagerRecord) error
}

// Invalidator drops cached odds history after settlement. Optional.
type Invalidator interface {
	Invalidate()
}

// Room owns at most one active race and enforces the interval between
// consecutive races. Fines and undistributed pot fractions from one
// race seed the pot of the next.
type Room struct {
	mu sync.Mutex

	id       int64
	cfg      *config.RoomConfig
	rng      race.Rand
	clk      clock.Clock
	log      *logrus.Entry
	ledger   Ledger
	history  bookkeeper.History
	stats    StatsSink
	notifier race.Notifier
	recorder Recorder
	inval    Invalidator

	current   *race.Race
	carryOver int64
	banned    map[int64]bool
	lastEnded time.Time
}

// Deps bundles the collaborators shared by every race in the room.
type Deps struct {
	Cfg      *config.RoomConfig
	Rng      race.Rand
	Clock    clock.Clock
	Log      *logrus.Entry
	Ledger   Ledger
	History  bookkeeper.History
	Stats    StatsSink
	// NotifierFor returns the announcement sink for a room. Called
	// once per room, at creation.
	NotifierFor func(roomID int64) race.Notifier
	Recorder    Recorder
	// Invalidator may be nil when history is not cached.
	Invalidator Invalidator
}

// New creates a room with no race running.
func New(id int64, d Deps) *Room {
	return &Room{
		id:       id,
		cfg:      d.Cfg,
		rng:      d.Rng,
		clk:      d.Clock,
		log:      d.Log.WithField("room_id", id),
		ledger:   d.Ledger,
		history:  d.History,
		stats:    d.Stats,
		notifier: d.NotifierFor(id),
		recorder: d.Recorder,
		inval:    d.Invalidator,
	}
}

// OpenRace founds a new race with the founder as first entrant. Fails
// while a race is active or during the post-race cooldown.
func (r *Room) OpenRace(founder models.Participant) (string, error) {
	r.mu.Lock()

	if r.current != nil && r.current.State() != race.StateEnded {
		r.mu.Unlock()
		return "", models.ErrRaceActive
	}
	if wait := r.cooldownLeft(); wait > 0 {
		r.mu.Unlock()
		return "", fmt.Errorf("next race opens in %s: %w", wait.Round(time.Second), models.ErrRaceCooldown)
	}

	provider := bookkeeper.NewRaceOddsProvider(r.history, r.cfg.MaxOdds)
	book := bookkeeper.New(provider, r.ledger, r.stats, r.log, r.cfg.MaxWager, true)

	current := race.New(race.Params{
		RoomID:       r.id,
		Cfg:          r.cfg,
		Rng:          r.rng,
		Clock:        r.clk,
		Log:          r.log,
		Ledger:       r.ledger,
		Book:         book,
		Notifier:     r.notifier,
		Stats:        r.stats,
		StartingPot:  r.carryOver,
		Disqualified: r.banned,
		OnEnded:      r.raceEnded,
	})
	r.current = current
	r.carryOver = 0
	r.mu.Unlock()

	joined, err := current.Admit(founder)
	if err != nil {
		// The founder could not pay the fee; the race still stands for
		// whoever can.
		joined = fmt.Sprintf("(%s could not enter: %v)", founder.Name, err)
	}

	return fmt.Sprintf("📯 A race starts in %d minutes! Entry costs %d. %s",
		r.cfg.PreStartSeconds/60, r.cfg.EntryFee, joined), nil
}

// Join enters the participant into the active race.
func (r *Room) Join(p models.Participant) (string, error) {
	current, err := r.active()
	if err != nil {
		return "", err
	}
	return current.Admit(p)
}

// Dope injects a dose into the participant's own entry.
func (r *Room) Dope(p models.Participant, amount int64) (string, error) {
	current, err := r.active()
	if err != nil {
		return "", err
	}
	return current.Inject(p, amount)
}

// Bet places a wager on another entrant.
func (r *Room) Bet(placer models.Participant, targetName, oddsName string, amount int64) (string, error) {
	current, err := r.active()
	if err != nil {
		return "", err
	}
	return current.PlaceWager(placer, targetName, oddsName, amount)
}

// OddsTable renders the current odds listing.
func (r *Room) OddsTable() (string, error) {
	current, err := r.active()
	if err != nil {
		return "", err
	}
	return bookkeeper.RenderTable(current.Book().Provider()), nil
}

// Bets renders the held wager listing.
func (r *Room) Bets() (string, error) {
	current, err := r.active()
	if err != nil {
		return "", err
	}
	return current.Book().RenderWagers(), nil
}

// Leaderboard renders the current standings.
func (r *Room) Leaderboard() (string, error) {
	current, err := r.active()
	if err != nil {
		return "", err
	}
	return current.LeaderboardText(), nil
}

// RefreshOdds recomputes quotes while the betting period is open.
func (r *Room) RefreshOdds() {
	current, err := r.active()
	if err != nil || current.State() != race.StatePreStart {
		return
	}
	current.Book().Provider().Refresh()
}

// CarryOver returns the pot fraction waiting for the next race.
func (r *Room) CarryOver() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.carryOver
}

// TimeUntilNextRace reports how much of the post-race cooldown is
// still left. Zero means a race may be founded right away.
func (r *Room) TimeUntilNextRace() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cooldownLeft()
}

// Shutdown aborts any active race, refunding held wagers.
func (r *Room) Shutdown() {
	r.mu.Lock()
	current := r.current
	r.mu.Unlock()
	if current != nil {
		current.Abort()
	}
}

func (r *Room) active() (*race.Race, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil || r.current.State() == race.StateEnded {
		return nil, models.ErrNoActiveRace
	}
	return r.current, nil
}

// cooldownLeft returns how long until a new race may be founded.
// Caller holds the lock.
func (r *Room) cooldownLeft() time.Duration {
	if r.lastEnded.IsZero() {
		return 0
	}
	interval := time.Duration(r.cfg.RaceIntervalSecs) * time.Second
	left := interval - r.clk.Now().Sub(r.lastEnded)
	if left < 0 {
		return 0
	}
	return left
}

// raceEnded folds the race result back into room state. Called by the
// race outside its own lock.
func (r *Room) raceEnded(result race.Result) {
	r.mu.Lock()
	r.carryOver += result.CarryOver
	// Caught cheaters sit out exactly the next race.
	r.banned = make(map[int64]bool, len(result.CheaterIDs))
	for _, id := range result.CheaterIDs {
		r.banned[id] = true
	}
	r.lastEnded = r.clk.Now()
	r.current = nil
	r.mu.Unlock()

	if r.inval != nil {
		r.inval.Invalidate()
	}

	if r.recorder != nil {
		rec := result.Record
		wagers := result.Wagers
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			// The race row goes first; the wager rows reference it.
			if err := r.recorder.SaveRaceRecord(ctx, rec); err != nil {
				r.log.WithError(err).Error("Failed to persist race record")
				return
			}
			if len(wagers) == 0 {
				return
			}
			if err := r.recorder.SaveWagerRecords(ctx, wagers); err != nil {
				r.log.WithError(err).Error("Failed to persist wager records")
			}
		}()
	}

	r.log.WithFields(logrus.Fields{
		"outcome":    result.Record.Outcome,
		"carry_over": result.CarryOver,
	}).Info("Race result folded into room")
}
