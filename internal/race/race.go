package race

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/stable-stakes/internal/bookkeeper"
	"github.com/yourusername/stable-stakes/internal/clock"
	"github.com/yourusername/stable-stakes/internal/config"
	"github.com/yourusername/stable-stakes/internal/metrics"
	"github.com/yourusername/stable-stakes/internal/models"
)

// Balance delta reason tags for race-side currency movements.
const (
	ReasonEntryFee    = "horseraces.entryfee"
	ReasonDose        = "horseraces.dope"
	ReasonWinnings    = "horseraces.winnings"
	ReasonCheaterFine = "horseraces.cheaterfine"
	ReasonSalary      = "horseraces.handlersalary"
)

// Podium shares of the pot, first through third place.
var podiumShares = []float64{0.6, 0.3, 0.1}

// State is the lifecycle phase of a race.
type State int

const (
	// StatePreStart accepts entries, wagers and doses.
	StatePreStart State = iota
	// StateRunning advances rounds; doses are still allowed, entries
	// and wagers are not.
	StateRunning
	// StateEnded is terminal. Every operation is rejected.
	StateEnded
)

func (s State) String() string {
	switch s {
	case StatePreStart:
		return "pre-start"
	case StateRunning:
		return "running"
	default:
		return "ended"
	}
}

// Ledger is the external currency authority seen by the race engine.
type Ledger interface {
	AlterBalance(p models.Participant, delta int64, reason string)
	BalanceOf(p models.Participant) int64
}

// Notifier receives race chatter. Announce appends a message to the
// room; Leaderboard may edit the previous standings message in place.
type Notifier interface {
	Announce(text string)
	Leaderboard(text string)
}

// StatsSink records per-participant race outcomes.
type StatsSink interface {
	RecordRaceResult(p models.Participant, position int, winnings int64)
	RecordDoping(p models.Participant, amount int64)
	RecordCheaterCaught(p models.Participant)
	RecordMountDeath(p models.Participant)
}

// Result summarizes an ended race for the owning room.
type Result struct {
	Record     models.RaceRecord
	Podium     []models.Participant
	CheaterIDs []int64
	// CarryOver is currency the race took in but did not pay out:
	// the whole pot on cancellation, otherwise cheater fines,
	// unfilled podium shares and rounding remainders. The room folds
	// it into the next race's pot.
	CarryOver int64
	Rounds    int
	// Wagers are the per-wager audit rows from settlement, empty on
	// cancellation.
	Wagers []models.WagerRecord
}

// Params bundles the collaborators a race needs.
type Params struct {
	RoomID   int64
	Cfg      *config.RoomConfig
	Rng      Rand
	Clock    clock.Clock
	Log      *logrus.Entry
	Ledger   Ledger
	Book     *bookkeeper.Bookkeeper
	Notifier Notifier
	Stats    StatsSink
	// StartingPot is carried over from a previous race.
	StartingPot int64
	// Disqualified lists participants banned from entering, the
	// cheaters caught in the previous race.
	Disqualified map[int64]bool
	// OnEnded is called exactly once, after settlement or
	// cancellation, outside the race lock.
	OnEnded func(Result)
}

// Race is one timer-driven race from founding to settlement. All state
// transitions happen under a single mutex; timers re-arm themselves so
// at most one callback is pending at any time.
type Race struct {
	mu sync.Mutex

	id       uuid.UUID
	roomID   int64
	cfg      *config.RoomConfig
	rng      Rand
	clk      clock.Clock
	log      *logrus.Entry
	ledger   Ledger
	book     *bookkeeper.Bookkeeper
	notifier Notifier
	stats    StatsSink
	onEnded  func(Result)

	state     State
	banned    map[int64]bool
	entries   map[int64]*Entry
	order     []int64
	pot       int64
	round     int
	finishSeq int
	foundedAt time.Time
	startedAt time.Time
	timer     clock.Timer
}

// New founds a race in the pre-start phase. Two filler entrants are
// seeded immediately so the field is never smaller than three once the
// founder joins; they leave again as real participants enter. The
// pre-start timer is armed before New returns.
func New(p Params) *Race {
	r := &Race{
		id:       uuid.New(),
		roomID:   p.RoomID,
		cfg:      p.Cfg,
		rng:      p.Rng,
		clk:      p.Clock,
		ledger:   p.Ledger,
		book:     p.Book,
		notifier: p.Notifier,
		stats:    p.Stats,
		onEnded:  p.OnEnded,
		state:    StatePreStart,
		banned:   p.Disqualified,
		entries:  make(map[int64]*Entry),
		pot:      p.StartingPot,
	}
	r.log = p.Log.WithField("race_id", r.id.String())
	r.foundedAt = r.clk.Now()

	r.seedNPC(models.NPCFirst)
	r.seedNPC(models.NPCSecond)

	metrics.ActiveRaces.Inc()
	metrics.CurrentPot.Set(float64(r.pot))

	r.timer = r.clk.AfterFunc(time.Duration(r.cfg.PreStartSeconds)*time.Second, r.start)
	return r
}

// ID returns the race's unique identifier.
func (r *Race) ID() uuid.UUID { return r.id }

// Book returns the bookkeeper running this race's betting period.
func (r *Race) Book() *bookkeeper.Bookkeeper { return r.book }

// State returns the current lifecycle phase.
func (r *Race) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Pot returns the current prize pool.
func (r *Race) Pot() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pot
}

// Round returns the number of completed rounds.
func (r *Race) Round() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round
}

// Entries returns the entries in admission order.
func (r *Race) Entries() []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orderedEntries()
}

// Entered reports whether the participant has an entry.
func (r *Race) Entered(p models.Participant) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[p.ID]
	return ok
}

// Admit enters a participant into the race. The entry fee is deducted
// up front and added to the pot; a mount and handler are drawn from
// the stable. Each real admission displaces one filler entrant while
// any remain.
func (r *Race) Admit(p models.Participant) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case StateRunning:
		return "", models.ErrEntriesClosed
	case StateEnded:
		return "", models.ErrRaceEnded
	}

	if r.banned[p.ID] {
		return "", models.ErrDisqualified
	}
	if _, ok := r.entries[p.ID]; ok {
		return "", models.ErrAlreadyEntered
	}

	fee := r.cfg.EntryFee
	if r.ledger.BalanceOf(p) < fee {
		return "", models.ErrInsufficientBalance
	}

	entry, err := r.addEntry(p)
	if err != nil {
		return "", err
	}

	r.ledger.AlterBalance(p, -fee, ReasonEntryFee)
	r.pot += fee
	// Filler entrants yield their place one by one, but never below a
	// field of three.
	if len(r.entries) > 3 {
		r.dismissNPC()
	}

	metrics.EntriesAdmittedTotal.Inc()
	metrics.CurrentPot.Set(float64(r.pot))

	r.log.WithFields(logrus.Fields{
		"participant": p.ID,
		"mount":       entry.Mount().Name(),
		"pot":         r.pot,
	}).Info("Participant admitted")

	return fmt.Sprintf("@%s enters the race on 🐴 %s, ridden by %s. The pot is now %d.",
		p.Name, entry.Mount().Name(), entry.Handler().Name(), r.pot), nil
}

// Inject buys a dose for the participant's own entry. The handler runs
// a skill check; a fumbled injection lands in the handler instead of
// the mount. Allowed during pre-start and while the race runs.
func (r *Race) Inject(p models.Participant, amount int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateEnded {
		return "", models.ErrRaceEnded
	}
	entry, ok := r.entries[p.ID]
	if !ok {
		return "", models.ErrNotEntered
	}
	if entry.Dead() {
		return "", models.ErrMountDead
	}
	if amount <= 0 {
		return "", models.ErrNonPositiveAmount
	}
	if r.ledger.BalanceOf(p) < amount {
		return "", models.ErrInsufficientBalance
	}

	r.ledger.AlterBalance(p, -amount, ReasonDose)
	r.pot += amount
	metrics.CurrentPot.Set(float64(r.pot))

	dose := NewDose(amount, r.pot)
	handler := entry.Handler()

	var msg string
	if handler.TryInject(r.rng) {
		entry.Mount().Inject(dose)
		msg = pickText(r.rng, injectSuccessTexts, p.Name, entry.Mount().Name())
	} else {
		handler.Inject(dose)
		msg = pickText(r.rng, injectFumbleTexts, handler.Name(), handler.Pronoun(PronounReflexive))
	}

	r.stats.RecordDoping(p, amount)
	metrics.DosesInjectedTotal.Inc()

	r.log.WithFields(logrus.Fields{
		"participant": p.ID,
		"amount":      amount,
		"pot":         r.pot,
	}).Info("Dose injected")

	return msg, nil
}

// PlaceWager routes a bet to the bookkeeper. Wagers close when the
// race starts, and filler entrants cannot be bet on.
func (r *Race) PlaceWager(placer models.Participant, targetName, oddsName string, amount int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case StateRunning:
		return "", models.ErrWagersClosed
	case StateEnded:
		return "", models.ErrRaceEnded
	}

	target, ok := r.findEntrant(targetName)
	if !ok || target.IsNPC() {
		return "", fmt.Errorf("'%s' is not racing: %w", targetName, models.ErrNotEntered)
	}

	// The state check and the bookkeeper charge share the critical
	// section, so a wager can never slip in after the start timer has
	// closed the betting period.
	return r.book.PlaceWager(placer, target, oddsName, amount)
}

// LeaderboardText renders the current standings.
func (r *Race) LeaderboardText() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaderboardLocked()
}

// Abort cancels the race regardless of phase, refunding wagers. Used
// on shutdown.
func (r *Race) Abort() {
	r.mu.Lock()
	if r.state == StateEnded {
		r.mu.Unlock()
		return
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.mu.Unlock()
	r.cancel("The race was called off.")
}

func (r *Race) seedNPC(p models.Participant) {
	if _, err := r.addEntry(p); err != nil {
		// The stable holds far more mounts than filler entrants; this
		// can only mean corrupted state.
		panic(fmt.Sprintf("race: seeding filler entrant: %v", err))
	}
}

// addEntry draws a free mount and a handler and registers the odds.
// Caller holds the lock.
func (r *Race) addEntry(p models.Participant) (*Entry, error) {
	taken := make(map[string]bool, len(r.entries))
	for _, e := range r.entries {
		taken[e.Mount().Name()] = true
	}
	mount, ok := PickMount(r.rng, taken)
	if !ok {
		return nil, models.ErrNoMountsLeft
	}

	entry := NewEntry(p, mount, NewDefaultHandler(r.rng), r.cfg.TrackDistance)
	r.entries[p.ID] = entry
	r.order = append(r.order, p.ID)
	// Filler entrants cannot be bet on, so they never enter the odds
	// table.
	if !p.IsNPC() {
		r.book.Register(p)
	}
	return entry, nil
}

// dismissNPC removes one filler entrant, freeing its mount. Caller
// holds the lock.
func (r *Race) dismissNPC() {
	for i, id := range r.order {
		if id >= 0 {
			continue
		}
		delete(r.entries, id)
		r.order = append(r.order[:i], r.order[i+1:]...)
		return
	}
}

func (r *Race) findEntrant(name string) (models.Participant, bool) {
	for _, e := range r.entries {
		if e.Participant().Name == name {
			return e.Participant(), true
		}
	}
	return models.Participant{}, false
}

func (r *Race) orderedEntries() []*Entry {
	out := make([]*Entry, 0, len(r.entries))
	for _, id := range r.order {
		out = append(out, r.entries[id])
	}
	return out
}

// rankedEntries sorts by distance covered, admission order breaking
// ties. Finished entries carry an artificial lead encoding their
// finishing order, so the sort is total. Caller holds the lock.
func (r *Race) rankedEntries() []*Entry {
	ranked := r.orderedEntries()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance() > ranked[j].Distance()
	})
	return ranked
}

func (r *Race) leaderboardLocked() string {
	msg := fmt.Sprintf("🏇 Round %d\n", r.round)
	for _, e := range r.rankedEntries() {
		msg += e.String() + "\n"
	}
	return msg
}

// start fires when the pre-start period elapses.
func (r *Race) start() {
	r.mu.Lock()
	if r.state != StatePreStart {
		r.mu.Unlock()
		return
	}
	r.state = StateRunning
	r.startedAt = r.clk.Now()
	r.round = 0

	for i, e := range r.rankedEntries() {
		e.SetRank(i)
	}
	board := r.leaderboardLocked()
	r.timer = r.clk.AfterFunc(time.Duration(r.cfg.RoundSeconds)*time.Second, r.tick)
	r.mu.Unlock()

	metrics.RacesStartedTotal.Inc()
	r.notifier.Announce("🏁 They're off! No more entries or bets.")
	r.notifier.Leaderboard(board)
	r.log.Info("Race started")
}

// tick advances one round. It re-arms itself until every living entry
// has crossed the line, then hands over to the settlement timer.
func (r *Race) tick() {
	r.mu.Lock()
	if r.state != StateRunning {
		r.mu.Unlock()
		return
	}
	r.round++

	// A mount can drop dead under the doses mid-round; deaths are
	// detected per entry so each one is recorded exactly once.
	deaths := make([]*Entry, 0)
	for _, e := range r.orderedEntries() {
		wasDead := e.Dead()
		e.Advance(r.rng, float64(r.cfg.RoundSeconds))
		if !wasDead && e.Dead() {
			deaths = append(deaths, e)
		}
	}

	// Entries crossing the line this round finish in distance order.
	crossed := make([]*Entry, 0)
	for _, e := range r.rankedEntries() {
		if !e.Finished() && e.ReachedFinish() {
			crossed = append(crossed, e)
		}
	}
	for _, e := range crossed {
		r.finishSeq++
		e.MarkFinished(r.finishSeq)
	}

	for _, e := range r.entries {
		e.AgeDoses()
	}

	if len(deaths) > 0 {
		metrics.MountsDiedTotal.Add(float64(len(deaths)))
		for _, e := range deaths {
			r.stats.RecordMountDeath(e.Participant())
		}
	}

	for i, e := range r.rankedEntries() {
		e.SetRank(i)
	}
	board := r.leaderboardLocked()

	racing := false
	for _, e := range r.entries {
		if !e.Finished() && !e.Dead() {
			racing = true
			break
		}
	}

	if racing {
		r.timer = r.clk.AfterFunc(time.Duration(r.cfg.RoundSeconds)*time.Second, r.tick)
	} else {
		r.timer = r.clk.AfterFunc(time.Duration(r.cfg.SettleDelaySeconds)*time.Second, r.settle)
	}
	r.mu.Unlock()

	r.notifier.Leaderboard(board)
	for _, e := range deaths {
		r.notifier.Announce(pickText(r.rng, mountDeathTexts, e.Mount().Name(), e.Participant().Name))
	}
}

// settle ends the race: a last overdose sweep, the cancellation check,
// the anti-cheat pass, the podium payout and finally wager settlement.
func (r *Race) settle() {
	r.mu.Lock()
	if r.state != StateRunning {
		r.mu.Unlock()
		return
	}

	// Mounts can still drop dead on the cool-down walk.
	for _, e := range r.orderedEntries() {
		wasDead := e.Dead()
		e.Mount().OverdoseCheck(r.rng)
		if !wasDead && e.Dead() {
			metrics.MountsDiedTotal.Inc()
			r.stats.RecordMountDeath(e.Participant())
		}
	}

	// Filler entrants neither die nor count toward a contest: the gate
	// looks at real entrants only, so a two-entrant field is cancelled
	// no matter how many fillers padded it out.
	entrants, casualties := 0, 0
	for _, e := range r.entries {
		if e.Participant().IsNPC() {
			continue
		}
		entrants++
		if e.Dead() {
			casualties++
		}
	}

	if casualties*2 >= entrants || entrants-casualties < 3 {
		reason := fmt.Sprintf("🚫 The race is cancelled: only %d of %d mounts survived. All bets are refunded; the pot rolls over.",
			entrants-casualties, entrants)
		if casualties == 0 {
			reason = "🚫 The race is cancelled: too few contenders for a fair finish. All bets are refunded; the pot rolls over."
		}
		r.mu.Unlock()
		r.cancel(reason)
		return
	}

	msg, result := r.settleLocked(casualties)
	r.mu.Unlock()

	metrics.RacesSettledTotal.Inc()
	metrics.ActiveRaces.Dec()
	metrics.CurrentPot.Set(0)
	metrics.RaceDuration.Observe(result.Record.EndedAt.Sub(r.startedAt).Seconds())
	metrics.RaceRounds.Observe(float64(result.Rounds))

	r.notifier.Announce(msg)
	betMsg, wagerRecords := r.book.Settle(result.finisherOrder)
	if betMsg != "" {
		r.notifier.Announce(betMsg)
	}
	for i := range wagerRecords {
		wagerRecords[i].RaceID = r.id
		wagerRecords[i].SettledAt = result.Record.EndedAt
	}
	result.Result.Wagers = wagerRecords
	if r.onEnded != nil {
		r.onEnded(result.Result)
	}
	r.log.WithFields(logrus.Fields{
		"pot":        result.Record.Pot,
		"cheaters":   result.Record.Cheaters,
		"casualties": result.Record.Casualties,
		"carry_over": result.CarryOver,
	}).Info("Race settled")
}

type settlement struct {
	Result
	finisherOrder []models.Participant
}

// settleLocked runs the payout under the lock and returns the report.
func (r *Race) settleLocked(casualties int) (string, settlement) {
	r.state = StateEnded
	now := r.clk.Now()

	var (
		carryOver  int64
		cheaterIDs []int64
		msg        string
	)

	// The cancellation gate ran first, so only real entrants remain
	// in a field this large.
	ranked := r.rankedEntries()

	// The jury inspects every surviving doped entry. A caught cheater
	// forfeits the podium and is fined one first-place share, taken in
	// full even if that drives the balance negative.
	fine := int64(float64(r.pot) * podiumShares[0])
	for _, e := range ranked {
		p := e.Participant()
		if e.Dead() || e.DoseCount() == 0 {
			continue
		}
		if e.DetectCheating(r.rng) {
			e.MarkCheater()
			cheaterIDs = append(cheaterIDs, p.ID)
			r.ledger.AlterBalance(p, -fine, ReasonCheaterFine)
			carryOver += fine
			r.stats.RecordCheaterCaught(p)
			metrics.CheatersCaughtTotal.Inc()
			msg += pickText(r.rng, cheaterCaughtTexts, "@"+p.Name) + "\n"
		}
	}

	// Wagers settle against the living, non-disqualified finishers
	// only; a caught cheater cannot win a bet for anyone.
	finisherOrder := make([]models.Participant, 0, len(ranked))
	for _, e := range ranked {
		if e.Dead() || e.CaughtCheating() {
			continue
		}
		finisherOrder = append(finisherOrder, e.Participant())
	}

	// Podium: the first three of those finishers.
	podium := finisherOrder
	if len(podium) > len(podiumShares) {
		podium = podium[:len(podiumShares)]
	}

	paid := int64(0)
	medals := []string{"🥇", "🥈", "🥉"}
	for i, p := range podium {
		share := int64(float64(r.pot) * podiumShares[i])
		r.ledger.AlterBalance(p, share, ReasonWinnings)
		paid += share
		r.stats.RecordRaceResult(p, i+1, share)
		msg += fmt.Sprintf("%s @%s wins %d!\n", medals[i], p.Name, share)
	}
	// Rounding remainders and unfilled podium places roll over too.
	carryOver += r.pot - paid

	// Entries outside the podium still count as a played race.
	podiumIDs := make(map[int64]bool, len(podium))
	for _, p := range podium {
		podiumIDs[p.ID] = true
	}
	for _, e := range ranked {
		p := e.Participant()
		if podiumIDs[p.ID] {
			continue
		}
		r.stats.RecordRaceResult(p, 0, 0)
	}

	// Handlers collect their salary, capped at what the owner can pay.
	for _, e := range r.orderedEntries() {
		p := e.Participant()
		salary := e.Handler().Salary()
		if bal := r.ledger.BalanceOf(p); bal < salary {
			salary = bal
		}
		if salary > 0 {
			r.ledger.AlterBalance(p, -salary, ReasonSalary)
		}
	}

	record := models.RaceRecord{
		ID:         r.id,
		RoomID:     r.roomID,
		Outcome:    models.RaceOutcomeSettled,
		Pot:        r.pot,
		Entrants:   len(r.entries),
		Cheaters:   len(cheaterIDs),
		Casualties: casualties,
		StartedAt:  r.startedAt,
		EndedAt:    now,
	}

	return msg, settlement{
		Result: Result{
			Record:     record,
			Podium:     podium,
			CheaterIDs: cheaterIDs,
			CarryOver:  carryOver,
			Rounds:     r.round,
		},
		finisherOrder: finisherOrder,
	}
}

// cancel refunds every wager and rolls the whole pot over. Must be
// called without the lock held.
func (r *Race) cancel(reason string) {
	r.mu.Lock()
	if r.state == StateEnded {
		r.mu.Unlock()
		return
	}
	r.state = StateEnded
	now := r.clk.Now()
	started := r.startedAt
	if started.IsZero() {
		started = r.foundedAt
	}

	// Filler entrants do not count toward the record.
	entrants, casualties := 0, 0
	for _, e := range r.entries {
		if e.Participant().IsNPC() {
			continue
		}
		entrants++
		if e.Dead() {
			casualties++
		}
	}

	record := models.RaceRecord{
		ID:         r.id,
		RoomID:     r.roomID,
		Outcome:    models.RaceOutcomeCancelled,
		Pot:        r.pot,
		Entrants:   entrants,
		Casualties: casualties,
		StartedAt:  started,
		EndedAt:    now,
	}
	result := Result{
		Record:    record,
		CarryOver: r.pot,
		Rounds:    r.round,
	}
	r.mu.Unlock()

	r.book.RefundAll(bookkeeper.ReasonWagerRefund)

	metrics.RacesCancelledTotal.Inc()
	metrics.ActiveRaces.Dec()
	metrics.CurrentPot.Set(0)

	r.notifier.Announce(reason)
	if r.onEnded != nil {
		r.onEnded(result)
	}
	r.log.WithField("pot", record.Pot).Warn("Race cancelled")
}
