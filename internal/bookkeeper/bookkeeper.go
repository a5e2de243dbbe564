package bookkeeper

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/stable-stakes/internal/metrics"
	"github.com/yourusername/stable-stakes/internal/models"
)

// Balance delta reason tags passed to the external ledger.
const (
	ReasonWagerPlaced = "horseraces.placebet"
	ReasonWagerWon    = "horseraces.winbet"
	ReasonWagerRefund = "horseraces.betrefund"
)

// Ledger is the external currency authority. Every debit or credit is
// expressed as a single atomic delta.
type Ledger interface {
	AlterBalance(p models.Participant, delta int64, reason string)
	BalanceOf(p models.Participant) int64
}

// StatsSink records wager outcomes after settlement.
type StatsSink interface {
	RecordWagerOutcome(placer models.Participant, won bool, amount int64)
}

// WagerKey uniquely identifies a held wager.
type WagerKey struct {
	PlacerID int64
	OddsName string
	TargetID int64
}

// Wager is a placed bet. A repeated identical key replaces the held
// wager rather than duplicating it.
type Wager struct {
	Placer models.Participant
	Target models.Participant
	Odds   *Odds
	Amount int64
}

// Key returns the wager's composite identity.
func (w *Wager) Key() WagerKey {
	return WagerKey{PlacerID: w.Placer.ID, OddsName: w.Odds.Name, TargetID: w.Target.ID}
}

// String renders the wager for the bets listing.
func (w *Wager) String() string {
	target := w.Target.Name
	if w.Target.ID == w.Placer.ID {
		target = "themselves"
	}
	return fmt.Sprintf("%s placed a bet of %d on %s for %s with odds of 1 : %s.",
		w.Placer.Name, w.Amount, target, w.Odds.Description, w.Odds.Payout.StringFixed(1))
}

// Bookkeeper owns the odds table and wager ledger for one race.
type Bookkeeper struct {
	mu        sync.Mutex
	provider  Provider
	ledger    Ledger
	stats     StatsSink
	log       *logrus.Entry
	maxWager  int64
	allowSelf bool
	wagers    map[WagerKey]*Wager
	held      int64
	balance   int64
}

// New creates a bookkeeper for a fresh betting period. maxWager caps
// individual wager amounts; allowSelf permits betting on oneself.
func New(provider Provider, ledger Ledger, stats StatsSink, log *logrus.Entry, maxWager int64, allowSelf bool) *Bookkeeper {
	provider.Refresh()
	return &Bookkeeper{
		provider:  provider,
		ledger:    ledger,
		stats:     stats,
		log:       log,
		maxWager:  maxWager,
		allowSelf: allowSelf,
		wagers:    make(map[WagerKey]*Wager),
	}
}

// Register adds a participant to the odds table.
func (b *Bookkeeper) Register(p models.Participant) {
	b.provider.Register(p)
}

// Provider returns the odds provider backing this bookkeeper.
func (b *Bookkeeper) Provider() Provider {
	return b.provider
}

// HasWagers reports whether any wagers are currently held.
func (b *Bookkeeper) HasWagers() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.wagers) > 0
}

// HeldTotal returns the sum of currently-held wager amounts.
func (b *Bookkeeper) HeldTotal() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.held
}

// Balance returns the audit balance: amounts taken in minus amounts
// paid back out across this bookkeeper's lifetime.
func (b *Bookkeeper) Balance() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balance
}

// PlaceWager creates or replaces the wager at (placer, oddsName,
// target). Replacing charges only the difference between the new and
// old amount; an equal amount is rejected as a duplicate and a lower
// one as a decrease. Amounts above the cap are clamped with a warning
// rather than rejected. On any rejection no balance is touched.
func (b *Bookkeeper) PlaceWager(placer, target models.Participant, oddsName string, amount int64) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if amount <= 0 {
		return "", models.ErrNonPositiveAmount
	}

	odds, ok := b.provider.Find(oddsName, target)
	if !ok {
		return "", fmt.Errorf("'%s' is not a property you can bet on for %s: %w", oddsName, target.Name, models.ErrUnknownOdds)
	}

	if !b.allowSelf && placer.ID == target.ID {
		return "", models.ErrSelfWager
	}

	warning := ""
	if amount > b.maxWager {
		warning = fmt.Sprintf("⚠️ Bets are capped at %d, your bet was reduced.\n", b.maxWager)
		amount = b.maxWager
	}

	key := WagerKey{PlacerID: placer.ID, OddsName: odds.Name, TargetID: target.ID}
	charge := amount
	if existing, ok := b.wagers[key]; ok {
		charge = amount - existing.Amount
		if charge == 0 {
			return "", models.ErrWagerExists
		}
		if charge < 0 {
			return "", models.ErrWagerDecrease
		}
	}

	if b.ledger.BalanceOf(placer) < charge {
		return "", models.ErrInsufficientBalance
	}

	b.ledger.AlterBalance(placer, -charge, ReasonWagerPlaced)

	wager := &Wager{Placer: placer, Target: target, Odds: odds, Amount: amount}
	b.wagers[key] = wager
	b.held += charge
	b.balance += charge

	metrics.WagersPlacedTotal.Inc()

	b.log.WithFields(logrus.Fields{
		"placer":  placer.ID,
		"target":  target.ID,
		"odds":    odds.Name,
		"amount":  amount,
		"charged": charge,
	}).Info("Wager held")

	return warning + wager.String(), nil
}

// Settle evaluates every held wager against the ordered finisher list,
// pays the winners, clears the ledger and refreshes odds for the next
// period. Returns the settlement report text and one audit row per
// wager; the caller stamps the race id and settlement time.
func (b *Bookkeeper) Settle(order []models.Participant) (string, []models.WagerRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.auditHeld()

	msg := ""
	losers := make(map[int64]models.Participant)
	winners := make(map[int64]bool)
	records := make([]models.WagerRecord, 0, len(b.wagers))

	for _, w := range b.sortedWagers() {
		record := models.WagerRecord{
			ID:       uuid.New(),
			PlacerID: w.Placer.ID,
			TargetID: w.Target.ID,
			OddsName: w.Odds.Name,
			Amount:   w.Amount,
		}
		if w.Odds.Check(order, w.Target) {
			payout := decimal.NewFromInt(w.Amount).Mul(w.Odds.Payout).Floor().IntPart()
			if payout < 0 {
				panic(fmt.Sprintf("bookkeeper: negative payout %d for wager %+v", payout, w.Key()))
			}

			b.ledger.AlterBalance(w.Placer, payout, ReasonWagerWon)
			b.balance -= payout
			b.stats.RecordWagerOutcome(w.Placer, true, w.Amount)
			winners[w.Placer.ID] = true
			record.Won = true
			record.Payout = payout

			target := w.Target.Name
			if w.Target.ID == w.Placer.ID {
				target = "themselves"
			}
			msg += fmt.Sprintf("@%s was right on %s %s and won %d.\n", w.Placer.Name, target, w.Odds.Description, payout)
			metrics.WagersWonTotal.Inc()
		} else {
			b.stats.RecordWagerOutcome(w.Placer, false, w.Amount)
			losers[w.Placer.ID] = w.Placer
		}
		records = append(records, record)
		metrics.WagersSettledTotal.Inc()
	}

	for id := range winners {
		delete(losers, id)
	}
	if len(losers) > 0 {
		names := make([]string, 0, len(losers))
		for _, p := range losers {
			names = append(names, "@"+p.Name)
		}
		sort.Strings(names)
		msg += fmt.Sprintf("\n%s lost the bet(s) they made.", joinNames(names))
	}

	b.wagers = make(map[WagerKey]*Wager)
	b.held = 0
	b.provider.Refresh()

	return msg, records
}

// RefundAll credits every placer their full held amount, clears all
// wagers and refreshes odds. Used only on race cancellation.
func (b *Bookkeeper) RefundAll(reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.auditHeld()

	for _, w := range b.sortedWagers() {
		b.ledger.AlterBalance(w.Placer, w.Amount, reason)
		b.balance -= w.Amount
		metrics.WagersRefundedTotal.Inc()
	}

	b.wagers = make(map[WagerKey]*Wager)
	b.held = 0
	b.provider.Refresh()
}

// Wagers returns the held wagers in stable order.
func (b *Bookkeeper) Wagers() []*Wager {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sortedWagers()
}

// RenderWagers writes the current bets listing.
func (b *Bookkeeper) RenderWagers() string {
	wagers := b.Wagers()
	if len(wagers) == 0 {
		return "There are no bets."
	}
	msg := "Bets made:\n"
	for _, w := range wagers {
		msg += w.String() + "\n"
	}
	return msg
}

func (b *Bookkeeper) sortedWagers() []*Wager {
	all := make([]*Wager, 0, len(b.wagers))
	for _, w := range b.wagers {
		all = append(all, w)
	}
	sort.Slice(all, func(i, j int) bool {
		ki, kj := all[i].Key(), all[j].Key()
		if ki.PlacerID != kj.PlacerID {
			return ki.PlacerID < kj.PlacerID
		}
		if ki.TargetID != kj.TargetID {
			return ki.TargetID < kj.TargetID
		}
		return ki.OddsName < kj.OddsName
	})
	return all
}

// auditHeld asserts the held counter matches the wager table. A
// mismatch means currency was invented or destroyed, a programming
// defect that must not be swallowed.
func (b *Bookkeeper) auditHeld() {
	var sum int64
	for _, w := range b.wagers {
		sum += w.Amount
	}
	if sum != b.held {
		panic(fmt.Sprintf("bookkeeper: held ledger mismatch, wagers sum to %d but held is %d", sum, b.held))
	}
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		last := names[len(names)-1]
		rest := names[:len(names)-1]
		joined := ""
		for i, n := range rest {
			if i > 0 {
				joined += ", "
			}
			joined += n
		}
		return joined + " and " + last
	}
}
