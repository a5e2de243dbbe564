package bookkeeper

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/yourusername/stable-stakes/internal/models"
)

// Outcome names the fixed set of per-participant race outcomes quoted
// by the bookkeeper.
type Outcome string

const (
	OutcomeFirst  Outcome = "first"
	OutcomeSecond Outcome = "second"
	OutcomeThird  Outcome = "third"
)

// minPayout is the floor every quote is clamped to.
var minPayout = decimal.NewFromFloat(1.1)

// History supplies historical win rates used to derive payouts.
type History interface {
	// WinRate returns the participant's historical rate in [0, 1] for
	// the given outcome. Unknown participants return 0.
	WinRate(participantID int64, outcome Outcome) float64
}

// Provider maintains the odds table for one betting period.
type Provider interface {
	// Register adds a participant and quotes odds for each outcome.
	Register(p models.Participant)
	// Refresh recomputes every payout from current history. Payouts are
	// recomputed in place, never mutated by wager traffic.
	Refresh()
	// Find resolves an odds entry for the command and target, falling
	// back to a global entry when no per-participant quote exists.
	Find(name string, target models.Participant) (*Odds, bool)
	// All returns the table sorted by participant then command name.
	All() []*Odds
}

// RaceOddsProvider derives per-participant finishing odds from
// historical performance.
type RaceOddsProvider struct {
	mu           sync.Mutex
	history      History
	maxOdds      decimal.Decimal
	odds         map[OddsKey]*Odds
	participants map[int64]models.Participant
}

// NewRaceOddsProvider creates a provider quoting first/second/third
// outcomes capped at maxOdds.
func NewRaceOddsProvider(history History, maxOdds float64) *RaceOddsProvider {
	return &RaceOddsProvider{
		history:      history,
		maxOdds:      decimal.NewFromFloat(maxOdds),
		odds:         make(map[OddsKey]*Odds),
		participants: make(map[int64]models.Participant),
	}
}

// Register adds a participant to the odds table.
func (rp *RaceOddsProvider) Register(p models.Participant) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	rp.participants[p.ID] = p
	rp.refreshParticipant(p)
}

// Refresh recomputes payouts for every registered participant.
func (rp *RaceOddsProvider) Refresh() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	for _, p := range rp.participants {
		rp.refreshParticipant(p)
	}
}

func (rp *RaceOddsProvider) refreshParticipant(p models.Participant) {
	outcomes := []struct {
		outcome     Outcome
		description string
		position    int
	}{
		{OutcomeFirst, "finishing first", 0},
		{OutcomeSecond, "finishing second", 1},
		{OutcomeThird, "finishing third", 2},
	}

	for _, spec := range outcomes {
		payout := rp.derivePayout(rp.history.WinRate(p.ID, spec.outcome))
		key := OddsKey{Name: string(spec.outcome), ParticipantID: p.ID}
		if existing, ok := rp.odds[key]; ok {
			// Stable pointer so held wagers settle at the refreshed quote.
			existing.Payout = payout
			continue
		}
		participant := p
		rp.odds[key] = &Odds{
			Name:        string(spec.outcome),
			Participant: &participant,
			Description: spec.description,
			Payout:      payout,
			Check:       FinishPosition(spec.position),
		}
	}
}

// derivePayout maps a historical win rate to a payout multiplier:
// round(maxOdds × (1 − rate), 1) clamped to [1.1, maxOdds]. Frequent
// winners get short odds.
func (rp *RaceOddsProvider) derivePayout(rate float64) decimal.Decimal {
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}

	payout := rp.maxOdds.Mul(decimal.NewFromFloat(1 - rate)).Round(1)
	if payout.LessThan(minPayout) {
		return minPayout
	}
	if payout.GreaterThan(rp.maxOdds) {
		return rp.maxOdds
	}
	return payout
}

// Find resolves the quote for a command and target.
func (rp *RaceOddsProvider) Find(name string, target models.Participant) (*Odds, bool) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if o, ok := rp.odds[OddsKey{Name: name, ParticipantID: target.ID}]; ok {
		return o, true
	}
	o, ok := rp.odds[OddsKey{Name: name}]
	return o, ok
}

// All returns the current table in stable order.
func (rp *RaceOddsProvider) All() []*Odds {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	all := make([]*Odds, 0, len(rp.odds))
	for _, o := range rp.odds {
		all = append(all, o)
	}
	sort.Slice(all, func(i, j int) bool {
		ki, kj := all[i].Key(), all[j].Key()
		if ki.ParticipantID != kj.ParticipantID {
			return ki.ParticipantID < kj.ParticipantID
		}
		return ki.Name < kj.Name
	})
	return all
}

// RenderTable writes the odds table grouped by participant.
func RenderTable(provider Provider) string {
	byParticipant := make(map[int64][]*Odds)
	names := make(map[int64]string)
	for _, o := range provider.All() {
		id := int64(0)
		if o.Participant != nil {
			id = o.Participant.ID
			names[id] = o.Participant.Name
		}
		byParticipant[id] = append(byParticipant[id], o)
	}

	ids := make([]int64, 0, len(byParticipant))
	for id := range byParticipant {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	msg := ""
	for _, id := range ids {
		header := names[id]
		if header == "" {
			header = "race"
		}
		msg += fmt.Sprintf("%s:\n", header)
		for _, o := range byParticipant[id] {
			msg += "  " + o.String() + "\n"
		}
		msg += "\n"
	}
	if msg == "" {
		return "No odds have been posted yet."
	}
	return msg
}
