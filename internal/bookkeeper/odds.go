// Package bookkeeper is the ledger and odds authority for one race or
// betting period: it quotes named odds per participant, holds wagers
// keyed by (placer, odds, target), and settles them against an ordered
// finisher list under strict currency conservation.
package bookkeeper

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yourusername/stable-stakes/internal/models"
)

// Predicate decides whether a wager on target won given the ordered
// finisher list. Predicates are opaque: race odds, top-N odds and any
// future wager types share the same ledger with different predicates.
type Predicate func(order []models.Participant, target models.Participant) bool

// OddsKey uniquely identifies an odds entry. ParticipantID 0 marks a
// global entry valid for any target.
type OddsKey struct {
	Name          string
	ParticipantID int64
}

// Odds is a named, priced, predicate-bound bet offer.
type Odds struct {
	Name        string
	Participant *models.Participant
	Description string
	Payout      decimal.Decimal
	Check       Predicate
}

// Key returns the composite lookup key for this entry.
func (o *Odds) Key() OddsKey {
	key := OddsKey{Name: o.Name}
	if o.Participant != nil {
		key.ParticipantID = o.Participant.ID
	}
	return key
}

// String renders the quote in bookmaker notation.
func (o *Odds) String() string {
	return fmt.Sprintf("%s  --  1 : %s   -   %s", o.Name, o.Payout.StringFixed(1), o.Description)
}

// FinishPosition returns a predicate satisfied when target holds the
// given 0-based position in the finisher list.
func FinishPosition(position int) Predicate {
	return func(order []models.Participant, target models.Participant) bool {
		return len(order) > position && order[position].ID == target.ID
	}
}

// FinishTop returns a predicate satisfied when target appears in the
// first n finishers.
func FinishTop(n int) Predicate {
	return func(order []models.Participant, target models.Participant) bool {
		for i, p := range order {
			if i >= n {
				return false
			}
			if p.ID == target.ID {
				return true
			}
		}
		return false
	}
}

// Finished returns a predicate satisfied when target appears anywhere
// in the finisher list.
func Finished() Predicate {
	return func(order []models.Participant, target models.Participant) bool {
		for _, p := range order {
			if p.ID == target.ID {
				return true
			}
		}
		return false
	}
}
