// Package ledger holds participant currency balances. The race engine
// never touches balances directly; every movement arrives here as a
// tagged atomic delta.
package ledger

import (
	"sync"

	"github.com/yourusername/stable-stakes/internal/logger"
	"github.com/yourusername/stable-stakes/internal/models"
)

// MemoryLedger is the in-process balance store. Balances may go
// negative: fines are taken in full regardless of funds.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[int64]int64
	audit    *logger.AuditLogger
}

// New creates an empty ledger. audit may be nil.
func New(audit *logger.AuditLogger) *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[int64]int64),
		audit:    audit,
	}
}

// Deposit credits a participant without a movement reason. Used to
// seed balances.
func (l *MemoryLedger) Deposit(p models.Participant, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[p.ID] += amount
}

// AlterBalance applies a signed delta to the participant's balance.
func (l *MemoryLedger) AlterBalance(p models.Participant, delta int64, reason string) {
	l.mu.Lock()
	l.balances[p.ID] += delta
	l.mu.Unlock()

	if l.audit != nil {
		l.audit.LogBalanceDelta(p.ID, delta, reason)
	}
}

// BalanceOf returns the participant's current balance.
func (l *MemoryLedger) BalanceOf(p models.Participant) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[p.ID]
}

// Total returns the sum of all balances, used by conservation checks.
func (l *MemoryLedger) Total() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	var sum int64
	for _, b := range l.balances {
		sum += b
	}
	return sum
}
