package bot

import (
	"sync"

	"golang.org/x/time/rate"
)

// Limiter rate-limits commands per user. Limiters for users gone quiet
// are cheap; the map is never pruned.
type Limiter struct {
	mu       sync.Mutex
	perSec   rate.Limit
	limiters map[int64]*rate.Limiter
}

// NewLimiter creates a limiter allowing perSecond commands per user
// with a small burst.
func NewLimiter(perSecond float64) *Limiter {
	return &Limiter{
		perSec:   rate.Limit(perSecond),
		limiters: make(map[int64]*rate.Limiter),
	}
}

// Allow reports whether the user may issue a command right now.
func (l *Limiter) Allow(userID int64) bool {
	l.mu.Lock()
	lim, ok := l.limiters[userID]
	if !ok {
		lim = rate.NewLimiter(l.perSec, 3)
		l.limiters[userID] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
