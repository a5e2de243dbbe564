package statistics

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/yourusername/stable-stakes/internal/bookkeeper"
)

// CachedHistory memoizes win-rate lookups in front of a history
// source. Payout derivation walks three outcomes per entrant on every
// refresh; the cache keeps that cheap for large rooms. Entries expire
// on their own so a missed invalidation only stales a quote briefly.
type CachedHistory struct {
	source bookkeeper.History
	cache  *cache.Cache
}

// NewCachedHistory wraps source with a TTL cache.
func NewCachedHistory(source bookkeeper.History, ttl time.Duration) *CachedHistory {
	return &CachedHistory{
		source: source,
		cache:  cache.New(ttl, ttl*2),
	}
}

// WinRate returns the cached rate, consulting the source on a miss.
func (c *CachedHistory) WinRate(participantID int64, outcome bookkeeper.Outcome) float64 {
	key := fmt.Sprintf("%d:%s", participantID, outcome)
	if v, ok := c.cache.Get(key); ok {
		return v.(float64)
	}
	rate := c.source.WinRate(participantID, outcome)
	c.cache.Set(key, rate, cache.DefaultExpiration)
	return rate
}

// Invalidate drops every cached rate, forcing fresh lookups on the
// next refresh. Called after race settlement.
func (c *CachedHistory) Invalidate() {
	c.cache.Flush()
}
