package race

import (
	mrand "math/rand"
	"time"
)

// Rand is the source of race unpredictability: handler luck, overdose
// checks, anti-cheat inspections and mount assignment all draw from it.
// Tests substitute a deterministic implementation.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// NewRand returns a seeded pseudo-random source.
func NewRand(seed int64) Rand {
	return mrand.New(mrand.NewSource(seed))
}

// NewTimeRand returns a source seeded from the wall clock.
func NewTimeRand() Rand {
	return NewRand(time.Now().UnixNano())
}
