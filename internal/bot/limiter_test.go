package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimiterBurstThenThrottle(t *testing.T) {
	l := NewLimiter(0.001)

	// Burst of three, then the tiny refill rate blocks.
	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))
}

func TestLimiterIsPerUser(t *testing.T) {
	l := NewLimiter(0.001)

	for i := 0; i < 3; i++ {
		l.Allow(1)
	}
	assert.False(t, l.Allow(1))
	assert.True(t, l.Allow(2))
}
