package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	f := NewFake(time.Unix(0, 0))

	var order []string
	f.AfterFunc(2*time.Second, func() { order = append(order, "b") })
	f.AfterFunc(1*time.Second, func() { order = append(order, "a") })

	f.Advance(5 * time.Second)

	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, time.Unix(5, 0), f.Now())
}

func TestFakeRearmingTimerFiresRepeatedly(t *testing.T) {
	f := NewFake(time.Unix(0, 0))

	ticks := 0
	var arm func()
	arm = func() {
		f.AfterFunc(time.Second, func() {
			ticks++
			arm()
		})
	}
	arm()

	f.Advance(4 * time.Second)
	assert.Equal(t, 4, ticks)
}

func TestFakeStopPreventsFiring(t *testing.T) {
	f := NewFake(time.Unix(0, 0))

	fired := false
	timer := f.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	f.Advance(2 * time.Second)

	assert.False(t, fired)
	assert.False(t, timer.Stop())
	assert.Equal(t, 0, f.PendingTimers())
}
