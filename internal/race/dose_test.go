package race

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDosePotencyScalesWithPot(t *testing.T) {
	small := NewDose(10, 100)
	big := NewDose(50, 100)

	assert.InDelta(t, 0.05, small.Potency(), 1e-9)
	assert.InDelta(t, 0.25, big.Potency(), 1e-9)
}

func TestDosePotRefFloor(t *testing.T) {
	d := NewDose(10, 0)
	assert.InDelta(t, 5.0, d.Potency(), 1e-9)
}

func TestDoseBonusDecaysMonotonically(t *testing.T) {
	d := NewDose(30, 100)

	bonuses := []float64{}
	for i := 0; i < 5; i++ {
		bonuses = append(bonuses, d.Bonus())
		d.Age()
	}

	assert.InDelta(t, 0.15, bonuses[0], 1e-9)
	assert.InDelta(t, 0.10, bonuses[1], 1e-9)
	assert.InDelta(t, 0.05, bonuses[2], 1e-9)
	assert.Zero(t, bonuses[3])
	assert.Zero(t, bonuses[4])

	for i := 1; i < len(bonuses); i++ {
		assert.LessOrEqual(t, bonuses[i], bonuses[i-1])
	}
}

func TestDoseGoesInertAfterThreeRounds(t *testing.T) {
	d := NewDose(10, 100)

	assert.True(t, d.Active())
	d.Age()
	d.Age()
	assert.True(t, d.Active())
	d.Age()
	assert.False(t, d.Active())

	// Inert doses keep their full potency for overdose accounting.
	assert.InDelta(t, 0.05, d.Potency(), 1e-9)
}
