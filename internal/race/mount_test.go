package race

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStableRosterBounds(t *testing.T) {
	assert.Equal(t, 30, StableSize())

	for _, spec := range stable {
		assert.GreaterOrEqual(t, spec.speed, 45.0, spec.name)
		assert.LessOrEqual(t, spec.speed, 50.0, spec.name)
		assert.Greater(t, spec.tolerance, 0.5, spec.name)
		assert.Less(t, spec.tolerance, 1.5, spec.name)
	}
}

func TestPickMountSkipsTaken(t *testing.T) {
	taken := map[string]bool{stable[0].name: true}

	m, ok := PickMount(constRand{0.5}, taken)
	require.True(t, ok)
	assert.Equal(t, stable[1].name, m.Name())
}

func TestPickMountExhaustedStable(t *testing.T) {
	taken := make(map[string]bool)
	for _, spec := range stable {
		taken[spec.name] = true
	}

	_, ok := PickMount(constRand{0.5}, taken)
	assert.False(t, ok)
}

func TestMountSpeedWithoutDoses(t *testing.T) {
	m, ok := NewMountByName("Secretariat")
	require.True(t, ok)

	assert.InDelta(t, 48.0, m.Speed(constRand{0.5}), 1e-9)
	assert.True(t, m.Alive())
}

func TestMountSpeedWithActiveDose(t *testing.T) {
	m, ok := NewMountByName("Secretariat")
	require.True(t, ok)

	// Bonus 0.1, far below tolerance so no death risk at rng 0.99.
	m.Inject(NewDose(20, 100))
	assert.InDelta(t, 48.0*1.1, m.Speed(constRand{0.99}), 1e-9)
}

func TestMountSurvivesWithinTolerance(t *testing.T) {
	m, ok := NewMountByName("War Admiral") // tolerance 1.45
	require.True(t, ok)

	m.Inject(NewDose(100, 100)) // potency 0.5
	m.OverdoseCheck(constRand{0.0})
	assert.True(t, m.Alive())
}

func TestMountDiesPastTolerance(t *testing.T) {
	m, ok := NewMountByName("Seattle Slew") // tolerance 0.54
	require.True(t, ok)

	// Total potency 1.5, excess 0.96: death at any draw below 0.95.
	m.Inject(NewDose(300, 100))
	m.OverdoseCheck(constRand{0.5})

	assert.False(t, m.Alive())
	assert.Equal(t, "☠️", m.Glyph())
	assert.Zero(t, m.Speed(constRand{0.5}))
}

func TestOverdoseNeverCertainPerCheck(t *testing.T) {
	m, ok := NewMountByName("Seattle Slew")
	require.True(t, ok)

	// Even a massive overdose survives a draw at the clamp ceiling.
	m.Inject(NewDose(10000, 100))
	m.OverdoseCheck(constRand{0.96})
	assert.True(t, m.Alive())
}

func TestDeadMountStaysDead(t *testing.T) {
	m, ok := NewMountByName("Seattle Slew")
	require.True(t, ok)

	m.Inject(NewDose(300, 100))
	m.OverdoseCheck(constRand{0.0})
	require.False(t, m.Alive())

	// Further checks with a lucky draw never resurrect it.
	m.OverdoseCheck(constRand{0.99})
	assert.False(t, m.Alive())
}
