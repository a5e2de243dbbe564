package race

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerLuckRange(t *testing.T) {
	h := NewDefaultHandler(constRand{0.0})

	assert.InDelta(t, 0.9, h.Luck(constRand{0.0}), 1e-9)
	assert.InDelta(t, 1.05, h.Luck(constRand{0.5}), 1e-9)
	assert.Less(t, h.Luck(constRand{0.999999}), 1.2)
}

func TestHandlerSpeedModifierWeightPenalty(t *testing.T) {
	h := NewDefaultHandler(constRand{0.5})

	// Default weight 75 against the 70 baseline.
	assert.InDelta(t, 0.95, h.SpeedModifier(), 1e-9)
}

func TestHandlerSpeedModifierWithDose(t *testing.T) {
	h := NewDefaultHandler(constRand{0.5})

	h.Inject(NewDose(100, 100)) // bonus 0.5
	assert.InDelta(t, 0.95+0.5*handlerDoseEffect, h.SpeedModifier(), 1e-9)
}

func TestHandlerDoseGoesInert(t *testing.T) {
	h := NewDefaultHandler(constRand{0.5})
	h.Inject(NewDose(100, 100))

	for i := 0; i < doseActiveRounds; i++ {
		h.Doses()[0].Age()
	}
	assert.InDelta(t, 0.95, h.SpeedModifier(), 1e-9)
}

func TestTryInjectSkillCheck(t *testing.T) {
	h := NewDefaultHandler(constRand{0.5})

	assert.True(t, h.TryInject(constRand{0.69}))
	assert.True(t, h.TryInject(constRand{0.7}))
	assert.False(t, h.TryInject(constRand{0.71}))
}

func TestHandlerPronouns(t *testing.T) {
	julie := &DefaultHandler{name: "Julie Krone", female: true}
	assert.Equal(t, "herself", julie.Pronoun(PronounReflexive))
	assert.Equal(t, "her", julie.Pronoun(PronounPossessive))
	assert.Equal(t, "she", julie.Pronoun(PronounSubject))

	pat := &DefaultHandler{name: "Pat Day"}
	assert.Equal(t, "himself", pat.Pronoun(PronounReflexive))
	assert.Equal(t, "his", pat.Pronoun(PronounPossessive))
	assert.Equal(t, "he", pat.Pronoun(PronounSubject))
}
