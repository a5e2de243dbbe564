package race

// Baseline handler physique. Heavier handlers slow the mount down,
// doped handlers speed it up a little.
const (
	handlerBaselineWeight = 70.0
	handlerWeightPenalty  = 0.01
	handlerDoseEffect     = 0.01
)

// PronounForm selects a grammatical form for display text. Pronouns
// have no effect on the simulation.
type PronounForm int

const (
	PronounReflexive PronounForm = iota // himself / herself
	PronounPossessive                   // his / her
	PronounSubject                      // he / she
)

// Handler rides the mount and is the one actually pushing the needle.
// A botched injection lands the dose in the handler instead.
type Handler interface {
	Name() string
	// Luck is an independent per-round multiplier in [0.9, 1.2), the
	// sanctioned source of race unpredictability distinct from doping.
	Luck(rng Rand) float64
	SpeedModifier() float64
	Weight() float64
	InjectionSkill() float64
	TryInject(rng Rand) bool
	Inject(d *Dose)
	Doses() []*Dose
	Salary() int64
	Pronoun(form PronounForm) string
}

// DefaultHandler is the journeyman handler assigned to every entry.
type DefaultHandler struct {
	name   string
	weight float64
	skill  float64
	salary int64
	female bool
	doses  []*Dose
}

var handlerNames = []string{
	"Willie Carson", "Pat Day", "Angel Cordero", "Julie Krone",
	"Bill Shoemaker", "Rosie Napravnik", "Eddie Arcaro", "Steve Cauthen",
	"Lester Piggott", "Chantal Sutherland", "Laffit Pincay", "Mike Smith",
}

// NewDefaultHandler assigns a handler with the default weight/salary
// profile and injection skill.
func NewDefaultHandler(rng Rand) *DefaultHandler {
	i := rng.Intn(len(handlerNames))
	return &DefaultHandler{
		name:   handlerNames[i],
		weight: 75,
		skill:  0.7,
		salary: 15,
		female: i == 3 || i == 5 || i == 9,
	}
}

func (h *DefaultHandler) Name() string { return h.name }

func (h *DefaultHandler) Luck(rng Rand) float64 {
	return 0.9 + rng.Float64()*0.3
}

// SpeedModifier combines the weight penalty against the baseline with
// whatever the handler has coursing through their own veins.
func (h *DefaultHandler) SpeedModifier() float64 {
	modifier := 1.0
	for _, d := range h.doses {
		if d.Active() {
			modifier += d.Bonus() * handlerDoseEffect
		}
	}
	modifier -= (h.weight - handlerBaselineWeight) * handlerWeightPenalty
	return modifier
}

func (h *DefaultHandler) Weight() float64 { return h.weight }

func (h *DefaultHandler) InjectionSkill() float64 { return h.skill }

// TryInject runs the skill check deciding whether the dose lands on
// the mount.
func (h *DefaultHandler) TryInject(rng Rand) bool {
	return rng.Float64() <= h.skill
}

func (h *DefaultHandler) Inject(d *Dose) {
	h.doses = append(h.doses, d)
}

func (h *DefaultHandler) Doses() []*Dose {
	return h.doses
}

func (h *DefaultHandler) Salary() int64 { return h.salary }

func (h *DefaultHandler) Pronoun(form PronounForm) string {
	if h.female {
		switch form {
		case PronounReflexive:
			return "herself"
		case PronounPossessive:
			return "her"
		default:
			return "she"
		}
	}
	switch form {
	case PronounReflexive:
		return "himself"
	case PronounPossessive:
		return "his"
	default:
		return "he"
	}
}
