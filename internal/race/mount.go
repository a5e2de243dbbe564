package race

import "math"

// Mount is the primary performance source of a race entry. Only the
// default stable-provided variant is implemented; the capability
// interface keeps the door open for themed variants without touching
// the race engine.
type Mount interface {
	Name() string
	Glyph() string
	Description() string
	BaseSpeed() float64
	Tolerance() float64
	Alive() bool
	// Speed returns the current speed contribution. Computing it runs
	// the stochastic overdose check, so a mount can die the moment its
	// speed is evaluated, mid-race or at the finish.
	Speed(rng Rand) float64
	// OverdoseCheck runs the stochastic death evaluation without
	// reading the speed. Dead mounts stay dead.
	OverdoseCheck(rng Rand)
	Inject(d *Dose)
	Doses() []*Dose
}

// DefaultMount is a standard mount provided by a local stable.
type DefaultMount struct {
	name      string
	speed     float64
	tolerance float64
	alive     bool
	doses     []*Dose
}

type mountSpec struct {
	name      string
	speed     float64
	tolerance float64
}

// The stable roster. Speeds are track ratings in km/h, tolerance is the
// overdose headroom used by the death check.
var stable = []mountSpec{
	{"Sir Barton", 48, 0.92},
	{"Big Brown", 49, 1.11},
	{"War Admiral", 45, 1.45},
	{"Grindstone", 48, 0.82},
	{"Jet Pilot", 48, 0.95},
	{"Lord Murphy", 50, 0.94},
	{"Elwood", 46, 0.87},
	{"Exterminator", 46, 0.94},
	{"Stone Street", 48, 0.55},
	{"Citation", 46, 1.24},
	{"Gallant Fox", 47, 0.65},
	{"Barbaro", 45, 0.93},
	{"Canonero", 48, 0.79},
	{"War Emblem", 48, 1.15},
	{"Apollo", 46, 1.01},
	{"Lieutenant Gibson", 50, 0.91},
	{"Wintergreen", 50, 0.77},
	{"Whirlaway", 49, 1.29},
	{"American Pharoah", 47, 0.55},
	{"Seattle Slew", 48, 0.54},
	{"Omaha", 45, 1.26},
	{"Secretariat", 48, 0.98},
	{"Unbridled", 50, 0.95},
	{"Joe Cotton", 47, 0.63},
	{"Buchanan", 49, 0.68},
	{"His Eminence", 45, 0.90},
	{"Flying Ebony", 48, 1.39},
	{"Twenty Grand", 48, 0.88},
	{"Judge Himes", 48, 0.67},
	{"Assault", 49, 1.13},
}

// StableSize returns the number of mounts the stable can provide, the
// hard cap on race entrants.
func StableSize() int {
	return len(stable)
}

// NewDefaultMount builds a mount from its stable roster entry.
func newDefaultMount(spec mountSpec) *DefaultMount {
	return &DefaultMount{
		name:      spec.name,
		speed:     spec.speed,
		tolerance: spec.tolerance,
		alive:     true,
	}
}

// NewMountByName returns the named stable mount, for tests and tooling.
func NewMountByName(name string) (Mount, bool) {
	for _, spec := range stable {
		if spec.name == name {
			return newDefaultMount(spec), true
		}
	}
	return nil, false
}

// PickMount draws a random stable mount whose name is not in taken.
// Returns false when the stable is exhausted.
func PickMount(rng Rand, taken map[string]bool) (Mount, bool) {
	free := make([]mountSpec, 0, len(stable))
	for _, spec := range stable {
		if !taken[spec.name] {
			free = append(free, spec)
		}
	}
	if len(free) == 0 {
		return nil, false
	}
	return newDefaultMount(free[rng.Intn(len(free))]), true
}

func (m *DefaultMount) Name() string { return m.name }

func (m *DefaultMount) Glyph() string {
	if m.alive {
		return "🐴"
	}
	return "☠️"
}

func (m *DefaultMount) Description() string {
	return "A standard mount provided by a local stable."
}

func (m *DefaultMount) BaseSpeed() float64 { return m.speed }

func (m *DefaultMount) Tolerance() float64 { return m.tolerance }

func (m *DefaultMount) Alive() bool { return m.alive }

// Speed returns the doped speed, zero once dead. Invariant: once dead,
// the contribution is zero and remains zero.
func (m *DefaultMount) Speed(rng Rand) float64 {
	m.OverdoseCheck(rng)
	if !m.alive {
		return 0
	}

	bonus := 0.0
	for _, d := range m.doses {
		if d.Active() {
			bonus += d.Bonus()
		}
	}
	return m.speed * (1 + bonus)
}

// OverdoseCheck evaluates the death condition. The check is stochastic:
// the probability grows with the margin by which total intake exceeds
// tolerance but a single evaluation never kills with certainty.
func (m *DefaultMount) OverdoseCheck(rng Rand) {
	if !m.alive {
		return
	}

	intake := 0.0
	for _, d := range m.doses {
		intake += d.Potency()
	}

	excess := intake - m.tolerance
	if excess <= 0 {
		return
	}

	p := math.Min(0.95, math.Max(0.05, excess))
	if rng.Float64() < p {
		m.alive = false
	}
}

func (m *DefaultMount) Inject(d *Dose) {
	m.doses = append(m.doses, d)
}

func (m *DefaultMount) Doses() []*Dose {
	return m.doses
}
