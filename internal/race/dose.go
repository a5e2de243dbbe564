package race

// doseActiveRounds is the number of round evaluations a dose keeps
// contributing speed before it goes inert.
const doseActiveRounds = 3

// Dose is a unit of administered performance-altering substance. Its
// speed bonus is largest right after injection and decays to zero over
// doseActiveRounds rounds; an inert dose still counts toward overdose
// and detection bookkeeping.
type Dose struct {
	amount  int64
	potRef  int64
	elapsed int
}

// NewDose creates a dose of the given amount. potRef is the price pool
// at injection time and scales the bonus, so a dose worth half the pot
// is a big boost regardless of room economy.
func NewDose(amount, potRef int64) *Dose {
	if potRef < 1 {
		potRef = 1
	}
	return &Dose{amount: amount, potRef: potRef}
}

// Amount returns the currency spent on this dose.
func (d *Dose) Amount() int64 {
	return d.amount
}

// Active reports whether the dose still contributes a speed bonus.
func (d *Dose) Active() bool {
	return d.elapsed < doseActiveRounds
}

// Potency is the undecayed bonus of the dose. It feeds the overdose
// check, so a dose keeps straining the mount after it went inert.
func (d *Dose) Potency() float64 {
	return float64(d.amount) / float64(d.potRef) * 0.5
}

// Bonus returns the current speed bonus. It is monotonically
// non-increasing in the rounds elapsed since injection.
func (d *Dose) Bonus() float64 {
	switch d.elapsed {
	case 0:
		return d.Potency()
	case 1:
		return d.Potency() * 2.0 / 3.0
	case 2:
		return d.Potency() / 3.0
	default:
		return 0
	}
}

// Age advances the dose by one elapsed round.
func (d *Dose) Age() {
	if d.elapsed < doseActiveRounds {
		d.elapsed++
	}
}
