package race

// Deterministic Rand implementations shared by the package tests.

// constRand returns the same float on every draw and always picks the
// first option.
type constRand struct {
	f float64
}

func (r constRand) Float64() float64 { return r.f }
func (r constRand) Intn(n int) int   { return 0 }

// seqRand replays a fixed sequence of floats, then repeats the last
// one. Intn always picks the first option.
type seqRand struct {
	floats []float64
	pos    *int
}

func newSeqRand(floats ...float64) seqRand {
	pos := 0
	return seqRand{floats: floats, pos: &pos}
}

func (r seqRand) Float64() float64 {
	if *r.pos < len(r.floats)-1 {
		v := r.floats[*r.pos]
		*r.pos++
		return v
	}
	return r.floats[len(r.floats)-1]
}

func (r seqRand) Intn(n int) int { return 0 }
