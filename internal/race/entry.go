package race

import (
	"fmt"
	"math"
	"strings"

	"github.com/yourusername/stable-stakes/internal/models"
)

// finishLead is added to the track distance when an entry crosses the
// line, minus its finishing sequence number, so finished entries stay
// ahead of later speed bursts and keep their relative order.
const finishLead = 1e6

// Entry is a participant's runtime record in one race: exactly one
// mount, one handler, and the progress made so far.
type Entry struct {
	participant models.Participant
	mount       Mount
	handler     Handler

	distance      float64
	trackDistance float64
	prevRank      int
	rank          int
	finished      bool
	caughtCheater bool
}

// NewEntry binds a participant to a mount and handler for one race.
func NewEntry(p models.Participant, mount Mount, handler Handler, trackDistance float64) *Entry {
	return &Entry{
		participant:   p,
		mount:         mount,
		handler:       handler,
		trackDistance: trackDistance,
		prevRank:      -1,
		rank:          -1,
	}
}

// Participant returns the owning participant.
func (e *Entry) Participant() models.Participant { return e.participant }

// Mount returns the entry's mount.
func (e *Entry) Mount() Mount { return e.mount }

// Handler returns the entry's handler.
func (e *Entry) Handler() Handler { return e.handler }

// Advance moves the entry along the track for one round. Dead mounts
// contribute zero speed, finished entries accumulate nothing further.
func (e *Entry) Advance(rng Rand, roundSeconds float64) {
	if e.finished {
		return
	}
	speed := e.mount.Speed(rng) * e.handler.Luck(rng) * e.handler.SpeedModifier()
	e.distance += speed / 3.6 * roundSeconds
}

// AgeDoses advances every administered dose by one round.
func (e *Entry) AgeDoses() {
	for _, d := range e.mount.Doses() {
		d.Age()
	}
	for _, d := range e.handler.Doses() {
		d.Age()
	}
}

// Distance returns the cumulative distance covered.
func (e *Entry) Distance() float64 { return e.distance }

// ReachedFinish reports whether the entry has covered the track.
func (e *Entry) ReachedFinish() bool {
	return e.distance >= e.trackDistance
}

// Finished reports whether the entry has been marked past the post.
func (e *Entry) Finished() bool { return e.finished }

// MarkFinished freezes the entry far ahead of the pack. seq is the
// 1-based finishing order so earlier finishers stay in front.
func (e *Entry) MarkFinished(seq int) {
	e.finished = true
	e.distance = e.trackDistance + finishLead - float64(seq)
}

// Rank returns the current leaderboard position (0-based, -1 before the
// first ranking pass).
func (e *Entry) Rank() int { return e.rank }

// SetRank records a new position and remembers the previous one for
// movement arrows in the leaderboard.
func (e *Entry) SetRank(rank int) {
	e.prevRank = e.rank
	e.rank = rank
}

// Dead reports whether the entry's mount has died.
func (e *Entry) Dead() bool {
	return !e.mount.Alive()
}

// CaughtCheating reports whether the anti-cheat pass flagged this entry.
func (e *Entry) CaughtCheating() bool { return e.caughtCheater }

// MarkCheater flags the entry as caught cheating.
func (e *Entry) MarkCheater() { e.caughtCheater = true }

// DoseCount is the total number of doses administered to mount and
// handler; detection scales with the count, not the amounts.
func (e *Entry) DoseCount() int {
	return len(e.mount.Doses()) + len(e.handler.Doses())
}

// DetectCheating runs the jury's stochastic inspection. Active doses
// weigh heavier than inert ones; the probability is clamped so
// detection is never certain and never impossible while any dose
// exists.
func (e *Entry) DetectCheating(rng Rand) bool {
	if e.DoseCount() == 0 {
		return false
	}

	p := 0.0
	for _, d := range e.mount.Doses() {
		p += doseDetectionWeight(d)
	}
	for _, d := range e.handler.Doses() {
		p += doseDetectionWeight(d)
	}

	p = math.Min(0.9, math.Max(0.05, p))
	return rng.Float64() < p
}

func doseDetectionWeight(d *Dose) float64 {
	if d.Active() {
		return 0.25
	}
	return 0.05
}

// String renders the entry's leaderboard line with movement arrows.
func (e *Entry) String() string {
	arrows := ""
	if e.rank >= 0 && e.prevRank >= 0 && e.rank != e.prevRank {
		arrow := "⬇️"
		if e.rank < e.prevRank {
			arrow = "⬆️"
		}
		arrows = strings.Repeat(arrow, absInt(e.rank-e.prevRank))
	}

	progress := fmt.Sprintf("%d m", int(math.Min(e.distance, e.trackDistance)))
	if e.finished {
		progress = "finished"
	}

	return fmt.Sprintf("%d. %s → %s %s  %s   %s",
		e.rank+1, e.participant.Name, e.mount.Glyph(), e.mount.Name(), progress, arrows)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
