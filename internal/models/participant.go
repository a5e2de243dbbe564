package models

// Participant is the stable identity of a chat user taking part in races.
// The currency balance itself is owned by the external ledger; the engine
// only ever requests deltas against it.
type Participant struct {
	ID   int64  `db:"id" json:"id" validate:"required"`
	Name string `db:"name" json:"name" validate:"required"`
}

// IsNPC reports whether the participant is one of the reserved filler
// entrants seeded into a race so it never starts empty. NPCs use negative
// ids so that id 0 stays free to mean "no participant" in composite keys.
func (p Participant) IsNPC() bool {
	return p.ID < 0
}

// NPC filler participants injected at race founding time.
var (
	NPCFirst  = Participant{ID: -1, Name: "Rusty Gate"}
	NPCSecond = Participant{ID: -2, Name: "Old Thunder"}
)
