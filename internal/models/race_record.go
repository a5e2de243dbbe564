package models

import (
	"time"

	"github.com/google/uuid"
)

// RaceOutcome labels how a race ended.
type RaceOutcome string

const (
	RaceOutcomeSettled   RaceOutcome = "settled"
	RaceOutcomeCancelled RaceOutcome = "cancelled"
)

// RaceRecord is the persisted summary of a finished race.
type RaceRecord struct {
	ID         uuid.UUID   `db:"id" json:"id" validate:"required,uuid4"`
	RoomID     int64       `db:"room_id" json:"room_id" validate:"required"`
	Outcome    RaceOutcome `db:"outcome" json:"outcome" validate:"required,oneof=settled cancelled"`
	Pot        int64       `db:"pot" json:"pot"`
	Entrants   int         `db:"entrants" json:"entrants"`
	Cheaters   int         `db:"cheaters" json:"cheaters"`
	Casualties int         `db:"casualties" json:"casualties"`
	StartedAt  time.Time   `db:"started_at" json:"started_at"`
	EndedAt    time.Time   `db:"ended_at" json:"ended_at"`
}

// WagerRecord is the persisted audit row for a settled or refunded wager.
type WagerRecord struct {
	ID        uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	RaceID    uuid.UUID `db:"race_id" json:"race_id" validate:"required,uuid4"`
	PlacerID  int64     `db:"placer_id" json:"placer_id" validate:"required"`
	TargetID  int64     `db:"target_id" json:"target_id"`
	OddsName  string    `db:"odds_name" json:"odds_name" validate:"required"`
	Amount    int64     `db:"amount" json:"amount" validate:"required,gt=0"`
	Won       bool      `db:"won" json:"won"`
	Payout    int64     `db:"payout" json:"payout"`
	SettledAt time.Time `db:"settled_at" json:"settled_at"`
}

// WasProfitable reports whether the wager returned more than its stake.
func (w *WagerRecord) WasProfitable() bool {
	return w.Won && w.Payout > w.Amount
}
