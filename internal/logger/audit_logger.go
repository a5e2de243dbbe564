// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides a dedicated audit trail for currency movements.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogWagerPlacement logs a wager placement or replacement event.
func (al *AuditLogger) LogWagerPlacement(roomID, placerID, targetID int64, oddsName string, amount, charged int64, payout float64, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"room_id":   roomID,
		"placer_id": placerID,
		"target_id": targetID,
		"odds_name": oddsName,
		"amount":    amount,
		"charged":   charged,
		"payout":    payout,
		"timestamp": timestamp.Unix(),
	}).Info("Wager placement recorded")
}

// LogBalanceDelta logs a single delta applied to a participant balance.
func (al *AuditLogger) LogBalanceDelta(participantID, delta int64, reason string) {
	al.WithFields(logrus.Fields{
		"participant_id": participantID,
		"delta":          delta,
		"reason":         reason,
	}).Info("Balance delta applied")
}

// LogRaceSettlement logs the terminal accounting pass of a race.
func (al *AuditLogger) LogRaceSettlement(roomID int64, raceID string, pot int64, winners, cheaters, dead int, cancelled bool) {
	al.WithFields(logrus.Fields{
		"room_id":   roomID,
		"race_id":   raceID,
		"pot":       pot,
		"winners":   winners,
		"cheaters":  cheaters,
		"dead":      dead,
		"cancelled": cancelled,
	}).Info("Race settlement recorded")
}
