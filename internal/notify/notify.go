// Package notify fans race chatter out to the configured sinks: the
// chat transport, the websocket feed and an optional webhook.
package notify

import (
	"github.com/sirupsen/logrus"
)

// Notifier receives race announcements and leaderboard updates.
type Notifier interface {
	Announce(text string)
	Leaderboard(text string)
}

// Multi forwards every message to all wrapped notifiers.
type Multi struct {
	sinks []Notifier
}

// NewMulti creates a fan-out notifier. Nil sinks are skipped.
func NewMulti(sinks ...Notifier) *Multi {
	kept := make([]Notifier, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &Multi{sinks: kept}
}

// Announce forwards the announcement to every sink.
func (m *Multi) Announce(text string) {
	for _, s := range m.sinks {
		s.Announce(text)
	}
}

// Leaderboard forwards the standings to every sink.
func (m *Multi) Leaderboard(text string) {
	for _, s := range m.sinks {
		s.Leaderboard(text)
	}
}

// LogNotifier writes announcements to the structured log. Used by the
// offline simulator and as a fallback sink.
type LogNotifier struct {
	log *logrus.Entry
}

// NewLogNotifier creates a notifier writing to the given log entry.
func NewLogNotifier(log *logrus.Entry) *LogNotifier {
	return &LogNotifier{log: log.WithField("component", "notify")}
}

// Announce logs the announcement.
func (n *LogNotifier) Announce(text string) {
	n.log.Info(text)
}

// Leaderboard logs the standings.
func (n *LogNotifier) Leaderboard(text string) {
	n.log.Info(text)
}
