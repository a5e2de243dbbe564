// Package metrics provides the centralized Prometheus metrics registry for the race engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RacesStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stable_stakes",
		Name:      "races_started_total",
		Help:      "Total number of races started",
	})
	RacesSettledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stable_stakes",
		Name:      "races_settled_total",
		Help:      "Total number of races settled with winners",
	})
	RacesCancelledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stable_stakes",
		Name:      "races_cancelled_total",
		Help:      "Total number of races cancelled with refunds",
	})
	EntriesAdmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stable_stakes",
		Name:      "entries_admitted_total",
		Help:      "Total number of participants admitted to races",
	})
	WagersPlacedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stable_stakes",
		Name:      "wagers_placed_total",
		Help:      "Total number of wagers placed or replaced",
	})
	WagersSettledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stable_stakes",
		Name:      "wagers_settled_total",
		Help:      "Total number of wagers settled",
	})
	WagersWonTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stable_stakes",
		Name:      "wagers_won_total",
		Help:      "Total number of wagers that paid out",
	})
	WagersRefundedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stable_stakes",
		Name:      "wagers_refunded_total",
		Help:      "Total number of wagers refunded on cancellation",
	})
	DosesInjectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stable_stakes",
		Name:      "doses_injected_total",
		Help:      "Total number of doses injected into mounts or handlers",
	})
	MountsDiedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stable_stakes",
		Name:      "mounts_died_total",
		Help:      "Total number of mounts dead of an overdose",
	})
	CheatersCaughtTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stable_stakes",
		Name:      "cheaters_caught_total",
		Help:      "Total number of entries disqualified by the anti-cheat pass",
	})
)

// Gauge metrics
var (
	ActiveRaces = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stable_stakes",
		Name:      "active_races",
		Help:      "Number of races currently accepting entries or running",
	})
	CurrentPot = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stable_stakes",
		Name:      "current_pot",
		Help:      "Prize pool of the most recently updated race",
	})
	HeldWagerVolume = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stable_stakes",
		Name:      "held_wager_volume",
		Help:      "Sum of currently held wager amounts",
	})
)

// Histogram metrics
var (
	RaceDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stable_stakes",
		Name:      "race_duration_seconds",
		Help:      "Wall-clock duration of races from start to settlement",
		Buckets:   []float64{30, 60, 120, 300, 600, 1800, 3600},
	})
	RaceRounds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stable_stakes",
		Name:      "race_rounds",
		Help:      "Number of rounds a race took to complete",
		Buckets:   []float64{5, 10, 15, 20, 30, 50},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(RacesStartedTotal)
		registry.MustRegister(RacesSettledTotal)
		registry.MustRegister(RacesCancelledTotal)
		registry.MustRegister(EntriesAdmittedTotal)
		registry.MustRegister(WagersPlacedTotal)
		registry.MustRegister(WagersSettledTotal)
		registry.MustRegister(WagersWonTotal)
		registry.MustRegister(WagersRefundedTotal)
		registry.MustRegister(DosesInjectedTotal)
		registry.MustRegister(MountsDiedTotal)
		registry.MustRegister(CheatersCaughtTotal)

		// Register gauge metrics
		registry.MustRegister(ActiveRaces)
		registry.MustRegister(CurrentPot)
		registry.MustRegister(HeldWagerVolume)

		// Register histogram metrics
		registry.MustRegister(RaceDuration)
		registry.MustRegister(RaceRounds)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}
