package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the game counters. A nil *Metrics is valid and records
// nothing, so callers need not check whether metrics are enabled.
type Metrics struct {
	Hits     prometheus.Counter
	Misses   prometheus.Counter
	Rounds   *prometheus.CounterVec
	Sessions prometheus.Gauge
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Hits: f.NewCounter(prometheus.CounterOpts{
			Name: "whackamole_hits_total",
			Help: "Pointer downs that landed on the enemy cell.",
		}),
		Misses: f.NewCounter(prometheus.CounterOpts{
			Name: "whackamole_misses_total",
			Help: "Pointer downs that missed the enemy cell.",
		}),
		Rounds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "whackamole_rounds_total",
			Help: "Finished rounds by end reason.",
		}, []string{"reason"}),
		Sessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "whackamole_sessions_active",
			Help: "Web sessions currently running a game loop.",
		}),
	}
}

func (m *Metrics) ObserveClick(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.Hits.Inc()
	} else {
		m.Misses.Inc()
	}
}

func (m *Metrics) ObserveRound(reason string) {
	if m == nil {
		return
	}
	m.Rounds.WithLabelValues(reason).Inc()
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.Sessions.Inc()
}

func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.Sessions.Dec()
}
