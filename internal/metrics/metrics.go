package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for assessment activity.
type Metrics struct {
	submissions     *prometheus.CounterVec
	scoringDuration *prometheus.HistogramVec
	sessionOps      *prometheus.CounterVec
	inFlight        prometheus.Gauge
}

var (
	defaultOnce sync.Once
	shared      *Metrics
)

// Default returns the process-wide instance registered with the global registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		shared = MustNew(prometheus.DefaultRegisterer)
	})
	return shared
}

// MustNew registers a fresh set of collectors on reg and panics on conflicts.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "soulmatch",
				Subsystem: "assessment",
				Name:      "submissions_total",
				Help:      "Assessment submissions by outcome.",
			},
			[]string{"outcome"},
		),
		scoringDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "soulmatch",
				Subsystem: "assessment",
				Name:      "scoring_duration_seconds",
				Help:      "Latency of the generative scoring call.",
				Buckets:   []float64{0.5, 1, 2, 4, 8, 15, 30, 60, 120},
			},
			[]string{"status"},
		),
		sessionOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "soulmatch",
				Subsystem: "assessment",
				Name:      "session_operations_total",
				Help:      "Wizard operations applied to assessment sessions.",
			},
			[]string{"op"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "soulmatch",
				Subsystem: "assessment",
				Name:      "submissions_in_flight",
				Help:      "Submissions currently waiting on the scoring model.",
			},
		),
	}
	reg.MustRegister(m.submissions, m.scoringDuration, m.sessionOps, m.inFlight)
	return m
}

// ObserveSubmission counts a finished submission.
func (m *Metrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

// ObserveScoring records how long a scoring call took.
func (m *Metrics) ObserveScoring(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.scoringDuration.WithLabelValues(status).Observe(d.Seconds())
}

// ObserveSessionOp counts a wizard operation (start, answer, next, prev, cancel).
func (m *Metrics) ObserveSessionOp(op string) {
	if m == nil {
		return
	}
	m.sessionOps.WithLabelValues(op).Inc()
}

// SubmissionStarted increments the in-flight gauge and returns its decrement.
func (m *Metrics) SubmissionStarted() func() {
	if m == nil {
		return func() {}
	}
	m.inFlight.Inc()
	return m.inFlight.Dec
}
