package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Synthesis outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeTimeout = "timeout"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

var (
	// TriggersTotal counts trigger pipeline runs.
	// Labels: source (UI/DEVICE), button
	TriggersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistive_triggers_total",
			Help: "Total number of button triggers by source and button",
		},
		[]string{"source", "button"},
	)

	SynthesisTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistive_synthesis_total",
			Help: "Speech synthesis attempts by outcome",
		},
		[]string{"outcome"},
	)

	// SynthesisDuration observes how long the caller waited for audio.
	SynthesisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assistive_synthesis_duration_seconds",
			Help:    "Time spent waiting for speech synthesis in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 10},
		},
	)

	EventPersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistive_event_persist_failures_total",
			Help: "Events that could not be written to the durable log",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistive_notifications_total",
			Help: "Outbound notifications by status",
		},
		[]string{"status"},
	)
)

func RecordSynthesis(outcome string, seconds float64) {
	SynthesisTotal.WithLabelValues(outcome).Inc()
	if outcome != OutcomeSkipped {
		SynthesisDuration.Observe(seconds)
	}
}

func RecordNotification(delivered bool) {
	status := "delivered"
	if !delivered {
		status = "failed"
	}
	NotificationsTotal.WithLabelValues(status).Inc()
}
