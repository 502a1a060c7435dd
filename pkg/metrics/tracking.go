package metrics

import "github.com/prometheus/client_golang/prometheus"

// TrackingMetrics is used by the customer-side tracking client.
type TrackingMetrics struct {
	attempts *prometheus.CounterVec
}

func NewTrackingMetrics(reg prometheus.Registerer) *TrackingMetrics {
	if reg == nil {
		return &TrackingMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tracking",
		Name:      "fetch_attempts_total",
		Help:      "Tracking fetch attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(attempts)
	return &TrackingMetrics{attempts: attempts}
}

func (m *TrackingMetrics) IncAttempt(outcome string) {
	if m == nil || m.attempts == nil {
		return
	}
	m.attempts.WithLabelValues(normalizeLabel(outcome)).Inc()
}
