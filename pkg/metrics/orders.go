package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics covers order creation, number collisions, status appends and
// tracking lookups on the API side.
type OrderMetrics struct {
	created        *prometheus.CounterVec
	createFailures *prometheus.CounterVec
	collisions     prometheus.Counter
	createDuration prometheus.Histogram
	statusUpdates  *prometheus.CounterVec
	lookups        *prometheus.CounterVec
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	m := &OrderMetrics{
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Orders persisted, by source.",
		}, []string{"source"}),
		createFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "create_failures_total",
			Help:      "Order creations that did not persist, by reason.",
		}, []string{"reason"}),
		collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "number_collisions_total",
			Help:      "Generated order numbers rejected by the unique index.",
		}),
		createDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "create_duration_seconds",
			Help:      "Time spent creating an order, notifications included.",
			Buckets:   prometheus.DefBuckets,
		}),
		statusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "status_updates_total",
			Help:      "Status updates appended by admins, by new status.",
		}, []string{"status"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "tracking_lookups_total",
			Help:      "Tracking lookups by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.created, m.createFailures, m.collisions, m.createDuration, m.statusUpdates, m.lookups)
	return m
}

func (m *OrderMetrics) IncCreated(source string) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(normalizeLabel(source)).Inc()
}

func (m *OrderMetrics) IncCreateFailure(reason string) {
	if m == nil || m.createFailures == nil {
		return
	}
	m.createFailures.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *OrderMetrics) IncCollision() {
	if m == nil || m.collisions == nil {
		return
	}
	m.collisions.Inc()
}

func (m *OrderMetrics) ObserveCreate(d time.Duration) {
	if m == nil || m.createDuration == nil {
		return
	}
	m.createDuration.Observe(d.Seconds())
}

func (m *OrderMetrics) IncStatusUpdate(status string) {
	if m == nil || m.statusUpdates == nil {
		return
	}
	m.statusUpdates.WithLabelValues(normalizeLabel(status)).Inc()
}

func (m *OrderMetrics) IncLookup(result string) {
	if m == nil || m.lookups == nil {
		return
	}
	m.lookups.WithLabelValues(normalizeLabel(result)).Inc()
}
