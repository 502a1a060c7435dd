package metrics

import "github.com/prometheus/client_golang/prometheus"

// NotificationMetrics counts email send attempts by type and outcome.
type NotificationMetrics struct {
	emails *prometheus.CounterVec
}

func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	if reg == nil {
		return &NotificationMetrics{}
	}
	emails := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notifications",
		Name:      "emails_total",
		Help:      "Email send attempts by type and status.",
	}, []string{"type", "status"})
	reg.MustRegister(emails)
	return &NotificationMetrics{emails: emails}
}

func (m *NotificationMetrics) IncEmail(emailType, status string) {
	if m == nil || m.emails == nil {
		return
	}
	m.emails.WithLabelValues(normalizeLabel(emailType), normalizeLabel(status)).Inc()
}
