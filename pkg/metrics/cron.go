package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CronJobMetrics tracks the maintenance jobs run by cron-worker. A nil
// receiver, or one built without a registerer, records nothing.
type CronJobMetrics struct {
	runs     map[bool]*prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	counter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cron", Name: name, Help: help,
		}, []string{"job"})
	}
	m := &CronJobMetrics{
		runs: map[bool]*prometheus.CounterVec{
			true:  counter("job_success_total", "Cron job runs that returned nil."),
			false: counter("job_failure_total", "Cron job runs that returned an error."),
		},
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_duration_seconds",
			Help:      "Wall time of a single cron job run.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 15, 60},
		}, []string{"job"}),
	}
	reg.MustRegister(m.runs[true], m.runs[false], m.duration)
	return m
}

func (c *CronJobMetrics) ObserveDuration(job string, d time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(job)).Observe(d.Seconds())
}

func (c *CronJobMetrics) IncSuccess(job string) { c.count(job, true) }

func (c *CronJobMetrics) IncFailure(job string) { c.count(job, false) }

func (c *CronJobMetrics) count(job string, ok bool) {
	if c == nil || c.runs == nil {
		return
	}
	c.runs[ok].WithLabelValues(normalizeLabel(job)).Inc()
}
