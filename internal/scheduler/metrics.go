package scheduler

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics reports deferred job activity per scheduler.
type Metrics struct {
	scheduled *prometheus.CounterVec
	outcomes  *prometheus.CounterVec
	cancelled *prometheus.CounterVec
	pending   *prometheus.GaugeVec
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// DefaultMetrics returns the instance registered with the global Prometheus registry.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics registers the scheduler collectors with reg, reusing collectors
// that are already registered and panicking on any other registration error.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		scheduled: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sajilo",
				Subsystem: "scheduler",
				Name:      "jobs_scheduled_total",
				Help:      "Deferred jobs registered, including replacements.",
			},
			[]string{"scheduler"},
		)),
		outcomes: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sajilo",
				Subsystem: "scheduler",
				Name:      "jobs_fired_total",
				Help:      "Deferred jobs that reached their deadline, by outcome.",
			},
			[]string{"scheduler", "outcome"},
		)),
		cancelled: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sajilo",
				Subsystem: "scheduler",
				Name:      "jobs_cancelled_total",
				Help:      "Deferred jobs cancelled or replaced before firing.",
			},
			[]string{"scheduler"},
		)),
		pending: register(reg, prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "sajilo",
				Subsystem: "scheduler",
				Name:      "jobs_pending",
				Help:      "Deferred jobs currently waiting for their deadline.",
			},
			[]string{"scheduler"},
		)),
	}
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *Metrics) incScheduled(name string) {
	if m == nil {
		return
	}
	m.scheduled.WithLabelValues(name).Inc()
}

func (m *Metrics) incOutcome(name, outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(name, outcome).Inc()
}

func (m *Metrics) incCancelled(name string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.cancelled.WithLabelValues(name).Add(float64(n))
}

func (m *Metrics) setPending(name string, n int) {
	if m == nil {
		return
	}
	m.pending.WithLabelValues(name).Set(float64(n))
}
