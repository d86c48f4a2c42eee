package hfsm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// machineMetrics holds the Prometheus collectors registered by
// WithMetrics. It observes dispatch outcomes; it never influences them.
type machineMetrics struct {
	fires   *prometheus.CounterVec
	latency prometheus.Histogram
}

func newMachineMetrics(reg prometheus.Registerer, namespace string) *machineMetrics {
	m := &machineMetrics{
		fires: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fires_total",
			Help:      "Triggers fired, by outcome.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fire_duration_seconds",
			Help:      "Time spent resolving and applying a single fire.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.fires, m.latency)
	return m
}

func (m *machineMetrics) observe(outcome string, d time.Duration) {
	m.fires.WithLabelValues(outcome).Inc()
	m.latency.Observe(d.Seconds())
}
