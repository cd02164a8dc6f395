// Package metrics exposes Prometheus collectors for lookup outcomes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "cryptodetails"

// Metrics owns a private registry so tests and multiple servers never
// collide on the global default registerer.
type Metrics struct {
	registry  *prometheus.Registry
	lookups   *prometheus.CounterVec
	durations *prometheus.HistogramVec
	stale     prometheus.Counter
}

// New creates and registers all collectors under namespace
// (defaults to "cryptodetails").
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = defaultNamespace
	}
	registry := prometheus.NewRegistry()
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lookups_total",
		Help:      "Symbol lookups by terminal outcome.",
	}, []string{"outcome"})
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "lookup_duration_seconds",
		Help:      "Wall time of the lookup-then-quote round trips.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})
	stale := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_responses_total",
		Help:      "Lookups that completed after a newer submission and were discarded.",
	})
	registry.MustRegister(lookups, durations, stale)

	return &Metrics{
		registry:  registry,
		lookups:   lookups,
		durations: durations,
		stale:     stale,
	}
}

// ObserveLookup records one finished lookup.
func (m *Metrics) ObserveLookup(outcome string, elapsed time.Duration, stale bool) {
	m.lookups.WithLabelValues(outcome).Inc()
	m.durations.WithLabelValues(outcome).Observe(elapsed.Seconds())
	if stale {
		m.stale.Inc()
	}
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
