package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects estimation API counters and histograms.
type Metrics struct {
	registry       *prometheus.Registry
	EstimatesTotal *prometheus.CounterVec
	BatchFailures  *prometheus.CounterVec
	BatchSize      prometheus.Histogram
}

// NewMetrics builds and registers the API metrics on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		EstimatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timbervol_estimates_total",
			Help: "Number of per-tree estimates computed, by operation.",
		}, []string{"operation"}),
		BatchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timbervol_batch_failures_total",
			Help: "Number of failed estimation batches, by operation and error category.",
		}, []string{"operation", "category"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "timbervol_batch_size_trees",
			Help:    "Distribution of estimation batch sizes.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}

	registry.MustRegister(m.EstimatesTotal, m.BatchFailures, m.BatchSize)
	return m
}

// Registry exposes the backing registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
