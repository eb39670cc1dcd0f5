package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Graph store Prometheus metrics.
var (
	GraphQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cortyx",
			Name:      "graph_query_duration_seconds",
			Help:      "Graph store operation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"op", "mode"},
	)

	GraphQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cortyx",
			Name:      "graph_queries_total",
			Help:      "Total graph store operations by outcome",
		},
		[]string{"op", "mode", "status"},
	)

	SchemaCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cortyx",
			Name:      "schema_cache_total",
			Help:      "Schema cache hits and misses",
		},
		[]string{"kind", "result"}, // kind: doctype/modules, result: hit/miss/error
	)
)

var graphMetricsOnce sync.Once

// RegisterGraphMetrics registers graph and schema cache metrics. Safe to call more than once.
func RegisterGraphMetrics() {
	graphMetricsOnce.Do(func() {
		prometheus.MustRegister(GraphQueryDuration)
		prometheus.MustRegister(GraphQueriesTotal)
		prometheus.MustRegister(SchemaCacheTotal)
	})
}

// ObserveGraphQuery records one graph operation.
func ObserveGraphQuery(op, mode, status string, d time.Duration) {
	GraphQueryDuration.WithLabelValues(op, mode).Observe(d.Seconds())
	GraphQueriesTotal.WithLabelValues(op, mode, status).Inc()
}
