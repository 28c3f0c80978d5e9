package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Search engine Prometheus metrics.
var (
	SearchStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "recsearch",
			Name:      "search_stage_duration_seconds",
			Help:      "Duration of search pipeline stages in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"stage"}, // compile / search / match / count / lookup
	)

	FiltersRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recsearch",
			Name:      "filters_rejected_total",
			Help:      "Filter entries rejected during compilation",
		},
		[]string{"reason"},
	)

	StorageFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recsearch",
			Name:      "storage_failures_total",
			Help:      "Failed storage calls by pipeline stage",
		},
		[]string{"stage"},
	)

	UnsatisfiablePlansTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "recsearch",
			Name:      "unsatisfiable_plans_total",
			Help:      "Plans answered without a storage call because they match nothing",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers the search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchStageDuration)
	prometheus.MustRegister(FiltersRejectedTotal)
	prometheus.MustRegister(StorageFailuresTotal)
	prometheus.MustRegister(UnsatisfiablePlansTotal)
	searchMetricsRegistered = true
}

// ObserveStage records the time since start under stage.
func ObserveStage(stage string, start time.Time) {
	SearchStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
