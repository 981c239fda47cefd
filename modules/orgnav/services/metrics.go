package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type navMetrics struct {
	locateTotal    *prometheus.CounterVec
	locateAttempts prometheus.Histogram
	viewportOps    *prometheus.CounterVec
	searchTotal    *prometheus.CounterVec
	searchResults  prometheus.Histogram
}

var metricsSingleton = sync.OnceValue(func() *navMetrics {
	return &navMetrics{
		locateTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orgnav",
			Subsystem: "locator",
			Name:      "resolve_total",
			Help:      "Node locator resolutions broken down by outcome.",
		}, []string{"result"}),
		locateAttempts: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "orgnav",
			Subsystem: "locator",
			Name:      "attempts",
			Help:      "Lookup attempts spent per resolution.",
			Buckets:   []float64{1, 2, 3, 5, 10, 20, 35, 50},
		}),
		viewportOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orgnav",
			Subsystem: "viewport",
			Name:      "operations_total",
			Help:      "Viewport operations broken down by operation and result.",
		}, []string{"op", "result"}),
		searchTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orgnav",
			Subsystem: "search",
			Name:      "queries_total",
			Help:      "Search queries broken down by result.",
		}, []string{"result"}),
		searchResults: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "orgnav",
			Subsystem: "search",
			Name:      "results",
			Help:      "Number of results returned per query.",
			Buckets:   []float64{0, 1, 2, 5, 10},
		}),
	}
})

func getMetrics() *navMetrics {
	return metricsSingleton()
}
