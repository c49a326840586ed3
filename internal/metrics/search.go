package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapstyle",
			Name:      "search_requests_total",
			Help:      "Total number of similarity searches by query variant",
		},
		[]string{"variant", "status"}, // variant: baseline / price_aware
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "snapstyle",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"variant"},
	)

	SearchMatchStatusTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapstyle",
			Name:      "search_match_status_total",
			Help:      "Search outcomes by match status tier",
		},
		[]string{"status"}, // strong / weak / none
	)

	SearchVariantFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "snapstyle",
			Name:      "search_variant_fallbacks_total",
			Help:      "Price-aware queries that fell back to the baseline variant",
		},
	)

	SearchUnscoredCandidatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "snapstyle",
			Name:      "search_unscored_candidates_total",
			Help:      "Candidates retained without a similarity score (legacy index rows)",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchMatchStatusTotal)
	prometheus.MustRegister(SearchVariantFallbacksTotal)
	prometheus.MustRegister(SearchUnscoredCandidatesTotal)
	searchMetricsRegistered = true
}
