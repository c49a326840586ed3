package metrics

import "github.com/prometheus/client_golang/prometheus"

// Embedding Prometheus metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapstyle",
			Name:      "embedding_requests_total",
			Help:      "Total number of image embedding requests",
		},
		[]string{"endpoint", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "snapstyle",
			Name:      "embedding_request_duration_seconds",
			Help:      "Image embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint", "model"},
	)

	EmbeddingErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapstyle",
			Name:      "embedding_errors_total",
			Help:      "Total embedding errors",
		},
		[]string{"endpoint", "model", "error_type"},
	)

	EmbeddingFailoversTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "snapstyle",
			Name:      "embedding_failovers_total",
			Help:      "Times the embedding client moved past an unavailable endpoint",
		},
	)
)

var embMetricsRegistered bool

// RegisterEmbeddingMetrics registers Prometheus embedding metrics. Must be called once from main.
func RegisterEmbeddingMetrics() {
	if embMetricsRegistered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingErrorsTotal)
	prometheus.MustRegister(EmbeddingFailoversTotal)
	embMetricsRegistered = true
}
