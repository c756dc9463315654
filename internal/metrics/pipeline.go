package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query pipeline Prometheus metrics.
var (
	PipelineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "querymorph",
			Name:      "pipeline_requests_total",
			Help:      "Query pipeline requests by terminal outcome",
		},
		[]string{"outcome"}, // completed, cache_hit, quota_exceeded, upstream_failure, invalid_input, storage_failure
	)

	ResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "querymorph",
			Name:      "result_cache_total",
			Help:      "Result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "querymorph",
			Name:      "llm_requests_total",
			Help:      "Chat completion calls by operation and status",
		},
		[]string{"op", "status"}, // op: expand, synthesize
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "querymorph",
			Name:      "llm_request_duration_seconds",
			Help:      "Chat completion duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"op"},
	)

	RankDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "querymorph",
			Name:      "rank_duration_seconds",
			Help:      "Full-scan ranking duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	RankDocumentsScanned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "querymorph",
			Name:      "rank_documents_scanned",
			Help:      "Documents scanned per ranking call",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	IngestedDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "querymorph",
			Name:      "ingested_documents_total",
			Help:      "Documents ingested by result",
		},
		[]string{"result"}, // "stored" / "rejected" / "failed"
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(PipelineRequestsTotal)
	prometheus.MustRegister(ResultCacheTotal)
	prometheus.MustRegister(LLMRequestsTotal)
	prometheus.MustRegister(LLMRequestDuration)
	prometheus.MustRegister(RankDuration)
	prometheus.MustRegister(RankDocumentsScanned)
	prometheus.MustRegister(IngestedDocumentsTotal)
	pipelineMetricsRegistered = true
}
