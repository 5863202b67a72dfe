package metrics

import "github.com/prometheus/client_golang/prometheus"

// Matching-engine Prometheus metrics.
var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "libris_match",
			Name:      "queries_total",
			Help:      "Total number of queries processed",
		},
		[]string{"outcome"}, // no_match, unique_match, multiple_matches, error
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "libris_match",
			Name:      "query_duration_seconds",
			Help:      "Per-query scoring+classification duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"outcome"},
	)

	ResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "libris_match",
			Name:      "result_cache_total",
			Help:      "Result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	ExclusionCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "libris_match",
			Name:      "exclusion_cache_total",
			Help:      "Exclusion set snapshot calls by backend and result",
		},
		[]string{"backend", "result"}, // backend: redis/memory; result: ok/error
	)

	DisambiguationCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "libris_match",
			Name:      "disambiguation_calls_total",
			Help:      "LLM disambiguation calls by outcome",
		},
		[]string{"outcome"}, // picked, declined, error, budget_exhausted
	)

	DisambiguationTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "libris_match",
			Name:      "disambiguation_tokens_total",
			Help:      "Tokens consumed by disambiguation calls",
		},
		[]string{"type"}, // prompt, total
	)
)

var matchMetricsRegistered bool

// RegisterMatchMetrics registers Prometheus matching-engine metrics. Must be
// called once from main.
func RegisterMatchMetrics() {
	if matchMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(ResultCacheTotal)
	prometheus.MustRegister(ExclusionCacheTotal)
	prometheus.MustRegister(DisambiguationCallsTotal)
	prometheus.MustRegister(DisambiguationTokensTotal)
	matchMetricsRegistered = true
}
