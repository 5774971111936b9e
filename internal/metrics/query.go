package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query-path Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "listdex",
			Name:      "search_requests_total",
			Help:      "Total search requests by serving path",
		},
		[]string{"path", "status"}, // path: "index" / "relational"
	)

	SearchFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "listdex",
			Name:      "search_fallbacks_total",
			Help:      "Searches that fell back from the index to the relational path",
		},
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers Prometheus query metrics. Must be called once from main.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchFallbacksTotal)
	queryMetricsRegistered = true
}
