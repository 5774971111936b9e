package metrics

import "github.com/prometheus/client_golang/prometheus"

// Synchronization Prometheus metrics.
var (
	SyncCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "listdex",
			Name:      "sync_cycles_total",
			Help:      "Total number of sync cycles by outcome",
		},
		[]string{"result"}, // "ok" / "skipped" / "error"
	)

	SyncDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "listdex",
			Name:      "sync_documents_total",
			Help:      "Total documents processed by sync cycles",
		},
		[]string{"op", "status"},
	)

	SyncCheckpointSeq = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "listdex",
			Name:      "sync_checkpoint_seq",
			Help:      "Last confirmed change sequence",
		},
	)

	SyncDeadLetterSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "listdex",
			Name:      "sync_dead_letter_size",
			Help:      "Documents currently tracked by the dead-letter list",
		},
	)
)

var syncMetricsRegistered bool

// RegisterSyncMetrics registers Prometheus sync metrics. Must be called once from main.
func RegisterSyncMetrics() {
	if syncMetricsRegistered {
		return
	}
	prometheus.MustRegister(SyncCyclesTotal)
	prometheus.MustRegister(SyncDocumentsTotal)
	prometheus.MustRegister(SyncCheckpointSeq)
	prometheus.MustRegister(SyncDeadLetterSize)
	syncMetricsRegistered = true
}
