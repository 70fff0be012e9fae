package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	StoreRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_requests_total",
		Help:      "Total number of data store operations by operation and outcome",
	}, []string{"operation", "outcome"})

	StoreRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_request_duration_seconds",
		Help:      "Latency of data store operations in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

// RecordStoreRequest records one data store operation.
func RecordStoreRequest(operation string, durationSeconds float64, err error) {
	StoreRequestsTotal.WithLabelValues(operation, outcome(err == nil)).Inc()
	StoreRequestDuration.WithLabelValues(operation).Observe(durationSeconds)
}
