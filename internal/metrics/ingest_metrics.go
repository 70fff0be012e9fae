package metrics

import "github.com/prometheus/client_golang/prometheus"

// Import outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	ReportsImportedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_imported_total",
		Help:      "Total number of PDF report imports by outcome",
	}, []string{"outcome"})

	BetsGradedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bets_graded_total",
		Help:      "Total number of pending bets graded by resulting status",
	}, []string{"status"})

	UnmatchedBetsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unmatched_bets_total",
		Help:      "Total number of extracted results that matched no pending bet",
	})

	ExtractionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "extraction_duration_seconds",
		Help:      "Latency of document extraction requests in seconds",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"outcome"})
)

// RecordReportImport records the outcome of a report import.
func RecordReportImport(success bool) {
	ReportsImportedTotal.WithLabelValues(outcome(success)).Inc()
}

// RecordBetGraded records a graded bet.
func RecordBetGraded(status string) {
	BetsGradedTotal.WithLabelValues(status).Inc()
}

// RecordUnmatched records extracted results that found no pending bet.
func RecordUnmatched(count int) {
	UnmatchedBetsTotal.Add(float64(count))
}

// RecordExtraction records an extraction request.
func RecordExtraction(durationSeconds float64, success bool) {
	ExtractionDuration.WithLabelValues(outcome(success)).Observe(durationSeconds)
}

func outcome(success bool) string {
	if success {
		return OutcomeSuccess
	}
	return OutcomeFailure
}
