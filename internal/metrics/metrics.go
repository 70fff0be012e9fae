// Package metrics provides the centralized Prometheus metrics registry for the ledger.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "roi_ledger"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	ManualBetsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "manual_bets_created_total",
		Help:      "Total number of bets created from admin submissions",
	})
	ManualBetsUpdatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "manual_bets_updated_total",
		Help:      "Total number of pending bets overwritten by admin submissions",
	})
	DashboardCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dashboard_cache_hits_total",
		Help:      "Total number of dashboard snapshots served from cache",
	})
	DashboardCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dashboard_cache_misses_total",
		Help:      "Total number of dashboard snapshots built from the store",
	})
	AdminRejectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_rejections_total",
		Help:      "Total number of admin requests rejected by the token check",
	})
)

// Gauge metrics
var (
	PendingBets = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pending_bets",
		Help:      "Number of pending bets seen by the last dashboard refresh",
	})
	BlendedROIPercent = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "blended_roi_percent",
		Help:      "Blended ROI across all reports at the last dashboard refresh",
	})
	WebsocketClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_clients",
		Help:      "Number of connected websocket clients",
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(ManualBetsCreatedTotal)
		registry.MustRegister(ManualBetsUpdatedTotal)
		registry.MustRegister(DashboardCacheHitsTotal)
		registry.MustRegister(DashboardCacheMissesTotal)
		registry.MustRegister(AdminRejectionsTotal)

		registry.MustRegister(PendingBets)
		registry.MustRegister(BlendedROIPercent)
		registry.MustRegister(WebsocketClients)

		registry.MustRegister(ReportsImportedTotal)
		registry.MustRegister(BetsGradedTotal)
		registry.MustRegister(UnmatchedBetsTotal)
		registry.MustRegister(ExtractionDuration)

		registry.MustRegister(StoreRequestsTotal)
		registry.MustRegister(StoreRequestDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordManualSubmission records the outcome of an admin bet submission.
func RecordManualSubmission(created, updated int) {
	ManualBetsCreatedTotal.Add(float64(created))
	ManualBetsUpdatedTotal.Add(float64(updated))
}

// RecordDashboardCache records a dashboard cache lookup.
func RecordDashboardCache(hit bool) {
	if hit {
		DashboardCacheHitsTotal.Inc()
		return
	}
	DashboardCacheMissesTotal.Inc()
}

// RecordAdminRejection records a failed admin token check.
func RecordAdminRejection() {
	AdminRejectionsTotal.Inc()
}

// UpdateDashboard updates the dashboard gauges.
func UpdateDashboard(pendingBets int, blendedROI float64) {
	PendingBets.Set(float64(pendingBets))
	BlendedROIPercent.Set(blendedROI)
}

// UpdateWebsocketClients updates the connected client gauge.
func UpdateWebsocketClients(count int) {
	WebsocketClients.Set(float64(count))
}
