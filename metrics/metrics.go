// Package metrics holds the prometheus collectors of the ERP engine.
//
// Collectors are registered once on the default registry. Services record
// into them directly; the api package serves them at /metrics.
package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	workflowTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "erp_workflow_transitions_total",
			Help: "Workflow state transitions by entity and target state",
		},
		[]string{"entity", "to"},
	)

	inventoryAdjustments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "erp_inventory_adjustments_total",
			Help: "Inventory ledger rows appended, by transaction type",
		},
		[]string{"type"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "erp_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	dbConnectionsInUse = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "erp_db_connections_in_use",
		Help: "Database connections currently in use",
	})

	dbConnectionsIdle = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "erp_db_connections_idle",
		Help: "Idle database connections",
	})
)

func init() {
	prometheus.MustRegister(
		workflowTransitions,
		inventoryAdjustments,
		httpRequestDuration,
		dbConnectionsInUse,
		dbConnectionsIdle,
	)
}

// Handler returns the prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordTransition counts one workflow state change, e.g. ("leave", "Approved").
func RecordTransition(entity, to string) {
	workflowTransitions.WithLabelValues(entity, to).Inc()
}

func RecordAdjustment(txType string) {
	inventoryAdjustments.WithLabelValues(txType).Inc()
}

// RecordHTTPRequest observes one served request. route is the chi route
// pattern, not the raw path, to keep label cardinality bounded.
func RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// ObserveDB copies the pool statistics into the connection gauges.
func ObserveDB(stats sql.DBStats) {
	dbConnectionsInUse.Set(float64(stats.InUse))
	dbConnectionsIdle.Set(float64(stats.Idle))
}
