// Package telemetry provides application-level observability for the student
// registry: the global slog logger and Prometheus metrics.
//
// All metrics are registered against the default Prometheus registry and
// served on the side-channel HTTP server started by main.go:
//
//	GET http://<host>:<SR_TELEMETRY_METRICS_PORT>/metrics
//
// Default port: 9090. The endpoint is not served by the Gin router, so it
// bypasses authentication and rate limiting and stays off the public ingress.
//
// HTTP metrics use c.FullPath() (route template such as /api/v1/students/:id)
// rather than the raw URL to prevent unbounded label cardinality from
// user-supplied path segments.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/student-registry/student-registry/internal/safego"
)

// HTTP metrics, labelled by method, route template, and status code.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Domain metrics.
//
// LoginAttemptsTotal has a result label of "success" or "failure"; failures
// are not broken down further, matching the deliberately generic failure the
// login endpoint returns.
//
// ActivityEntriesTotal counts appended audit entries by action type.
// ActivityAppendFailuresTotal counts appends that were dropped by the
// swallow-and-log policy; a nonzero rate means the trail is under-reporting.
var (
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total login attempts, by result (success/failure).",
		},
		[]string{"result"},
	)

	ActivityEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_entries_total",
			Help: "Total activity trail entries appended, by action type.",
		},
		[]string{"action_type"},
	)

	ActivityAppendFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_append_failures_total",
			Help: "Activity trail appends dropped because the storage write failed.",
		},
	)
)

// DBOpenConnections tracks the connection pool. Sampled on a timer by
// StartDBStatsCollector rather than per-request to avoid calling
// sql.DB.Stats() on the hot path.
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector launches a background goroutine that samples sql.DB
// connection pool statistics every 30 seconds. The goroutine exits cleanly
// when the database becomes unreachable, which happens automatically when the
// application shuts down and defers db.Close().
func StartDBStatsCollector(db *sql.DB) {
	safego.Go(func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	})
}
