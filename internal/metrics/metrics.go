// Package metrics holds the Prometheus collectors exported by ginkit.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Audit trail
	AuditEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_entries_total",
			Help: "Audit entries staged for insertion",
		},
		[]string{"action", "table"},
	)
	AuditSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_skipped_total",
			Help: "Mutations not audited, by reason",
		},
		[]string{"action", "reason"}, // no_actor|filtered
	)

	// Database log core
	LogRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "log_records_written_total",
			Help: "Log records persisted to the database",
		},
		[]string{"level"},
	)

	registerOnce sync.Once
)

// Handler serves the /metrics endpoint.
var Handler = promhttp.Handler

// Init registers all collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestDuration,
			AuditEntriesTotal,
			AuditSkippedTotal,
			LogRecordsTotal,
		)
	})
}
