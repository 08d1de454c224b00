// Package metrics defines Prometheus metrics for the arbor server.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arbor_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbor_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbor_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	CycleRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "arbor_cycle_rejections_total",
			Help: "Parent assignments rejected because they would create a cycle",
		},
	)

	AuditQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "arbor_audit_queue_depth",
			Help: "Current audit queue depth",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "arbor_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)

	NodeCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "arbor_nodes_total",
			Help: "Total node count",
		},
	)

	RootCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "arbor_roots_total",
			Help: "Total root node count",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		CycleRejections, AuditQueueDepth, WSConnections,
		NodeCount, RootCount,
	)
}
