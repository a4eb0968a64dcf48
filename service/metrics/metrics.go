package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// Solana RPC Metrics
	solanaRPCCallsTotal   *prometheus.CounterVec
	solanaRPCCallDuration *prometheus.HistogramVec

	// Classifier Metrics
	classifierCallsTotal   *prometheus.CounterVec
	classifierCallDuration *prometheus.HistogramVec

	// Preparation Metrics
	preparationsTotal   *prometheus.CounterVec
	preparationDuration *prometheus.HistogramVec
	feeEstimateFallback *prometheus.CounterVec

	// Domain Resolution Metrics
	domainLookupsTotal *prometheus.CounterVec
	domainCacheHits    *prometheus.CounterVec

	// Database Metrics
	dbQueryDuration   *prometheus.HistogramVec
	dbOperationsTotal *prometheus.CounterVec

	// HTTP Metrics
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec

	// NATS Metrics
	natsMessagesPublished *prometheus.CounterVec
	natsPublishDuration   *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		solanaRPCCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_calls_total",
				Help: "Total number of Solana RPC calls by method and status",
			},
			[]string{"method", "status", "endpoint"},
		),
		solanaRPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_call_duration_seconds",
				Help:    "Duration of Solana RPC calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		classifierCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "classifier_calls_total",
				Help: "Total number of intent classifier calls by outcome (ok, unparseable, error)",
			},
			[]string{"outcome"},
		),
		classifierCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "classifier_call_duration_seconds",
				Help:    "Duration of intent classifier calls in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"model"},
		),
		preparationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "preparations_total",
				Help: "Total number of transaction preparations by kind and status",
			},
			[]string{"kind", "status"},
		),
		preparationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "preparation_duration_seconds",
				Help:    "Duration of transaction preparation in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		feeEstimateFallback: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fee_estimate_fallbacks_total",
				Help: "Number of times fee estimation failed and the fixed fallback was used",
			},
			[]string{"endpoint"},
		),
		domainLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domain_lookups_total",
				Help: "Total number of external name-service lookups by status",
			},
			[]string{"status"},
		),
		domainCacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domain_cache_hits_total",
				Help: "Domain resolution cache hits and misses",
			},
			[]string{"result"},
		),
		dbQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_query_duration_seconds",
				Help:    "Duration of database queries in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		dbOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "db_operations_total",
				Help: "Total number of database operations by status",
			},
			[]string{"operation", "table", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"handler", "method"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by handler, method, and status code",
			},
			[]string{"handler", "method", "status_code"},
		),
		natsMessagesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nats_messages_published_total",
				Help: "Total number of NATS messages published by subject and status",
			},
			[]string{"subject", "status"},
		),
		natsPublishDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nats_publish_duration_seconds",
				Help:    "Duration of NATS publish operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"subject"},
		),
	}
}

// RecordRPCCall records a Solana RPC call with its duration.
func (m *Metrics) RecordRPCCall(method, status, endpoint string, duration float64) {
	m.solanaRPCCallsTotal.WithLabelValues(method, status, endpoint).Inc()
	m.solanaRPCCallDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordClassifierCall records an intent classifier call outcome.
func (m *Metrics) RecordClassifierCall(outcome, model string, duration float64) {
	m.classifierCallsTotal.WithLabelValues(outcome).Inc()
	m.classifierCallDuration.WithLabelValues(model).Observe(duration)
}

// RecordPreparation records a transfer or swap preparation attempt.
// kind is "transfer" or "swap"; status is "success" or the error kind.
func (m *Metrics) RecordPreparation(kind, status string, duration float64) {
	m.preparationsTotal.WithLabelValues(kind, status).Inc()
	m.preparationDuration.WithLabelValues(kind).Observe(duration)
}

// RecordFeeEstimateFallback records that fee estimation failed and the
// fixed fallback value was used instead.
func (m *Metrics) RecordFeeEstimateFallback(endpoint string) {
	m.feeEstimateFallback.WithLabelValues(endpoint).Inc()
}

// RecordDomainLookup records an external name-service lookup.
func (m *Metrics) RecordDomainLookup(status string) {
	m.domainLookupsTotal.WithLabelValues(status).Inc()
}

// RecordDomainCache records a domain cache hit or miss.
func (m *Metrics) RecordDomainCache(result string) {
	m.domainCacheHits.WithLabelValues(result).Inc()
}

// RecordDBQuery records a database query with its duration and outcome.
func (m *Metrics) RecordDBQuery(operation, table string, duration float64, err error) {
	m.dbQueryDuration.WithLabelValues(operation, table).Observe(duration)
	status := "success"
	if err != nil {
		status = "error"
	}
	m.dbOperationsTotal.WithLabelValues(operation, table, status).Inc()
}

// RecordHTTPRequest records an HTTP request with its duration and status.
func (m *Metrics) RecordHTTPRequest(handler, method string, statusCode int, duration float64) {
	m.httpRequestDuration.WithLabelValues(handler, method).Observe(duration)
	m.httpRequestsTotal.WithLabelValues(handler, method, statusCodeToString(statusCode)).Inc()
}

// RecordNATSPublish records a NATS publish operation.
func (m *Metrics) RecordNATSPublish(subject, status string, duration float64) {
	m.natsMessagesPublished.WithLabelValues(subject, status).Inc()
	m.natsPublishDuration.WithLabelValues(subject).Observe(duration)
}

// statusCodeToString converts an HTTP status code to its class to keep
// label cardinality low (e.g., 404 -> "4xx").
func statusCodeToString(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
