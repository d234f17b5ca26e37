// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Engine metrics
	PassesTotal         *prometheus.CounterVec
	PassDuration        prometheus.Histogram
	PassTimeouts        prometheus.Counter
	NodesEvaluated      prometheus.Counter
	MissingInputs       *prometheus.CounterVec
	SubstitutionsTotal  prometheus.Counter
	CacheHits           prometheus.Counter
	CacheMisses         prometheus.Counter
	CacheInvalidations  prometheus.Counter
	GraphNodes          prometheus.Gauge

	// Feed metrics
	TicksReceived    prometheus.Counter
	BarsReceived     prometheus.Counter
	FeedReconnects   prometheus.Counter
	SignalsPublished *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulPass prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "fx_signal_lab"
	}

	return &Metrics{
		// Engine metrics
		PassesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "passes_total",
			Help:      "Total number of evaluation passes by status",
		}, []string{"status"}),
		PassDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "pass_duration_seconds",
			Help:      "Evaluation pass duration in seconds",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		PassTimeouts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "pass_timeouts_total",
			Help:      "Total number of passes aborted by the time budget",
		}),
		NodesEvaluated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "nodes_evaluated_total",
			Help:      "Total number of function nodes evaluated",
		}),
		MissingInputs: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "missing_inputs_total",
			Help:      "Total number of missing-input substitutions by function type",
		}, []string{"function_type"}),
		SubstitutionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "substitutions_total",
			Help:      "Total number of default substitutions across all passes",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "cache_hits_total",
			Help:      "Total number of result cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "cache_misses_total",
			Help:      "Total number of result cache misses",
		}),
		CacheInvalidations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "cache_invalidations_total",
			Help:      "Total number of cache entries cleared by cascades",
		}),
		GraphNodes: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "graph_nodes",
			Help:      "Current number of registered graph nodes",
		}),

		// Feed metrics
		TicksReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "ticks_received_total",
			Help:      "Total number of raw scalar updates received",
		}),
		BarsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "bars_received_total",
			Help:      "Total number of OHLC bars received",
		}),
		FeedReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "reconnects_total",
			Help:      "Total number of websocket reconnects",
		}),
		SignalsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "signals_published_total",
			Help:      "Total number of signals published by direction",
		}, []string{"direction"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulPass: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_pass_timestamp",
			Help:      "Unix timestamp of last successful evaluation pass",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordPass records one evaluation pass.
func RecordPass(status string, seconds float64, timedOut bool) {
	DefaultMetrics.PassesTotal.WithLabelValues(status).Inc()
	DefaultMetrics.PassDuration.Observe(seconds)
	if timedOut {
		DefaultMetrics.PassTimeouts.Inc()
	}
}

// RecordNodeEvaluated increments the evaluated function node counter.
func RecordNodeEvaluated() {
	DefaultMetrics.NodesEvaluated.Inc()
}

// RecordPassSuccess marks the time a pass last completed without error.
func RecordPassSuccess(at time.Time) {
	DefaultMetrics.LastSuccessfulPass.Set(float64(at.Unix()))
}

// RecordMissingInput records one missing-input substitution.
func RecordMissingInput(functionType string) {
	DefaultMetrics.MissingInputs.WithLabelValues(functionType).Inc()
}

// RecordSubstitutions adds a pass's substitution count to the running total.
func RecordSubstitutions(n int) {
	if n > 0 {
		DefaultMetrics.SubstitutionsTotal.Add(float64(n))
	}
}

// RecordCacheStats updates cache counters from a pass delta.
func RecordCacheStats(hits, misses uint64) {
	DefaultMetrics.CacheHits.Add(float64(hits))
	DefaultMetrics.CacheMisses.Add(float64(misses))
}

// RecordInvalidations records cache entries cleared by a cascade.
func RecordInvalidations(n int) {
	if n > 0 {
		DefaultMetrics.CacheInvalidations.Add(float64(n))
	}
}

// UpdateGraphSize updates the registered node gauge.
func UpdateGraphSize(nodes int) {
	DefaultMetrics.GraphNodes.Set(float64(nodes))
}

// RecordTick increments the raw scalar update counter.
func RecordTick() {
	DefaultMetrics.TicksReceived.Inc()
}

// RecordBar increments the OHLC bar counter.
func RecordBar() {
	DefaultMetrics.BarsReceived.Inc()
}

// RecordReconnect increments the websocket reconnect counter.
func RecordReconnect() {
	DefaultMetrics.FeedReconnects.Inc()
}

// RecordSignal records a published signal by direction.
func RecordSignal(direction string) {
	DefaultMetrics.SignalsPublished.WithLabelValues(direction).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
