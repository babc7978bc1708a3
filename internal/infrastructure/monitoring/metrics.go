package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing, so components can run without monitoring in tests.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Aggregation metrics
	AggregationPasses     prometheus.Counter
	CatalogEmissions      *prometheus.CounterVec
	CatalogDedupSkips     prometheus.Counter
	CatalogItems          prometheus.Gauge
	SourceErrors          *prometheus.CounterVec
	ShortcutResubscribes  prometheus.Counter
	SourceBreakerRejected *prometheus.CounterVec

	// Ranking metrics
	RankingDuration prometheus.Histogram
	RankingResults  prometheus.Gauge

	// Usage and action metrics
	LaunchesRecorded prometheus.Counter
	OverrideChanges  *prometheus.CounterVec
	Actions          *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a metrics collector backed by its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "path"},
		),

		AggregationPasses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "catalog_aggregation_passes_total",
				Help: "Total number of catalog recomputations",
			},
		),
		CatalogEmissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_emissions_total",
				Help: "Catalog emissions by kind (placeholder, full)",
			},
			[]string{"kind"},
		),
		CatalogDedupSkips: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "catalog_dedup_skips_total",
				Help: "Recomputations suppressed because nothing visible changed",
			},
		),
		CatalogItems: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalog_items",
				Help: "Number of items in the last emitted catalog",
			},
		),
		SourceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_source_errors_total",
				Help: "Source subscription failures by source",
			},
			[]string{"source"},
		),
		ShortcutResubscribes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "catalog_shortcut_resubscribes_total",
				Help: "Shortcut subscriptions restarted after an application set change",
			},
		),
		SourceBreakerRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_source_breaker_rejected_total",
				Help: "Resubscriptions rejected by an open circuit breaker",
			},
			[]string{"source"},
		),

		RankingDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "catalog_ranking_duration_seconds",
				Help:    "Ranking and filter pipeline duration in seconds",
				Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
			},
		),
		RankingResults: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalog_ranking_results",
				Help: "Number of items in the last ranked result",
			},
		),

		LaunchesRecorded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "catalog_launches_recorded_total",
				Help: "Usage records written to the counter store",
			},
		),
		OverrideChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_override_changes_total",
				Help: "Override mutations by override kind and operation",
			},
			[]string{"override", "op"},
		),
		Actions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_actions_total",
				Help: "Dispatched user actions by action and item kind",
			},
			[]string{"action", "kind"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalog_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalog_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
	}
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// UpdateUptime refreshes the uptime gauge
func (m *Metrics) UpdateUptime() {
	if m == nil {
		return
	}
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAggregation counts one recomputation of the catalog
func (m *Metrics) RecordAggregation() {
	if m == nil {
		return
	}
	m.AggregationPasses.Inc()
}

// RecordEmission counts an emitted catalog and tracks its size
func (m *Metrics) RecordEmission(kind string, items int) {
	if m == nil {
		return
	}
	m.CatalogEmissions.WithLabelValues(kind).Inc()
	m.CatalogItems.Set(float64(items))
}

// RecordDedupSkip counts a suppressed emission
func (m *Metrics) RecordDedupSkip() {
	if m == nil {
		return
	}
	m.CatalogDedupSkips.Inc()
}

// RecordSourceError counts a failed source subscription
func (m *Metrics) RecordSourceError(source string) {
	if m == nil {
		return
	}
	m.SourceErrors.WithLabelValues(source).Inc()
}

// RecordBreakerRejected counts a resubscription rejected by an open breaker
func (m *Metrics) RecordBreakerRejected(source string) {
	if m == nil {
		return
	}
	m.SourceBreakerRejected.WithLabelValues(source).Inc()
}

// RecordShortcutResubscribe counts a shortcut subscription restart
func (m *Metrics) RecordShortcutResubscribe() {
	if m == nil {
		return
	}
	m.ShortcutResubscribes.Inc()
}

// RecordRanking records one ranking evaluation
func (m *Metrics) RecordRanking(duration time.Duration, results int) {
	if m == nil {
		return
	}
	m.RankingDuration.Observe(duration.Seconds())
	m.RankingResults.Set(float64(results))
}

// IncLaunchesRecorded counts one usage record
func (m *Metrics) IncLaunchesRecorded() {
	if m == nil {
		return
	}
	m.LaunchesRecorded.Inc()
}

// RecordOverrideChange counts one override mutation
func (m *Metrics) RecordOverrideChange(override, op string) {
	if m == nil {
		return
	}
	m.OverrideChanges.WithLabelValues(override, op).Inc()
}

// RecordAction counts one dispatched action
func (m *Metrics) RecordAction(action, kind string) {
	if m == nil {
		return
	}
	m.Actions.WithLabelValues(action, kind).Inc()
}

// RecordWSMessage records WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments active WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// DecWSConnections decrements active WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}
