// Package metrics provides Prometheus counters for ingestion, voting and HTTP traffic
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

const namespace = "showdown"

// Outcome labels
const (
	OutcomeOK           = "ok"
	OutcomeRejected     = "rejected"
	OutcomeError        = "error"
	OutcomeCast         = "cast"
	OutcomeAlreadyVoted = "already_voted"
)

// Metrics contains the Prometheus collectors exported at /metrics
type Metrics struct {
	registry *prometheus.Registry

	snapshotsTotal     *prometheus.CounterVec
	ingestedItemsTotal *prometheus.CounterVec
	votesTotal         *prometheus.CounterVec
	registrationsTotal prometheus.Counter

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewRegistry returns a registry carrying the Go runtime and process collectors
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// NewMetrics creates and registers the application metrics
func NewMetrics(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.snapshotsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_ingested_total",
			Help:      "Total number of relay snapshots received",
		},
		[]string{"outcome"}, // ok, rejected, error
	)

	m.ingestedItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_items_total",
			Help:      "Total number of entities upserted from snapshots",
		},
		[]string{"kind"}, // contest, showdown, couple, dancer
	)

	m.votesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_total",
			Help:      "Total number of vote attempts",
		},
		[]string{"outcome"}, // cast, already_voted, rejected, error
	)

	m.registrationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Total number of audience registrations",
		},
	)

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken for HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}

func (m *Metrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.snapshotsTotal,
		m.ingestedItemsTotal,
		m.votesTotal,
		m.registrationsTotal,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	}
}

// Describe implements the Collector interface
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.getCollectors() {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.getCollectors() {
		collector.Collect(ch)
	}
}

// Registry returns the registry the metrics are exported from
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordSnapshot(outcome string) {
	m.snapshotsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordIngestedItems(kind string, count int) {
	if count > 0 {
		m.ingestedItemsTotal.WithLabelValues(kind).Add(float64(count))
	}
}

func (m *Metrics) RecordVote(outcome string) {
	m.votesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordRegistration() {
	m.registrationsTotal.Inc()
}

// RecordHTTPRequest records a served request against its route template
func (m *Metrics) RecordHTTPRequest(method, route string, statusCode int, seconds float64) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

var Module = fx.Options(
	fx.Provide(NewRegistry),
	fx.Provide(NewMetrics),
)
