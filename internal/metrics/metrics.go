// Package metrics exposes Prometheus metrics for the indexer.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/greenpill-dev-guild/garden-indexer/internal/store"
)

// Manager owns the metric registry and all instrument handles. Each manager
// carries its own registry so parallel test instances never collide on
// registration.
type Manager struct {
	registry *prometheus.Registry

	// Event pipeline metrics
	EventsProcessedTotal *prometheus.CounterVec
	DecodeFailuresTotal  *prometheus.CounterVec
	EventApplyDuration   *prometheus.HistogramVec

	// Entity metrics
	EntitiesMaterialized   *prometheus.GaugeVec
	MembershipUpdatesTotal *prometheus.CounterVec

	// API metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewManager creates a metrics manager with a fresh registry
func NewManager() *Manager {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Manager{
		registry: registry,

		EventsProcessedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "garden_indexer_events_processed_total",
				Help: "Total number of events processed",
			},
			[]string{"chain_id", "event_name", "status"},
		),

		DecodeFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "garden_indexer_decode_failures_total",
				Help: "Total number of events that failed ABI decoding",
			},
			[]string{"chain_id", "event_name"},
		),

		EventApplyDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "garden_indexer_event_apply_duration_seconds",
				Help:    "Time spent applying individual events to entity state",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"chain_id", "event_name"},
		),

		EntitiesMaterialized: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "garden_indexer_entities_materialized",
				Help: "Current number of materialized entities by kind",
			},
			[]string{"kind"},
		),

		MembershipUpdatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "garden_indexer_membership_updates_total",
				Help: "Total number of paired garden/gardener membership updates",
			},
			[]string{"chain_id", "operation"},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "garden_indexer_http_requests_total",
				Help: "Total number of HTTP requests to the query API",
			},
			[]string{"method", "path", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "garden_indexer_http_request_duration_seconds",
				Help:    "Duration of HTTP requests to the query API",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// Registry returns the manager's Prometheus registry for serving /metrics
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// RecordEventProcessed records the outcome and duration of one event
func (m *Manager) RecordEventProcessed(chainID uint64, eventName, status string, duration time.Duration) {
	chain := strconv.FormatUint(chainID, 10)
	m.EventsProcessedTotal.WithLabelValues(chain, eventName, status).Inc()
	m.EventApplyDuration.WithLabelValues(chain, eventName).Observe(duration.Seconds())
}

// RecordDecodeFailure records one undecodable event
func (m *Manager) RecordDecodeFailure(chainID uint64, eventName string) {
	m.DecodeFailuresTotal.WithLabelValues(strconv.FormatUint(chainID, 10), eventName).Inc()
}

// RecordMembershipUpdate records one paired membership write
func (m *Manager) RecordMembershipUpdate(chainID uint64, operation string) {
	m.MembershipUpdatesTotal.WithLabelValues(strconv.FormatUint(chainID, 10), operation).Inc()
}

// UpdateEntityCounts refreshes the per-kind entity gauges
func (m *Manager) UpdateEntityCounts(stats *store.EntityStats) {
	if stats == nil {
		return
	}
	m.EntitiesMaterialized.WithLabelValues("action").Set(float64(stats.Actions))
	m.EntitiesMaterialized.WithLabelValues("garden").Set(float64(stats.Gardens))
	m.EntitiesMaterialized.WithLabelValues("gardener").Set(float64(stats.Gardeners))
}

// RecordHTTPRequest records one query API request
func (m *Manager) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
