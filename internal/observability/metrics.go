// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"solana-token-forge/internal/domain"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "solana_token_forge"

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry
	maxSlot  atomic.Int64

	// Issuance metrics
	IssuancesTotal    *prometheus.CounterVec // outcome, kind
	FeesCollected     prometheus.Counter
	RevocationsTotal  *prometheus.CounterVec // capability
	IssuanceDuration  prometheus.Histogram
	SupplyMintedTotal prometheus.Counter

	// Governance metrics
	GovernanceOpsTotal *prometheus.CounterVec // op, outcome
	DisclosureVersion  prometheus.Gauge

	// Chain watch metrics
	ChainEventsObserved *prometheus.CounterVec // outcome
	HighestSlotSeen     prometheus.Gauge

	// Latency metrics
	RPCCallLatency *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	StartTime prometheus.Gauge
}

// NewMetrics creates metrics registered on a fresh registry, so tests and
// parallel services never collide on names.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,

		IssuancesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "issuance",
			Name:      "units_total",
			Help:      "Issuance units by outcome and error kind",
		}, []string{"outcome", "kind"}),
		FeesCollected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "issuance",
			Name:      "fees_collected_lamports_total",
			Help:      "Lamports transferred to the treasury by committed units",
		}),
		RevocationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "issuance",
			Name:      "revocations_total",
			Help:      "Capabilities revoked at issuance",
		}, []string{"capability"}),
		IssuanceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "issuance",
			Name:      "unit_duration_seconds",
			Help:      "Wall time of one issuance unit",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		SupplyMintedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "issuance",
			Name:      "tokens_issued_total",
			Help:      "Assets created by committed units",
		}),

		GovernanceOpsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "governance",
			Name:      "operations_total",
			Help:      "Disclosure operations by op and outcome",
		}, []string{"op", "outcome"}),
		DisclosureVersion: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "governance",
			Name:      "disclosure_version",
			Help:      "Version of the last written disclosure record",
		}),

		ChainEventsObserved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watch",
			Name:      "chain_events_total",
			Help:      "Issuance transactions observed in program logs",
		}, []string{"outcome"}),
		HighestSlotSeen: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "watch",
			Name:      "highest_slot_seen",
			Help:      "Highest slot observed in log notifications",
		}),

		RPCCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "RPC call latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Database query errors",
		}, []string{"database", "operation"}),

		StartTime: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "start_time_seconds",
			Help:      "Unix time the process started",
		}),
	}
	m.StartTime.Set(float64(time.Now().Unix()))
	return m
}

// Registry exposes the registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordIssuance records one unit. kind is empty on success.
func (m *Metrics) RecordIssuance(kind string, fee uint64, revoked domain.RevokeFlags, elapsed time.Duration) {
	m.IssuanceDuration.Observe(elapsed.Seconds())
	if kind != "" {
		m.IssuancesTotal.WithLabelValues(string(domain.OutcomeFailure), kind).Inc()
		return
	}
	m.IssuancesTotal.WithLabelValues(string(domain.OutcomeSuccess), "").Inc()
	m.SupplyMintedTotal.Inc()
	m.FeesCollected.Add(float64(fee))
	for _, c := range []struct {
		set  bool
		name string
	}{
		{revoked.Mint, "mint"},
		{revoked.Freeze, "freeze"},
		{revoked.Update, "update"},
	} {
		if c.set {
			m.RevocationsTotal.WithLabelValues(c.name).Inc()
		}
	}
}

// RecordGovernance records a disclosure operation; version is ignored on error.
func (m *Metrics) RecordGovernance(op string, version uint32, err error) {
	if err != nil {
		m.GovernanceOpsTotal.WithLabelValues(op, string(domain.OutcomeFailure)).Inc()
		return
	}
	m.GovernanceOpsTotal.WithLabelValues(op, string(domain.OutcomeSuccess)).Inc()
	m.DisclosureVersion.Set(float64(version))
}

// RecordChainEvent records one observed transaction.
func (m *Metrics) RecordChainEvent(outcome domain.Outcome, slot int64) {
	m.ChainEventsObserved.WithLabelValues(string(outcome)).Inc()
	for {
		cur := m.maxSlot.Load()
		if slot <= cur {
			return
		}
		if m.maxSlot.CompareAndSwap(cur, slot) {
			m.HighestSlotSeen.Set(float64(slot))
			return
		}
	}
}

// RecordRPCLatency records RPC call latency.
func (m *Metrics) RecordRPCLatency(method string, elapsed time.Duration) {
	m.RPCCallLatency.WithLabelValues(method).Observe(elapsed.Seconds())
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, elapsed time.Duration, err error) {
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(elapsed.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
