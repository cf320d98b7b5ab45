package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the fetch pipeline. A nil
// *Metrics is valid everywhere; every method no-ops on a nil receiver so
// tests can build components without touching the default registry.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec // labels: operation, outcome
	UpstreamRetries  prometheus.Counter
	RequestDuration  prometheus.Histogram
	CacheEvents      *prometheus.CounterVec // labels: store, event
	SessionAcquires  prometheus.Counter
	EventsDetected   *prometheus.CounterVec // labels: type
}

// New registers and returns the application metrics.
func New() *Metrics {
	m := &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pretium_upstream_requests_total",
			Help: "Upstream requests by operation and outcome",
		}, []string{"operation", "outcome"}),
		UpstreamRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pretium_upstream_retries_total",
			Help: "Upstream request retry attempts",
		}),
		RequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pretium_upstream_request_duration_seconds",
			Help:    "Upstream request latency including retries",
			Buckets: prometheus.DefBuckets,
		}),
		CacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pretium_cache_events_total",
			Help: "Cache events (hit, miss, stale_fallback) by store",
		}, []string{"store", "event"}),
		SessionAcquires: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pretium_session_acquisitions_total",
			Help: "Session cookie acquisition calls",
		}),
		EventsDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pretium_events_detected_total",
			Help: "Technical events detected by type",
		}, []string{"type"}),
	}

	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamRetries,
		m.RequestDuration,
		m.CacheEvents,
		m.SessionAcquires,
		m.EventsDetected,
	)

	return m
}

// RecordUpstream counts one upstream request with its outcome.
func (m *Metrics) RecordUpstream(operation, outcome string) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(operation, outcome).Inc()
}

// RecordRetry counts one retry attempt.
func (m *Metrics) RecordRetry() {
	if m == nil {
		return
	}
	m.UpstreamRetries.Inc()
}

// ObserveRequestDuration records total request latency in seconds.
func (m *Metrics) ObserveRequestDuration(seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(seconds)
}

// RecordCacheEvent counts a hit, miss, or stale_fallback for a store.
func (m *Metrics) RecordCacheEvent(store, event string) {
	if m == nil {
		return
	}
	m.CacheEvents.WithLabelValues(store, event).Inc()
}

// RecordSessionAcquire counts one session acquisition call.
func (m *Metrics) RecordSessionAcquire() {
	if m == nil {
		return
	}
	m.SessionAcquires.Inc()
}

// RecordEvent counts one detected technical event.
func (m *Metrics) RecordEvent(eventType string) {
	if m == nil {
		return
	}
	m.EventsDetected.WithLabelValues(eventType).Inc()
}
