package application

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the vault and proxy services.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	generations      *prometheus.CounterVec
	ledgerFailures   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ttsvault",
			Name:      "upstream_requests_total",
			Help:      "Provider API calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ttsvault",
			Name:      "upstream_request_duration_seconds",
			Help:      "Provider API call latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ttsvault",
			Name:      "generations_total",
			Help:      "Speech generation attempts by outcome.",
		}, []string{"outcome"}),
		ledgerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ttsvault",
			Name:      "ledger_write_failures_total",
			Help:      "Job ledger writes that failed and were swallowed.",
		}, []string{"operation"}),
	}
	reg.MustRegister(m.upstreamRequests, m.upstreamLatency, m.generations, m.ledgerFailures)
	return m
}

func (m *Metrics) observeUpstream(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.upstreamLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	m.upstreamRequests.WithLabelValues(operation, outcome(err)).Inc()
}

func (m *Metrics) generation(err error) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) ledgerFailure(operation string) {
	if m == nil {
		return
	}
	m.ledgerFailures.WithLabelValues(operation).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
