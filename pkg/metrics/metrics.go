// Package metrics exposes Prometheus collectors for operations and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "taskhub"

// Metrics holds the service's collectors.
type Metrics struct {
	OperationCounter *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. Pass a fresh
// prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		OperationCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Operations handled, by operation name and outcome.",
		}, []string{"operation", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		gatherer: reg,
	}

	for _, c := range []prometheus.Collector{m.OperationCounter, m.RequestDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordOperation counts one operation result. A nil receiver is a no-op.
func (m *Metrics) RecordOperation(operation string, success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.OperationCounter.WithLabelValues(operation, outcome).Inc()
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(seconds)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
