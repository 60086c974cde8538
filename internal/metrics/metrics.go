package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	GatewayCalls   *prometheus.CounterVec
	GatewayErrors  *prometheus.CounterVec
	GatewayLatency *prometheus.HistogramVec
	HTTPRequests   *prometheus.CounterVec
	AuthAttempts   *prometheus.CounterVec
}

// NewMetrics registers the metrics on reg. Pass prometheus.NewRegistry() in tests.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		GatewayCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_calls_total",
			Help:      "The total number of record gateway calls",
		}, []string{"operation"}),
		GatewayErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_errors_total",
			Help:      "The total number of failed record gateway calls",
		}, []string{"operation"}),
		GatewayLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_call_duration_seconds",
			Help:      "Time taken by record gateway calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "The total number of HTTP requests",
		}, []string{"route", "method", "status"}),
		AuthAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Sign in and sign up attempts by outcome",
		}, []string{"action", "outcome"}),
	}
}
