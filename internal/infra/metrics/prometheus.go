// Package metrics exposes Prometheus instrumentation for the account flows.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"accounts/internal/domain/entity"
	"accounts/internal/domain/service"
)

const namespace = "accounts"

// NewRegistry returns a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return reg
}

// Handler serves the registry in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

type tokenMetrics struct {
	issued     *prometheus.CounterVec
	consumed   *prometheus.CounterVec
	rejected   *prometheus.CounterVec
	superseded *prometheus.CounterVec
}

// NewTokenMetrics registers the token lifecycle counters on reg.
func NewTokenMetrics(reg *prometheus.Registry) (service.TokenMetrics, error) {
	m := &tokenMetrics{
		issued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "issued_total",
			Help:      "Single-use tokens issued, by kind.",
		}, []string{"kind"}),
		consumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "consumed_total",
			Help:      "Single-use tokens redeemed, by kind.",
		}, []string{"kind"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "rejected_total",
			Help:      "Token presentations rejected, by kind and reason.",
		}, []string{"kind", "reason"}),
		superseded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "superseded_total",
			Help:      "Outstanding tokens invalidated by a newer request or a cancellation, by kind.",
		}, []string{"kind"}),
	}

	for _, c := range []prometheus.Collector{m.issued, m.consumed, m.rejected, m.superseded} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "register token metrics")
		}
	}

	return m, nil
}

func (m *tokenMetrics) TokenIssued(kind entity.TokenKind) {
	m.issued.WithLabelValues(kind.String()).Inc()
}

func (m *tokenMetrics) TokenConsumed(kind entity.TokenKind) {
	m.consumed.WithLabelValues(kind.String()).Inc()
}

func (m *tokenMetrics) TokenRejected(kind entity.TokenKind, reason string) {
	m.rejected.WithLabelValues(kind.String(), reason).Inc()
}

func (m *tokenMetrics) TokensSuperseded(kind entity.TokenKind, count int64) {
	if count <= 0 {
		return
	}
	m.superseded.WithLabelValues(kind.String()).Add(float64(count))
}

// HTTPMetrics records request counts and latencies per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP request collectors on reg.
func NewHTTPMetrics(reg *prometheus.Registry) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled, by method, route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.latency} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "register http metrics")
		}
	}

	return m, nil
}

// ObserveRequest records one handled request.
func (m *HTTPMetrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Noop discards every observation.
type Noop struct{}

func (Noop) TokenIssued(entity.TokenKind)             {}
func (Noop) TokenConsumed(entity.TokenKind)           {}
func (Noop) TokenRejected(entity.TokenKind, string)   {}
func (Noop) TokensSuperseded(entity.TokenKind, int64) {}
