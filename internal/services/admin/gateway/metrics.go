package gateway

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds gateway collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	upstream *prometheus.HistogramVec
}

// NewMetrics registers the gateway collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "yard_console",
				Subsystem: "gateway",
				Name:      "requests_total",
				Help:      "Gateway writes by resource, method and relayed status.",
			},
			[]string{"resource", "method", "status"},
		),
		upstream: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "yard_console",
				Subsystem: "upstream",
				Name:      "request_duration_seconds",
				Help:      "Duration of upstream API calls.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"resource", "method", "status"},
		),
	}
	m.registry.MustRegister(m.requests, m.upstream)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveUpstream records one upstream call; it matches upstream.Observer.
func (m *Metrics) ObserveUpstream(method string, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstream.WithLabelValues(resourceLabel(path), method, statusLabel(status)).Observe(elapsed.Seconds())
}

func (m *Metrics) countRequest(resource string, method string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(resource, method, statusLabel(status)).Inc()
}

// resourceLabel keeps the collection segment so ids never become labels.
func resourceLabel(path string) string {
	path, _, _ = strings.Cut(path, "?")
	path = strings.Trim(path, "/")
	segment, _, _ := strings.Cut(path, "/")
	if segment == "" {
		return "unknown"
	}
	return segment
}

func statusLabel(status int) string {
	if status == 0 {
		return "none"
	}
	return strconv.Itoa(status)
}
