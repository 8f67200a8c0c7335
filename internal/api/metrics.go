package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// httpMetrics records request counts and latencies per route.
type httpMetrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// newHTTPMetrics registers the collectors in a registry owned by one server.
func newHTTPMetrics() *httpMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)
	return &httpMetrics{
		registry: reg,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "benchboard_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status code.",
			},
			[]string{"route", "method", "status"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "benchboard_http_request_duration_seconds",
				Help:    "Latency of HTTP requests by route and method.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
}

// middleware observes every request after the handler chain completes.
func (m *httpMetrics) middleware(c *fiber.Ctx) error {
	start := time.Now()
	if err := c.Next(); err != nil {
		// Render the error here so the recorded status is the one sent
		if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
			return herr
		}
	}

	route := c.Route().Path
	status := strconv.Itoa(c.Response().StatusCode())
	m.requests.WithLabelValues(route, c.Method(), status).Inc()
	m.latency.WithLabelValues(route, c.Method()).Observe(time.Since(start).Seconds())
	return nil
}
