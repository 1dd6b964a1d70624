package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics exposes Prometheus primitives for the HTTP surface and the
// analytics endpoints behind it.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	analyses *prometheus.CounterVec
}

// NewHTTPMetrics registers and returns the HTTP metrics.
func NewHTTPMetrics() *HTTPMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spendindex_http_requests_total",
		Help: "Counts HTTP requests by method, route, and status.",
	}, []string{"method", "route", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spendindex_http_request_duration_seconds",
		Help:    "HTTP request latency per method/route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	analyses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spendindex_analytics_requests_total",
		Help: "Counts analytics computations by analysis kind and outcome.",
	}, []string{"analysis", "outcome"})

	prometheus.MustRegister(requests, duration, analyses)

	return &HTTPMetrics{
		requests: requests,
		duration: duration,
		analyses: analyses,
	}
}

// RecordAnalysis counts one analytics computation. Outcome is one of
// ok, empty, or error.
func (m *HTTPMetrics) RecordAnalysis(analysis, outcome string) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(analysis, outcome).Inc()
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
