// Package metrics exposes Prometheus collectors for the HTTP layer and the
// booking flow.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	bookingsCreated  prometheus.Counter
	bookingConflicts prometheus.Counter
	bookingRetries   prometheus.Counter
}

// New registers the collectors on a private registry, so several instances
// can coexist in tests.
func New(service string) *Metrics {
	labels := prometheus.Labels{"service": service}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "HTTP requests by method, route and status.",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "bookings_created_total",
			Help:        "Bookings created.",
			ConstLabels: labels,
		}),
		bookingConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "booking_conflicts_total",
			Help:        "Create or update requests rejected by a scheduling conflict.",
			ConstLabels: labels,
		}),
		bookingRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "booking_retries_total",
			Help:        "Booking transactions retried after a serialization failure.",
			ConstLabels: labels,
		}),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.bookingsCreated,
		m.bookingConflicts,
		m.bookingRetries,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records every request under its route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// The booking hooks accept a nil receiver so callers can run without metrics.

func (m *Metrics) BookingCreated() {
	if m != nil {
		m.bookingsCreated.Inc()
	}
}

func (m *Metrics) BookingConflict() {
	if m != nil {
		m.bookingConflicts.Inc()
	}
}

func (m *Metrics) BookingRetry() {
	if m != nil {
		m.bookingRetries.Inc()
	}
}
