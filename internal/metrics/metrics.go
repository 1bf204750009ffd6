// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the app collectors under one registry
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	SyncSubmissions     *prometheus.CounterVec
	MetafieldOperations *prometheus.CounterVec
}

// New creates and registers the collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fields",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		SyncSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fields",
			Name:      "metafield_sync_submissions_total",
			Help:      "Product metafield submissions by outcome.",
		}, []string{"outcome"}),
		MetafieldOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fields",
			Name:      "metafield_operations_total",
			Help:      "Metafield operations sent to Shopify by kind.",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.SyncSubmissions,
		m.MetafieldOperations,
	)
	return m
}

// Registry returns the registry backing the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware counts requests by matched route so path ids do not explode cardinality
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
