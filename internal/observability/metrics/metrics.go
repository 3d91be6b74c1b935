package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics instruments inbound HTTP traffic.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP instruments on the default registry.
func NewHTTPMetrics() *HTTPMetrics {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unlockd_http_requests_total",
			Help: "Inbound HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "unlockd_http_request_duration_seconds",
			Help:    "Inbound HTTP request duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	prometheus.MustRegister(m.requests, m.duration)
	return m
}

// GinMiddleware records per-request counters and latency.
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
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Metrics exposes domain-level instruments.
type Metrics struct {
	ordersPlaced    *prometheus.CounterVec
	ordersCompleted *prometheus.CounterVec
	ordersRefunded  *prometheus.CounterVec
	smsSent         *prometheus.CounterVec
	smsDenied       *prometheus.CounterVec
	supplierCalls   *prometheus.CounterVec
}

// New registers the domain instruments on the default registry.
func New() *Metrics {
	m := &Metrics{
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unlockd_orders_placed_total",
			Help: "Orders accepted and debited.",
		}, []string{"tenant_id"}),
		ordersCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unlockd_orders_completed_total",
			Help: "Orders fulfilled by the supplier.",
		}, []string{"tenant_id"}),
		ordersRefunded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unlockd_orders_refunded_total",
			Help: "Orders cancelled with a compensating refund.",
		}, []string{"tenant_id"}),
		smsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unlockd_sms_sent_total",
			Help: "SMS notifications dispatched and charged.",
		}, []string{"tenant_id", "encoding"}),
		smsDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unlockd_sms_denied_total",
			Help: "SMS notifications skipped or refused.",
		}, []string{"tenant_id", "reason"}),
		supplierCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unlockd_supplier_calls_total",
			Help: "Outbound supplier API calls by action and outcome.",
		}, []string{"action", "outcome"}),
	}
	prometheus.MustRegister(
		m.ordersPlaced,
		m.ordersCompleted,
		m.ordersRefunded,
		m.smsSent,
		m.smsDenied,
		m.supplierCalls,
	)
	return m
}

func (m *Metrics) OrderPlaced(tenantID string) {
	if m != nil {
		m.ordersPlaced.WithLabelValues(tenantID).Inc()
	}
}

func (m *Metrics) OrderCompleted(tenantID string) {
	if m != nil {
		m.ordersCompleted.WithLabelValues(tenantID).Inc()
	}
}

func (m *Metrics) OrderRefunded(tenantID string) {
	if m != nil {
		m.ordersRefunded.WithLabelValues(tenantID).Inc()
	}
}

func (m *Metrics) SMSSent(tenantID, encoding string) {
	if m != nil {
		m.smsSent.WithLabelValues(tenantID, encoding).Inc()
	}
}

func (m *Metrics) SMSDenied(tenantID, reason string) {
	if m != nil {
		m.smsDenied.WithLabelValues(tenantID, reason).Inc()
	}
}

func (m *Metrics) SupplierCall(action, outcome string) {
	if m != nil {
		m.supplierCalls.WithLabelValues(action, outcome).Inc()
	}
}
