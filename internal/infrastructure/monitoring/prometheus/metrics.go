// Package prometheus registers and exposes the service's metrics.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BillingMetrics holds every billing metric.  One instance is created at
// startup and shared by the HTTP layer and the invoice service.
type BillingMetrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	InvoiceComputeDuration *prometheus.HistogramVec
	AdvisoriesTotal        prometheus.Counter
	InvoicesFinalizedTotal prometheus.Counter
}

// NewBillingMetrics registers all metrics on a fresh registry.
func NewBillingMetrics() *BillingMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	m := &BillingMetrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "billing_http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "billing_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "path"}),
		InvoiceComputeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "billing_invoice_compute_duration_seconds",
			Help:    "End-to-end invoice computation duration",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"vendor"}),
		AdvisoriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "billing_advisories_total",
			Help: "Configuration-gap advisories raised during invoice computation",
		}),
		InvoicesFinalizedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "billing_invoices_finalized_total",
			Help: "Invoices finalized",
		}),
	}
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.InvoiceComputeDuration,
		m.AdvisoriesTotal,
		m.InvoicesFinalizedTotal,
	)
	return m
}

// Handler returns the exposition endpoint handler.
func (m *BillingMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for test gathering.
func (m *BillingMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCompute satisfies the invoice service's metrics contract.
func (m *BillingMetrics) ObserveCompute(vendorName string, d time.Duration) {
	m.InvoiceComputeDuration.WithLabelValues(vendorName).Observe(d.Seconds())
}

// AddAdvisories satisfies the invoice service's metrics contract.
func (m *BillingMetrics) AddAdvisories(n int) {
	m.AdvisoriesTotal.Add(float64(n))
}

// IncFinalized satisfies the invoice service's metrics contract.
func (m *BillingMetrics) IncFinalized() {
	m.InvoicesFinalizedTotal.Inc()
}
