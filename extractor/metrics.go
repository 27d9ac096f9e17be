package extractor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for a walk.
type Metrics struct {
	Registry        *prometheus.Registry
	PagesProcessed  prometheus.Counter
	OrdersExtracted prometheus.Counter
	FailuresTotal   *prometheus.CounterVec
	InvoicesTotal   *prometheus.CounterVec
	PageDuration    prometheus.Histogram
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orderwalk_pages_processed_total",
			Help: "Total listing pages processed.",
		},
	)
	orders := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orderwalk_orders_extracted_total",
			Help: "Total order records parsed.",
		},
	)
	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderwalk_failures_total",
			Help: "Total failures by type.",
		},
		[]string{"type"},
	)
	invoices := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderwalk_invoices_total",
			Help: "Invoice fetches by result.",
		},
		[]string{"result"},
	)
	pageDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orderwalk_page_duration_seconds",
			Help:    "Time spent processing one listing page, settle delay included.",
			Buckets: prometheus.DefBuckets,
		},
	)

	registry.MustRegister(pages, orders, failures, invoices, pageDuration)

	return &Metrics{
		Registry:        registry,
		PagesProcessed:  pages,
		OrdersExtracted: orders,
		FailuresTotal:   failures,
		InvoicesTotal:   invoices,
		PageDuration:    pageDuration,
	}
}

// ObservePage records one processed page and how long it took.
func (m *Metrics) ObservePage(d time.Duration) {
	if m == nil {
		return
	}
	m.PagesProcessed.Inc()
	m.PageDuration.Observe(d.Seconds())
}

// AddOrders adds n parsed orders.
func (m *Metrics) AddOrders(n int) {
	if m == nil {
		return
	}
	m.OrdersExtracted.Add(float64(n))
}

// IncFailure increments the failure counter for a type label.
func (m *Metrics) IncFailure(failureType string) {
	if m == nil {
		return
	}
	m.FailuresTotal.WithLabelValues(failureType).Inc()
}

// IncInvoice increments the invoice counter for a result label.
func (m *Metrics) IncInvoice(result string) {
	if m == nil {
		return
	}
	m.InvoicesTotal.WithLabelValues(result).Inc()
}
