package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "goldpos"

// Metrics owns its registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	Checkouts        *prometheus.CounterVec
	CheckoutDuration prometheus.Histogram
	LowStock         *prometheus.GaugeVec
	Requests         *prometheus.CounterVec
	RequestLatencyMS *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Checkout attempts by outcome.",
		}, []string{"result"}),
		CheckoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_duration_seconds",
			Help:      "Time spent inside the checkout transaction.",
			Buckets:   prometheus.DefBuckets,
		}),
		LowStock: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "low_stock_products",
			Help:      "Active products at or below the low-stock threshold.",
		}, []string{"company_id"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "status"}),
		RequestLatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Checkouts, m.CheckoutDuration, m.LowStock, m.Requests, m.RequestLatencyMS,
	)
	return m
}

func (m *Metrics) ObserveCheckout(result string, elapsed time.Duration) {
	m.Checkouts.WithLabelValues(result).Inc()
	m.CheckoutDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.RequestLatencyMS.WithLabelValues(route).Observe(float64(elapsed.Milliseconds()))
}

// SetLowStock replaces the per-company gauge values with counts.
func (m *Metrics) SetLowStock(counts map[int64]int) {
	m.LowStock.Reset()
	for company, n := range counts {
		m.LowStock.WithLabelValues(strconv.FormatInt(company, 10)).Set(float64(n))
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
