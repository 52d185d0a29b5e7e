package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/nikolayk812/sweetshop/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sweetshop"

// Checkout outcome label values.
const (
	OutcomeSuccess           = "success"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeRejected          = "rejected"
	OutcomeError             = "error"
)

// Metrics is safe to use through a nil pointer, which records nothing.
type Metrics struct {
	Requests          *prometheus.CounterVec
	LatencyMS         *prometheus.HistogramVec
	Checkouts         *prometheus.CounterVec
	PurchasedItems    prometheus.Counter
	StatusTransitions *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Checkout attempts by outcome.",
		}, []string{"outcome"}),
		PurchasedItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchased_items_total",
			Help:      "Units sold through successful checkouts.",
		}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_transitions_total",
			Help:      "Applied order status transitions.",
		}, []string{"from", "to"}),
	}

	reg.MustRegister(m.Requests, m.LatencyMS, m.Checkouts, m.PurchasedItems, m.StatusTransitions)
	return m
}

func (m *Metrics) ObserveRequest(handler string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(handler).Observe(float64(elapsed.Milliseconds()))
}

func (m *Metrics) ObserveCheckout(outcome string, items int) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.PurchasedItems.Add(float64(items))
	}
}

func (m *Metrics) ObserveTransition(from, to domain.OrderStatus) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(string(from), string(to)).Inc()
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
