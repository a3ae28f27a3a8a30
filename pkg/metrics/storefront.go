package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout outcomes.
const (
	CheckoutSuccess  = "success"
	CheckoutRejected = "rejected"
	CheckoutFailed   = "failed"
	CheckoutEmpty    = "empty"
	CheckoutConflict = "in_flight"
)

// StorefrontMetrics records cart and checkout activity. A nil registerer
// yields a recorder whose methods do nothing.
type StorefrontMetrics struct {
	mutations       *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	liveSessions    prometheus.Gauge
	checkouts       *prometheus.CounterVec
	commerceLatency *prometheus.HistogramVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart state changes by operation.",
	}, []string{"op"})
	persistFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_persist_failures_total",
		Help: "Failed cart snapshot reads and writes.",
	}, []string{"backend", "op"})
	liveSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cart_live_sessions",
		Help: "Carts currently held in memory.",
	})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Checkout submissions by outcome.",
	}, []string{"outcome"})
	commerceLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "commerce_request_duration_seconds",
		Help:    "Latency of Commerce API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "status"})
	reg.MustRegister(mutations, persistFailures, liveSessions, checkouts, commerceLatency)
	return &StorefrontMetrics{
		mutations:       mutations,
		persistFailures: persistFailures,
		liveSessions:    liveSessions,
		checkouts:       checkouts,
		commerceLatency: commerceLatency,
	}
}

func (m *StorefrontMetrics) IncMutation(op string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

func (m *StorefrontMetrics) IncPersistFailure(backend, op string) {
	if m == nil || m.persistFailures == nil {
		return
	}
	m.persistFailures.WithLabelValues(normalizeLabel(backend), normalizeLabel(op)).Inc()
}

func (m *StorefrontMetrics) SetLiveSessions(n int) {
	if m == nil || m.liveSessions == nil {
		return
	}
	m.liveSessions.Set(float64(n))
}

// IncCheckout counts one checkout submission with the given outcome.
func (m *StorefrontMetrics) IncCheckout(outcome string) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveCommerce records the latency of one Commerce API call. status is the
// HTTP status class or "error" for transport failures.
func (m *StorefrontMetrics) ObserveCommerce(operation, status string, d time.Duration) {
	if m == nil || m.commerceLatency == nil {
		return
	}
	m.commerceLatency.WithLabelValues(normalizeLabel(operation), normalizeLabel(status)).Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
