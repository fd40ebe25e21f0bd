package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// OrderMetrics tracks checkout and lifecycle operations. A nil *OrderMetrics
// is a valid no-op recorder.
type OrderMetrics struct {
	operations *prometheus.CounterVec
	checkout   prometheus.Histogram
	reserved   prometheus.Counter
	released   prometheus.Counter
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_operations_total",
		Help: "Order operations by outcome.",
	}, []string{"operation", "result"})
	checkout := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orders_checkout_duration_seconds",
		Help:    "Latency of the checkout transaction.",
		Buckets: prometheus.DefBuckets,
	})
	reserved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_units_reserved_total",
		Help: "Stock units decremented by checkout.",
	})
	released := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_units_released_total",
		Help: "Stock units restored by cancellation.",
	})
	reg.MustRegister(operations, checkout, reserved, released)
	return &OrderMetrics{
		operations: operations,
		checkout:   checkout,
		reserved:   reserved,
		released:   released,
	}
}

// Observe counts one operation with its result derived from err.
func (m *OrderMetrics) Observe(operation string, err error) {
	if m == nil || m.operations == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	m.operations.WithLabelValues(normalizeLabel(operation), result).Inc()
}

func (m *OrderMetrics) ObserveCheckout(duration time.Duration) {
	if m == nil || m.checkout == nil {
		return
	}
	m.checkout.Observe(duration.Seconds())
}

func (m *OrderMetrics) AddReserved(units int) {
	if m == nil || m.reserved == nil || units <= 0 {
		return
	}
	m.reserved.Add(float64(units))
}

func (m *OrderMetrics) AddReleased(units int) {
	if m == nil || m.released == nil || units <= 0 {
		return
	}
	m.released.Add(float64(units))
}
