package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Order rejection reasons.
const (
	RejectInvalidInput       = "invalid_input"
	RejectProductUnavailable = "product_unavailable"
	RejectInsufficientStock  = "insufficient_stock"
	RejectReference          = "invalid_reference"
	RejectCommitFailure      = "commit_failure"
)

// OrderMetrics counts order placement outcomes.
type OrderMetrics struct {
	placed   prometheus.Counter
	rejected *prometheus.CounterVec
	revenue  prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_placed_total",
		Help: "Orders committed successfully.",
	})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_orders_rejected_total",
		Help: "Order placements rejected, by reason.",
	}, []string{"reason"})
	revenue := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_placed_amount_total",
		Help: "Sum of committed order totals.",
	})
	reg.MustRegister(placed, rejected, revenue)
	return &OrderMetrics{placed: placed, rejected: rejected, revenue: revenue}
}

// Placed records a committed order and its total.
func (m *OrderMetrics) Placed(total decimal.Decimal) {
	if m == nil || m.placed == nil {
		return
	}
	m.placed.Inc()
	m.revenue.Add(total.InexactFloat64())
}

// Rejected records a failed placement.
func (m *OrderMetrics) Rejected(reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}
