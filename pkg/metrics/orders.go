package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderPlacementMetrics instruments the order placement path. A nil receiver
// or an unregistered instance is a no-op, mirroring CronJobMetrics.
type OrderPlacementMetrics struct {
	duration   prometheus.Histogram
	placements *prometheus.CounterVec
}

// NewOrderPlacementMetrics registers the placement metrics on reg. Passing a
// nil registerer yields a no-op instance.
func NewOrderPlacementMetrics(reg prometheus.Registerer) *OrderPlacementMetrics {
	if reg == nil {
		return &OrderPlacementMetrics{}
	}
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_placement_duration_seconds",
		Help:    "Duration of order placement attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	placements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_placements_total",
		Help: "Order placement attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, placements)
	return &OrderPlacementMetrics{duration: duration, placements: placements}
}

// ObserveDuration records how long a placement attempt took, whatever its
// outcome.
func (m *OrderPlacementMetrics) ObserveDuration(duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.Observe(duration.Seconds())
}

// IncPlaced counts a successfully placed order.
func (m *OrderPlacementMetrics) IncPlaced() {
	if m == nil || m.placements == nil {
		return
	}
	m.placements.WithLabelValues("placed").Inc()
}

// IncRejected counts a placement refused for a caller-side reason, such as a
// closed offer or a bad quantity.
func (m *OrderPlacementMetrics) IncRejected() {
	if m == nil || m.placements == nil {
		return
	}
	m.placements.WithLabelValues("rejected").Inc()
}

// IncFailed counts a placement that broke on a dependency.
func (m *OrderPlacementMetrics) IncFailed() {
	if m == nil || m.placements == nil {
		return
	}
	m.placements.WithLabelValues("failed").Inc()
}
