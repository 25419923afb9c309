package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SaleMetrics records commit outcomes and amounts.
type SaleMetrics struct {
	committed  *prometheus.CounterVec
	rejected   *prometheus.CounterVec
	saleAmount prometheus.Histogram
}

// NewSaleMetrics registers the sale metrics on the provided registerer.
func NewSaleMetrics(reg prometheus.Registerer) *SaleMetrics {
	if reg == nil {
		return &SaleMetrics{}
	}
	committed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_committed_total",
		Help: "Successfully committed sales.",
	}, []string{"payment_method"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_rejected_total",
		Help: "Commit attempts rejected by a business rule.",
	}, []string{"reason"})
	saleAmount := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sale_total_amount",
		Help:    "Distribution of committed sale totals.",
		Buckets: prometheus.ExponentialBuckets(1, 2.5, 10),
	})
	reg.MustRegister(committed, rejected, saleAmount)
	return &SaleMetrics{
		committed:  committed,
		rejected:   rejected,
		saleAmount: saleAmount,
	}
}

// IncCommitted counts one committed sale.
func (s *SaleMetrics) IncCommitted(paymentMethod string) {
	if s == nil || s.committed == nil {
		return
	}
	s.committed.WithLabelValues(paymentMethod).Inc()
}

// IncRejected counts one business-rule rejection.
func (s *SaleMetrics) IncRejected(reason string) {
	if s == nil || s.rejected == nil {
		return
	}
	s.rejected.WithLabelValues(reason).Inc()
}

// ObserveSaleAmount records a committed sale total.
func (s *SaleMetrics) ObserveSaleAmount(amount float64) {
	if s == nil || s.saleAmount == nil {
		return
	}
	s.saleAmount.Observe(amount)
}

// HTTPMetrics records request durations by route and status.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the request metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
	reg.MustRegister(duration)
	return &HTTPMetrics{duration: duration}
}

// ObserveRequest records one request.
func (h *HTTPMetrics) ObserveRequest(method, path, status string, elapsed time.Duration) {
	if h == nil || h.duration == nil {
		return
	}
	h.duration.WithLabelValues(method, path, status).Observe(elapsed.Seconds())
}
