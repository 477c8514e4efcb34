// Package metrics provides the Prometheus-backed collector for the
// transfer engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// PrometheusCollector implements transfer.MetricsCollector.
type PrometheusCollector struct {
	completed prometheus.Counter
	failed    *prometheus.CounterVec
	retries   prometheus.Counter
	volume    prometheus.Counter
	durations prometheus.Histogram
}

// NewPrometheusCollector registers the transfer metrics on the default
// registry. Call it once per process.
func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		completed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "remit_transfers_completed_total",
			Help: "Total number of committed transfers",
		}),
		failed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "remit_transfers_failed_total",
			Help: "Total number of failed transfers by reason",
		}, []string{"reason"}),
		retries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "remit_transfer_retries_total",
			Help: "Total number of retried atomic phases after conflicts",
		}),
		volume: promauto.NewCounter(prometheus.CounterOpts{
			Name: "remit_transfer_volume_total",
			Help: "Total transferred amount in currency units",
		}),
		durations: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "remit_transfer_duration_seconds",
			Help:    "End-to-end transfer latency",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (c *PrometheusCollector) RecordTransfer(amount decimal.Decimal, duration time.Duration) {
	c.completed.Inc()
	c.volume.Add(amount.InexactFloat64())
	c.durations.Observe(duration.Seconds())
}

func (c *PrometheusCollector) RecordFailure(reason string) {
	c.failed.WithLabelValues(reason).Inc()
}

func (c *PrometheusCollector) RecordRetry() {
	c.retries.Inc()
}
