// Package metrics exposes Prometheus metrics for sync passes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. A nil *Metrics records nothing.
type Metrics struct {
	PassesTotal     *prometheus.CounterVec
	TenantRunsTotal *prometheus.CounterVec
	RowsWritten     *prometheus.CounterVec
	PassDuration    prometheus.Histogram
	LastPass        prometheus.Gauge
}

// New creates the metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PassesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ordersync_passes_total",
				Help: "Total number of sync passes by result",
			},
			[]string{"result"},
		),

		TenantRunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ordersync_tenant_runs_total",
				Help: "Total number of tenant runs by outcome",
			},
			[]string{"tenant", "outcome"},
		),

		RowsWritten: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ordersync_rows_written_total",
				Help: "Total number of data rows written to destinations",
			},
			[]string{"tenant", "strategy"},
		),

		PassDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ordersync_pass_duration_seconds",
				Help:    "Duration of sync passes",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		),

		LastPass: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "ordersync_last_pass_timestamp_seconds",
				Help: "Unix time the last sync pass finished",
			},
		),
	}
}

// RecordTenant records one tenant run.
func (m *Metrics) RecordTenant(tenant, outcome, strategy string, rows int) {
	if m == nil {
		return
	}
	m.TenantRunsTotal.WithLabelValues(tenant, outcome).Inc()
	if strategy != "" {
		m.RowsWritten.WithLabelValues(tenant, strategy).Add(float64(rows))
	}
}

// RecordPass records a finished pass.
func (m *Metrics) RecordPass(success bool, duration time.Duration, finished time.Time) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.PassesTotal.WithLabelValues(result).Inc()
	m.PassDuration.Observe(duration.Seconds())
	m.LastPass.Set(float64(finished.Unix()))
}
