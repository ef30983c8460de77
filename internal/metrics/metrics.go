// Package metrics exposes Prometheus instrumentation for the refresh
// loop and the published analytics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sawpanic/gridpulse/internal/market"
)

// Metrics holds the collectors on a private registry so tests can
// gather them in isolation.
type Metrics struct {
	registry *prometheus.Registry

	CyclesTotal     *prometheus.CounterVec
	CycleDuration   prometheus.Histogram
	SignalCount     prometheus.Gauge
	AlertCount      *prometheus.GaugeVec
	TotalLoad       prometheus.Gauge
	AvgPrice        prometheus.Gauge
	RenewableShare  prometheus.Gauge
	PublishFailures *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridpulse_refresh_cycles_total",
			Help: "Refresh cycles by result.",
		}, []string{"result"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridpulse_refresh_cycle_seconds",
			Help:    "Duration of a full refresh cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		SignalCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gridpulse_signals",
			Help: "Trading signals in the latest published bundle.",
		}),
		AlertCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gridpulse_alerts",
			Help: "Alerts in the latest published bundle by severity.",
		}, []string{"severity"}),
		TotalLoad: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gridpulse_total_load_mw",
			Help: "System total load in the latest snapshot.",
		}),
		AvgPrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gridpulse_avg_price",
			Help: "Mean zonal RT price in the latest snapshot.",
		}),
		RenewableShare: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gridpulse_renewable_share",
			Help: "Renewable generation share in the latest snapshot.",
		}),
		PublishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridpulse_publish_failures_total",
			Help: "Bundle fan-out failures by sink.",
		}, []string{"sink"}),
	}
	m.registry.MustRegister(
		m.CyclesTotal, m.CycleDuration, m.SignalCount, m.AlertCount,
		m.TotalLoad, m.AvgPrice, m.RenewableShare, m.PublishFailures,
	)
	return m
}

// ObserveCycle records one completed cycle and, on success, refreshes
// the bundle-derived gauges.
func (m *Metrics) ObserveCycle(b *market.Bundle, d time.Duration, err error) {
	m.CycleDuration.Observe(d.Seconds())
	if err != nil {
		m.CyclesTotal.WithLabelValues("error").Inc()
		return
	}
	m.CyclesTotal.WithLabelValues("ok").Inc()

	m.SignalCount.Set(float64(len(b.Signals)))
	for _, sev := range []market.Severity{market.SeverityCritical, market.SeverityHigh, market.SeverityMedium, market.SeverityLow} {
		n := 0
		for _, a := range b.Alerts {
			if a.Severity == sev {
				n++
			}
		}
		m.AlertCount.WithLabelValues(string(sev)).Set(float64(n))
	}
	m.TotalLoad.Set(b.Snapshot.System.TotalLoad)
	m.AvgPrice.Set(b.Snapshot.System.AvgPrice)
	m.RenewableShare.Set(b.Snapshot.System.RenewableShare)
}

// Handler serves the registry over /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
