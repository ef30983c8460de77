package metrics

import (
	"errors"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/gridpulse/internal/market"
)

func gatherValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				return metric.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				return metric.GetGauge().GetValue()
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return 0
}

func TestMetrics_ObserveCycleSuccess(t *testing.T) {
	m := New()
	bundle := &market.Bundle{
		Snapshot: market.Snapshot{
			System: market.SystemState{TotalLoad: 18000, AvgPrice: 62.5, RenewableShare: 0.28},
		},
		Signals: make([]market.Signal, 5),
		Alerts: []market.Alert{
			{Severity: market.SeverityCritical},
			{Severity: market.SeverityCritical},
			{Severity: market.SeverityMedium},
		},
	}

	m.ObserveCycle(bundle, 50*time.Millisecond, nil)

	assert.Equal(t, 1.0, gatherValue(t, m, "gridpulse_refresh_cycles_total", map[string]string{"result": "ok"}))
	assert.Equal(t, 5.0, gatherValue(t, m, "gridpulse_signals", nil))
	assert.Equal(t, 2.0, gatherValue(t, m, "gridpulse_alerts", map[string]string{"severity": "CRITICAL"}))
	assert.Equal(t, 1.0, gatherValue(t, m, "gridpulse_alerts", map[string]string{"severity": "MEDIUM"}))
	assert.Equal(t, 0.0, gatherValue(t, m, "gridpulse_alerts", map[string]string{"severity": "HIGH"}))
	assert.Equal(t, 18000.0, gatherValue(t, m, "gridpulse_total_load_mw", nil))
	assert.Equal(t, 62.5, gatherValue(t, m, "gridpulse_avg_price", nil))
	assert.Equal(t, 0.28, gatherValue(t, m, "gridpulse_renewable_share", nil))
}

func TestMetrics_ObserveCycleError(t *testing.T) {
	m := New()

	m.ObserveCycle(nil, 10*time.Millisecond, errors.New("generation failed"))

	assert.Equal(t, 1.0, gatherValue(t, m, "gridpulse_refresh_cycles_total", map[string]string{"result": "error"}))
}

func TestMetrics_FailedCycleKeepsGauges(t *testing.T) {
	m := New()
	bundle := &market.Bundle{
		Snapshot: market.Snapshot{System: market.SystemState{TotalLoad: 15000}},
		Signals:  make([]market.Signal, 2),
	}
	m.ObserveCycle(bundle, time.Millisecond, nil)

	// A later failed cycle must not zero out the published gauges.
	m.ObserveCycle(nil, time.Millisecond, errors.New("generation failed"))

	assert.Equal(t, 2.0, gatherValue(t, m, "gridpulse_signals", nil))
	assert.Equal(t, 15000.0, gatherValue(t, m, "gridpulse_total_load_mw", nil))
}

func TestMetrics_PublishFailures(t *testing.T) {
	m := New()
	m.PublishFailures.WithLabelValues("redis").Inc()
	m.PublishFailures.WithLabelValues("redis").Inc()

	assert.Equal(t, 2.0, gatherValue(t, m, "gridpulse_publish_failures_total", map[string]string{"sink": "redis"}))
}
