package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/gridpulse/internal/config"
	"github.com/sawpanic/gridpulse/internal/market"
)

func classifierConfig() config.AlertConfig {
	return config.AlertConfig{
		PriceCritical:         150,
		PriceHigh:             100,
		ReserveMarginCritical: 0.10,
		UtilizationCritical:   0.95,
		RenewableCFMedium:     0.80,
		MaxAlerts:             15,
	}
}

func quietSnapshot(ts time.Time) *market.Snapshot {
	return &market.Snapshot{
		Timestamp: ts,
		Zones: map[string]market.ZoneState{
			"A": {RTPrice: 45},
			"B": {RTPrice: 52},
		},
		Interfaces: map[string]market.InterfaceState{
			"TIE": {Utilization: 0.60},
		},
		Generation: map[string]market.FuelState{
			"Wind": {CapacityFactor: 0.40},
		},
		System: market.SystemState{ReserveMargin: 0.15},
	}
}

func classifierCatalog() *market.Catalog {
	return &market.Catalog{
		Zones:      []market.Zone{{ID: "A"}, {ID: "B"}},
		Interfaces: []market.Interface{{ID: "TIE"}},
		Fuels:      []market.Fuel{{ID: "Wind", Renewable: true}, {ID: "Natural Gas"}},
	}
}

func TestClassifier_QuietSnapshotIsSilent(t *testing.T) {
	c := NewClassifier(classifierCatalog(), classifierConfig())
	assert.Empty(t, c.Classify(quietSnapshot(time.Now())))
}

func TestClassifier_ReserveShortage(t *testing.T) {
	c := NewClassifier(classifierCatalog(), classifierConfig())

	snap := quietSnapshot(time.Now())
	snap.System.ReserveMargin = 0.08
	alerts := c.Classify(snap)
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, market.SeverityCritical, a.Severity)
	assert.Equal(t, "reserve_shortage", a.Type)
	assert.Equal(t, SystemZone, a.Zone)
	assert.Equal(t, "IMMEDIATE", a.TimeToAction)
	assert.Equal(t, 0.92, a.Confidence)
	assert.Equal(t, 0.08, a.TriggerValue)
	assert.NotEmpty(t, a.ID)
}

func TestClassifier_PriceTiers(t *testing.T) {
	c := NewClassifier(classifierCatalog(), classifierConfig())

	snap := quietSnapshot(time.Now())
	snap.Zones["A"] = market.ZoneState{RTPrice: 180} // critical tier
	snap.Zones["B"] = market.ZoneState{RTPrice: 120} // elevated tier

	alerts := c.Classify(snap)
	require.Len(t, alerts, 2)

	// Critical spike outranks the elevation.
	assert.Equal(t, "price_spike", alerts[0].Type)
	assert.Equal(t, "A", alerts[0].Zone)
	assert.Equal(t, market.SeverityCritical, alerts[0].Severity)
	assert.Contains(t, alerts[0].Message, "$180.00/MWh")

	assert.Equal(t, "price_elevation", alerts[1].Type)
	assert.Equal(t, "B", alerts[1].Zone)
	assert.Equal(t, market.SeverityHigh, alerts[1].Severity)
}

func TestClassifier_CongestionAndRenewable(t *testing.T) {
	c := NewClassifier(classifierCatalog(), classifierConfig())

	snap := quietSnapshot(time.Now())
	snap.Interfaces["TIE"] = market.InterfaceState{Utilization: 0.97}
	snap.Generation["Wind"] = market.FuelState{CapacityFactor: 0.86}

	alerts := c.Classify(snap)
	require.Len(t, alerts, 2)
	assert.Equal(t, "transmission_congestion", alerts[0].Type)
	assert.Equal(t, "TIE", alerts[0].Zone)
	assert.Equal(t, "high_renewable", alerts[1].Type)
	assert.Equal(t, market.SeverityMedium, alerts[1].Severity)
}

func TestClassifier_BoundedOutput(t *testing.T) {
	// 20 zones all in the critical price tier: output clamps at the
	// configured maximum.
	catalog := &market.Catalog{}
	snap := quietSnapshot(time.Now())
	snap.Zones = map[string]market.ZoneState{}
	for i := 0; i < 20; i++ {
		id := string(rune('A' + i))
		catalog.Zones = append(catalog.Zones, market.Zone{ID: id})
		snap.Zones[id] = market.ZoneState{RTPrice: 200}
	}

	alerts := NewClassifier(catalog, classifierConfig()).Classify(snap)
	assert.Len(t, alerts, 15)
}

func TestClassifier_SeverityOrdering(t *testing.T) {
	c := NewClassifier(classifierCatalog(), classifierConfig())

	snap := quietSnapshot(time.Now())
	snap.Zones["B"] = market.ZoneState{RTPrice: 110}                // HIGH
	snap.Generation["Wind"] = market.FuelState{CapacityFactor: 0.9} // MEDIUM
	snap.System.ReserveMargin = 0.05                                // CRITICAL

	alerts := c.Classify(snap)
	require.Len(t, alerts, 3)
	assert.Equal(t, market.SeverityCritical, alerts[0].Severity)
	assert.Equal(t, market.SeverityHigh, alerts[1].Severity)
	assert.Equal(t, market.SeverityMedium, alerts[2].Severity)
}
