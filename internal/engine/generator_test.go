package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/gridpulse/internal/market"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestGenerator_PhysicalBounds(t *testing.T) {
	catalog := market.DefaultCatalog()

	// Sweep several hours and seeds; bounds must hold everywhere.
	for seed := int64(1); seed <= 5; seed++ {
		for hour := 0; hour < 24; hour += 3 {
			clock := fixedClock(time.Date(2025, 7, 14, hour, 0, 0, 0, time.UTC))
			gen, err := NewGenerator(catalog, NewSampler(seed), clock)
			require.NoError(t, err)

			snap := gen.Generate()
			for id, zs := range snap.Zones {
				assert.GreaterOrEqual(t, zs.LoadMW, 0.0, "zone %s load", id)
				assert.GreaterOrEqual(t, zs.RTPrice, 0.0, "zone %s rt", id)
				assert.GreaterOrEqual(t, zs.DAPrice, 0.0, "zone %s da", id)
				assert.GreaterOrEqual(t, zs.Congestion, 0.0, "zone %s congestion", id)
				assert.GreaterOrEqual(t, zs.TransmissionCost, 0.0, "zone %s transmission", id)
				assert.GreaterOrEqual(t, zs.PriceVolatility, 0.0, "zone %s volatility", id)
			}
			for id, is := range snap.Interfaces {
				assert.GreaterOrEqual(t, is.Utilization, 0.0, "interface %s", id)
				assert.LessOrEqual(t, is.Utilization, 1.0, "interface %s", id)
				assert.GreaterOrEqual(t, is.ShadowPrice, 0.0, "interface %s", id)
				// Fields round independently; at max capacity the
				// recomputed product can drift a little over 1 MW.
				assert.InDelta(t, is.CapacityMW*is.Utilization, is.FlowMW, 2.0, "interface %s flow", id)
			}
			for id, fs := range snap.Generation {
				assert.GreaterOrEqual(t, fs.CapacityFactor, 0.0, "fuel %s", id)
				assert.LessOrEqual(t, fs.CapacityFactor, 1.0, "fuel %s", id)
				assert.GreaterOrEqual(t, fs.GenerationMW, 0.0, "fuel %s", id)
			}
		}
	}
}

func TestGenerator_CatalogCoverage(t *testing.T) {
	catalog := market.DefaultCatalog()
	gen, err := NewGenerator(catalog, NewSampler(42), fixedClock(time.Date(2025, 7, 14, 12, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	snap := gen.Generate()

	// Exactly one state entry per catalog member.
	require.Len(t, snap.Zones, len(catalog.Zones))
	require.Len(t, snap.Interfaces, len(catalog.Interfaces))
	require.Len(t, snap.Generation, len(catalog.Fuels))
	for _, z := range catalog.Zones {
		assert.Contains(t, snap.Zones, z.ID)
	}
	for _, iface := range catalog.Interfaces {
		assert.Contains(t, snap.Interfaces, iface.ID)
	}
	for _, f := range catalog.Fuels {
		assert.Contains(t, snap.Generation, f.ID)
	}
}

func TestGenerator_SolarDarkOutsideDaylight(t *testing.T) {
	catalog := market.DefaultCatalog()
	gen, err := NewGenerator(catalog, NewSampler(7), fixedClock(time.Date(2025, 7, 14, 23, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	snap := gen.Generate()
	solar := snap.Generation["Solar"]
	assert.Zero(t, solar.CapacityFactor, "solar must be dark at 23:00")
	assert.Zero(t, solar.GenerationMW)
}

func TestGenerator_NuclearRunsHigh(t *testing.T) {
	catalog := market.DefaultCatalog()
	gen, err := NewGenerator(catalog, NewSampler(7), fixedClock(time.Date(2025, 1, 10, 4, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	snap := gen.Generate()
	nuclear := snap.Generation["Nuclear"]
	assert.GreaterOrEqual(t, nuclear.CapacityFactor, 0.92)
	assert.LessOrEqual(t, nuclear.CapacityFactor, 0.98)
}

func TestGenerator_RejectsEmptyCatalog(t *testing.T) {
	_, err := NewGenerator(&market.Catalog{}, NewSampler(1), time.Now)
	require.ErrorIs(t, err, market.ErrEmptyCatalog)

	_, err = NewGenerator(nil, NewSampler(1), time.Now)
	require.ErrorIs(t, err, market.ErrEmptyCatalog)
}

func TestGenerator_RejectsUnknownZoneClass(t *testing.T) {
	catalog := market.DefaultCatalog()
	catalog.Zones = append(catalog.Zones, market.Zone{ID: "GHOST", Class: "no_such_class"})

	_, err := NewGenerator(catalog, NewSampler(1), time.Now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown class")
}

func TestGenerator_DeterministicUnderSeed(t *testing.T) {
	catalog := market.DefaultCatalog()
	clock := fixedClock(time.Date(2025, 7, 14, 9, 0, 0, 0, time.UTC))

	genA, err := NewGenerator(catalog, NewSampler(99), clock)
	require.NoError(t, err)
	genB, err := NewGenerator(catalog, NewSampler(99), clock)
	require.NoError(t, err)

	assert.Equal(t, genA.Generate(), genB.Generate())
}
