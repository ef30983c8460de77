package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/sawpanic/gridpulse/internal/market"
)

// hourlyLoadShape is the diurnal load multiplier, indexed by hour mod 24.
var hourlyLoadShape = [24]float64{
	0.7, 0.65, 0.6, 0.6, 0.65, 0.75, 0.85, 0.95, 1.0, 0.98, 0.95, 0.92,
	0.9, 0.88, 0.85, 0.88, 0.92, 0.98, 1.0, 0.95, 0.9, 0.85, 0.8, 0.75,
}

const (
	// Tiered congestion kicks in above this zonal load.
	congestionLoadKnee  = 8000.0
	congestionLoadSlope = 10000.0

	defaultVolatility = 0.1

	solarDawn = 6
	solarDusk = 18
)

// Generator produces one complete market snapshot per cycle from the
// static catalog and the current time.
type Generator struct {
	catalog *market.Catalog
	sampler Sampler
	clock   Clock
}

// NewGenerator validates the catalog and builds a generator. A bad
// catalog is a startup failure, not something retried at runtime.
func NewGenerator(catalog *market.Catalog, sampler Sampler, clock Clock) (*Generator, error) {
	if catalog == nil {
		return nil, market.ErrEmptyCatalog
	}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("generator init: %w", err)
	}
	return &Generator{catalog: catalog, sampler: sampler, clock: clock}, nil
}

// Generate samples a full snapshot: one state per catalog zone,
// interface, and fuel, plus sampled system reserve margin and
// frequency. Aggregate fields (total load, avg price, renewable
// share) are filled by the aggregate pass.
func (g *Generator) Generate() *market.Snapshot {
	now := g.clock()
	hour := now.Hour() % 24

	snap := &market.Snapshot{
		Timestamp:  now,
		Zones:      make(map[string]market.ZoneState, len(g.catalog.Zones)),
		Interfaces: make(map[string]market.InterfaceState, len(g.catalog.Interfaces)),
		Generation: make(map[string]market.FuelState, len(g.catalog.Fuels)),
	}

	diurnal := hourlyLoadShape[hour]
	weather := g.weatherFactor(now)
	economic := g.economicFactor(now)

	for _, zone := range g.catalog.Zones {
		cls := g.catalog.Classes[zone.Class]

		baseLoad := cls.BaseLoad + cls.LoadSwing*diurnal
		load := math.Max(0, baseLoad*(1+weather)*economic)

		volatility := math.Max(0, g.priceVolatility(now))
		energy := cls.BasePrice + cls.PriceSwing*volatility

		congestion := g.sampler.Uniform(cls.CongestionMin, cls.CongestionMax)
		if load > congestionLoadKnee {
			congestion *= 1 + (load-congestionLoadKnee)/congestionLoadSlope
		}
		transmission := g.sampler.Uniform(1, 5)

		rt := math.Max(0, energy+congestion+transmission)
		da := rt * g.sampler.Uniform(0.92, 1.08)

		snap.Zones[zone.ID] = market.ZoneState{
			LoadMW:           round(load, 1),
			RTPrice:          round(rt, 2),
			DAPrice:          round(da, 2),
			Congestion:       round(congestion, 2),
			TransmissionCost: round(transmission, 2),
			LoadFactor:       round(load/(baseLoad*1.2), 3),
			PriceVolatility:  round(volatility, 3),
		}
	}

	for _, iface := range g.catalog.Interfaces {
		capacity := g.sampler.Uniform(iface.CapacityMin, iface.CapacityMax)
		utilization := g.sampler.Uniform(0.3, 0.95)
		flow := capacity * utilization

		snap.Interfaces[iface.ID] = market.InterfaceState{
			FlowMW:      round(flow, 1),
			CapacityMW:  round(capacity, 1),
			Utilization: round(utilization, 3),
			ShadowPrice: round(math.Max(0, (utilization-0.8)*100), 2),
		}
	}

	for _, fuel := range g.catalog.Fuels {
		capacity := g.sampler.Uniform(fuel.CapacityMin, fuel.CapacityMax)
		cf := g.capacityFactor(fuel, hour)
		generation := capacity * cf

		snap.Generation[fuel.ID] = market.FuelState{
			CapacityMW:     round(capacity, 1),
			GenerationMW:   round(generation, 1),
			CapacityFactor: round(cf, 3),
			MarginalCost:   round(fuel.CostBase+g.sampler.Uniform(fuel.CostJitterMin, fuel.CostJitterMax), 2),
			EmissionsRate:  fuel.EmissionsRate,
		}
	}

	snap.System = market.SystemState{
		ReserveMargin: round(g.sampler.Uniform(0.12, 0.18), 3),
		Frequency:     round(60.0+g.sampler.Uniform(-0.05, 0.05), 3),
	}
	return snap
}

// priceVolatility blends a slow hourly cycle with gaussian noise
// around a fixed base.
func (g *Generator) priceVolatility(now time.Time) float64 {
	timeFactor := math.Sin(float64(now.Unix())/3600) * 0.05
	return defaultVolatility + timeFactor + g.sampler.Normal(0, 0.03)
}

// weatherFactor models temperature-driven load: AC above 75F, heating
// below 50F, flat in between.
func (g *Generator) weatherFactor(now time.Time) float64 {
	seasonal := 70 + 20*math.Sin(float64(now.YearDay()-80)*2*math.Pi/365)
	temp := seasonal + g.sampler.Uniform(-10, 10)
	switch {
	case temp > 75:
		return (temp - 75) * 0.015
	case temp < 50:
		return (50 - temp) * 0.01
	}
	return 0
}

// economicFactor dampens weekend load relative to weekdays.
func (g *Generator) economicFactor(now time.Time) float64 {
	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return g.sampler.Uniform(0.85, 0.95)
	}
	return g.sampler.Uniform(0.95, 1.05)
}

// capacityFactor samples per the fuel's model: nuclear runs
// near-constant high, wind is diurnally shaped, solar is forced to
// zero outside the daylight window, everything else draws from its
// configured uniform range.
func (g *Generator) capacityFactor(fuel market.Fuel, hour int) float64 {
	switch fuel.Model {
	case market.FuelModelWind:
		cf := 0.35 + 0.15*math.Sin(float64(hour-solarDawn)*math.Pi/12) + g.sampler.Uniform(-0.2, 0.3)
		return clamp01(cf)
	case market.FuelModelSolar:
		if hour < solarDawn || hour > solarDusk {
			return 0
		}
		cf := 0.8 * math.Sin(float64(hour-solarDawn)*math.Pi/12)
		return clamp01(cf * g.sampler.Uniform(0.7, 1.0))
	default:
		return clamp01(g.sampler.Uniform(fuel.CFMin, fuel.CFMax))
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// round keeps the documented field precision so a JSON round trip
// reproduces identical values.
func round(v float64, digits int) float64 {
	p := math.Pow10(digits)
	return math.Round(v*p) / p
}
