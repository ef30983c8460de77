package engine

import (
	"github.com/sawpanic/gridpulse/internal/market"
)

// horizonSpec pairs a forecast horizon with its volatility multiplier
// and sampled confidence range. Confidence midpoints decrease with
// horizon length; individual draws may not (soft monotonicity).
type horizonSpec struct {
	horizon    string
	multiplier float64
	confLo     float64
	confHi     float64
}

var horizons = []horizonSpec{
	{market.Horizon1H, 1.0, 0.80, 0.95},
	{market.Horizon4H, 1.5, 0.70, 0.90},
	{market.Horizon24H, 2.0, 0.60, 0.85},
}

// Projector perturbs current snapshot values into short multi-horizon
// forecasts. No learned model here: projections are bounded samples
// around the current state.
type Projector struct {
	catalog *market.Catalog
	sampler Sampler
}

func NewProjector(catalog *market.Catalog, sampler Sampler) *Projector {
	return &Projector{catalog: catalog, sampler: sampler}
}

// Project covers every zone x horizon pair plus one system entry per
// horizon. Predicted price at horizon h stays within
// current * (1 +/- multiplier(h) * volatility).
func (p *Projector) Project(snap *market.Snapshot) market.PredictionSet {
	set := market.PredictionSet{
		Zones:  make([]market.Prediction, 0, len(p.catalog.Zones)*len(horizons)),
		System: make([]market.SystemPrediction, 0, len(horizons)),
	}

	for _, zone := range p.catalog.Zones {
		zs := snap.Zones[zone.ID]
		vol := zs.PriceVolatility
		if vol <= 0 {
			vol = defaultVolatility
		}
		for _, h := range horizons {
			set.Zones = append(set.Zones, market.Prediction{
				Zone:           zone.ID,
				Horizon:        h.horizon,
				PredictedPrice: round(zs.RTPrice*(1+p.sampler.Uniform(-h.multiplier*vol, h.multiplier*vol)), 2),
				PredictedLoad:  round(zs.LoadMW*p.sampler.Uniform(0.95, 1.05), 1),
				Confidence:     round(p.sampler.Uniform(h.confLo, h.confHi), 3),
			})
		}
	}

	for _, h := range horizons {
		sp := market.SystemPrediction{
			Horizon:           h.horizon,
			PredictedAvgPrice: round(snap.System.AvgPrice*(1+p.sampler.Uniform(-h.multiplier*defaultVolatility, h.multiplier*defaultVolatility)), 2),
			Confidence:        round(p.sampler.Uniform(h.confLo, h.confHi), 3),
		}
		if h.horizon == market.Horizon24H {
			sp.PredictedReserveMargin = round(p.sampler.Uniform(0.10, 0.20), 3)
			sp.PredictedRenewableShare = round(clamp01(snap.System.RenewableShare*p.sampler.Uniform(0.85, 1.15)), 3)
			sp.PredictedPeakLoad = round(snap.System.TotalLoad*p.sampler.Uniform(1.05, 1.15), 1)
		}
		set.System = append(set.System, sp)
	}
	return set
}
