package engine

import (
	"math"
	"sort"

	"github.com/sawpanic/gridpulse/internal/config"
	"github.com/sawpanic/gridpulse/internal/market"
)

// Detector scans a snapshot for spatial, temporal, and congestion
// arbitrage opportunities. The three detectors are independent and
// order-insensitive; results are pooled, ranked by profit potential,
// and truncated.
type Detector struct {
	catalog *market.Catalog
	cfg     config.SignalConfig
	sampler Sampler
}

func NewDetector(catalog *market.Catalog, cfg config.SignalConfig, sampler Sampler) *Detector {
	return &Detector{catalog: catalog, cfg: cfg, sampler: sampler}
}

// Detect runs all three detectors over the snapshot and returns the
// top signals sorted descending by profit potential. Zones and
// interfaces are walked in catalog order so a seeded sampler yields
// reproducible output.
func (d *Detector) Detect(snap *market.Snapshot) []market.Signal {
	var signals []market.Signal
	signals = append(signals, d.spatial(snap)...)
	signals = append(signals, d.temporal(snap)...)
	signals = append(signals, d.congestion(snap)...)

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].ProfitPotential > signals[j].ProfitPotential
	})
	if len(signals) > d.cfg.MaxSignals {
		signals = signals[:d.cfg.MaxSignals]
	}
	return signals
}

// spatial emits a signal for every unordered zone pair whose RT price
// spread exceeds the threshold: buy the cheap zone, sell the dear one.
func (d *Detector) spatial(snap *market.Snapshot) []market.Signal {
	var signals []market.Signal
	zones := d.catalog.Zones
	for i := 0; i < len(zones); i++ {
		for j := i + 1; j < len(zones); j++ {
			a, b := snap.Zones[zones[i].ID], snap.Zones[zones[j].ID]
			spread := math.Abs(a.RTPrice - b.RTPrice)
			if spread <= d.cfg.SpatialSpread {
				continue
			}

			buy, sell := zones[i].ID, zones[j].ID
			if a.RTPrice > b.RTPrice {
				buy, sell = sell, buy
			}
			signals = append(signals, market.Signal{
				Type:            market.SignalSpatialArbitrage,
				Action:          market.ActionBuy,
				ZoneBuy:         buy,
				ZoneSell:        sell,
				Spread:          round(spread, 2),
				VolumeMW:        round(d.sampler.Uniform(50, 300), 0),
				ProfitPotential: round(spread*d.sampler.Uniform(100, 500), 0),
				RiskScore:       round(d.sampler.Uniform(0.2, 0.8), 3),
				Confidence:      round(d.sampler.Uniform(0.7, 0.95), 3),
				TimeHorizon:     market.Horizon1H,
			})
		}
	}
	return signals
}

// temporal emits a virtual bid when RT clears over DA and a virtual
// offer when DA clears over RT, once the basis exceeds the threshold.
func (d *Detector) temporal(snap *market.Snapshot) []market.Signal {
	var signals []market.Signal
	for _, zone := range d.catalog.Zones {
		zs := snap.Zones[zone.ID]
		spread := math.Abs(zs.DAPrice - zs.RTPrice)
		if spread <= d.cfg.TemporalSpread {
			continue
		}

		action := market.ActionVirtualOffer
		if zs.RTPrice > zs.DAPrice {
			action = market.ActionVirtualBid
		}
		signals = append(signals, market.Signal{
			Type:            market.SignalTemporalArbitrage,
			Action:          action,
			Zone:            zone.ID,
			Spread:          round(spread, 2),
			VolumeMW:        round(d.sampler.Uniform(25, 150), 0),
			ProfitPotential: round(spread*d.sampler.Uniform(50, 200), 0),
			RiskScore:       round(d.sampler.Uniform(0.3, 0.7), 3),
			Confidence:      round(d.sampler.Uniform(0.6, 0.9), 3),
			TimeHorizon:     "RT",
		})
	}
	return signals
}

// congestion emits a hedge when an interface is both heavily utilized
// and carrying a meaningful shadow price.
func (d *Detector) congestion(snap *market.Snapshot) []market.Signal {
	var signals []market.Signal
	for _, iface := range d.catalog.Interfaces {
		is := snap.Interfaces[iface.ID]
		if is.Utilization <= d.cfg.CongestionUtilization || is.ShadowPrice <= d.cfg.CongestionShadowFloor {
			continue
		}
		signals = append(signals, market.Signal{
			Type:            market.SignalCongestionHedge,
			Action:          market.ActionHedgeLong,
			Interface:       iface.ID,
			Spread:          round(is.ShadowPrice, 2),
			VolumeMW:        round(d.sampler.Uniform(20, 100), 0),
			ProfitPotential: round(is.ShadowPrice*d.sampler.Uniform(30, 80), 0),
			RiskScore:       round(d.sampler.Uniform(0.4, 0.8), 3),
			Confidence:      round(d.sampler.Uniform(0.5, 0.85), 3),
			TimeHorizon:     market.Horizon4H,
		})
	}
	return signals
}
