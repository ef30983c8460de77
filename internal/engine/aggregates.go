package engine

import (
	"github.com/sawpanic/gridpulse/internal/market"
)

// Aggregator derives system-wide totals from a snapshot. It needs the
// catalog to know which fuels count as renewable.
type Aggregator struct {
	catalog *market.Catalog
}

func NewAggregator(catalog *market.Catalog) *Aggregator {
	return &Aggregator{catalog: catalog}
}

// Compute returns total load, mean RT price, total generation, and
// the renewable share. An empty zone or fuel set is reported as an
// explicit error rather than letting a division produce NaN.
func (a *Aggregator) Compute(snap *market.Snapshot) (market.SystemAggregates, error) {
	if len(snap.Zones) == 0 || len(snap.Generation) == 0 {
		return market.SystemAggregates{}, market.ErrEmptyCatalog
	}

	var agg market.SystemAggregates
	for _, zs := range snap.Zones {
		agg.TotalLoad += zs.LoadMW
		agg.AvgPrice += zs.RTPrice
	}
	agg.AvgPrice /= float64(len(snap.Zones))

	var renewable float64
	for _, fuel := range a.catalog.Fuels {
		fs, ok := snap.Generation[fuel.ID]
		if !ok {
			continue
		}
		agg.TotalGeneration += fs.GenerationMW
		if fuel.Renewable {
			renewable += fs.GenerationMW
		}
	}
	if agg.TotalGeneration <= 0 {
		return market.SystemAggregates{}, market.ErrEmptyCatalog
	}
	agg.RenewableShare = renewable / agg.TotalGeneration

	agg.TotalLoad = round(agg.TotalLoad, 1)
	agg.AvgPrice = round(agg.AvgPrice, 2)
	agg.TotalGeneration = round(agg.TotalGeneration, 1)
	agg.RenewableShare = round(agg.RenewableShare, 3)
	return agg, nil
}
