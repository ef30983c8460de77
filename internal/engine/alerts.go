package engine

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/sawpanic/gridpulse/internal/config"
	"github.com/sawpanic/gridpulse/internal/market"
)

// SystemZone labels alerts that apply to the whole system rather
// than one zone or interface.
const SystemZone = "SYSTEM"

// Classifier evaluates a snapshot against the configured threshold
// tables. Each rule fires independently; a zone's price alert does
// not suppress another zone's, and multiple categories can fire in
// the same cycle. Confidence per alert type is fixed, not sampled.
type Classifier struct {
	catalog *market.Catalog
	cfg     config.AlertConfig
}

func NewClassifier(catalog *market.Catalog, cfg config.AlertConfig) *Classifier {
	return &Classifier{catalog: catalog, cfg: cfg}
}

// Classify returns the alert list for a snapshot, sorted by severity
// rank then recency, truncated to the configured bound.
func (c *Classifier) Classify(snap *market.Snapshot) []market.Alert {
	var alerts []market.Alert

	for _, zone := range c.catalog.Zones {
		zs := snap.Zones[zone.ID]
		switch {
		case zs.RTPrice > c.cfg.PriceCritical:
			alerts = append(alerts, market.Alert{
				ID:             uuid.NewString(),
				Severity:       market.SeverityCritical,
				Type:           "price_spike",
				Zone:           zone.ID,
				Message:        fmt.Sprintf("Extreme price spike in %s: $%.2f/MWh", zone.ID, zs.RTPrice),
				TriggerValue:   zs.RTPrice,
				Threshold:      c.cfg.PriceCritical,
				Impact:         "High trading costs, potential demand response",
				Recommendation: "Execute emergency demand response, consider supply offers",
				TimeToAction:   "5 minutes",
				Confidence:     0.95,
				Timestamp:      snap.Timestamp,
			})
		case zs.RTPrice > c.cfg.PriceHigh:
			alerts = append(alerts, market.Alert{
				ID:             uuid.NewString(),
				Severity:       market.SeverityHigh,
				Type:           "price_elevation",
				Zone:           zone.ID,
				Message:        fmt.Sprintf("High prices in %s: $%.2f/MWh", zone.ID, zs.RTPrice),
				TriggerValue:   zs.RTPrice,
				Threshold:      c.cfg.PriceHigh,
				Impact:         "Increased trading opportunities",
				Recommendation: "Monitor for arbitrage, prepare demand response",
				TimeToAction:   "15 minutes",
				Confidence:     0.88,
				Timestamp:      snap.Timestamp,
			})
		}
	}

	if rm := snap.System.ReserveMargin; rm < c.cfg.ReserveMarginCritical {
		alerts = append(alerts, market.Alert{
			ID:             uuid.NewString(),
			Severity:       market.SeverityCritical,
			Type:           "reserve_shortage",
			Zone:           SystemZone,
			Message:        fmt.Sprintf("Low reserve margin: %.1f%%", rm*100),
			TriggerValue:   rm,
			Threshold:      c.cfg.ReserveMarginCritical,
			Impact:         "Grid reliability at risk",
			Recommendation: "Activate emergency reserves, implement voltage reduction",
			TimeToAction:   "IMMEDIATE",
			Confidence:     0.92,
			Timestamp:      snap.Timestamp,
		})
	}

	for _, iface := range c.catalog.Interfaces {
		is := snap.Interfaces[iface.ID]
		if is.Utilization <= c.cfg.UtilizationCritical {
			continue
		}
		alerts = append(alerts, market.Alert{
			ID:             uuid.NewString(),
			Severity:       market.SeverityCritical,
			Type:           "transmission_congestion",
			Zone:           iface.ID,
			Message:        fmt.Sprintf("Severe congestion on %s: %.1f%% utilized", iface.ID, is.Utilization*100),
			TriggerValue:   is.Utilization,
			Threshold:      c.cfg.UtilizationCritical,
			Impact:         "Limited transfer capability, price separation",
			Recommendation: "Monitor for outages, prepare redispatch",
			TimeToAction:   "10 minutes",
			Confidence:     0.90,
			Timestamp:      snap.Timestamp,
		})
	}

	for _, fuel := range c.catalog.Fuels {
		if !fuel.Renewable {
			continue
		}
		fs := snap.Generation[fuel.ID]
		if fs.CapacityFactor <= c.cfg.RenewableCFMedium {
			continue
		}
		alerts = append(alerts, market.Alert{
			ID:             uuid.NewString(),
			Severity:       market.SeverityMedium,
			Type:           "high_renewable",
			Zone:           SystemZone,
			Message:        fmt.Sprintf("High %s generation: %.1f%% capacity factor", fuel.ID, fs.CapacityFactor*100),
			TriggerValue:   fs.CapacityFactor,
			Threshold:      c.cfg.RenewableCFMedium,
			Impact:         "Lower prices, potential grid stability issues",
			Recommendation: "Prepare for ramping needs, consider storage charging",
			TimeToAction:   "30 minutes",
			Confidence:     0.85,
			Timestamp:      snap.Timestamp,
		})
	}

	// CRITICAL first, newest first within a severity. The sort is
	// stable so same-cycle alerts keep rule order.
	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := alerts[i].Severity.Rank(), alerts[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		return alerts[i].Timestamp.After(alerts[j].Timestamp)
	})
	if len(alerts) > c.cfg.MaxAlerts {
		alerts = alerts[:c.cfg.MaxAlerts]
	}
	return alerts
}
