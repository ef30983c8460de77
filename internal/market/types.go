package market

import (
	"errors"
	"time"
)

// ErrNotReady is returned for reads that arrive before the first
// successful refresh cycle. Callers must not confuse this with an
// empty result: "no data yet" is not "no opportunities found".
var ErrNotReady = errors.New("market data not yet available")

// ZoneState is the sampled state of a single zone for one snapshot.
// All fields are non-negative.
type ZoneState struct {
	LoadMW           float64 `json:"load_mw"`
	RTPrice          float64 `json:"rt_price"`
	DAPrice          float64 `json:"da_price"`
	Congestion       float64 `json:"congestion"`
	TransmissionCost float64 `json:"transmission_cost"`
	LoadFactor       float64 `json:"load_factor"`
	PriceVolatility  float64 `json:"price_volatility"`
}

// InterfaceState is the sampled state of a transmission interface.
// Utilization is flow/capacity in [0,1]; shadow price is >= 0.
type InterfaceState struct {
	FlowMW      float64 `json:"flow_mw"`
	CapacityMW  float64 `json:"capacity_mw"`
	Utilization float64 `json:"utilization"`
	ShadowPrice float64 `json:"shadow_price"`
}

// FuelState is the sampled state of one fuel type in the stack.
type FuelState struct {
	CapacityMW     float64 `json:"capacity_mw"`
	GenerationMW   float64 `json:"generation_mw"`
	CapacityFactor float64 `json:"capacity_factor"`
	MarginalCost   float64 `json:"marginal_cost"`
	EmissionsRate  float64 `json:"emissions_rate"`
}

// SystemState carries system-wide values for a snapshot. TotalLoad,
// AvgPrice, and RenewableShare are filled by the aggregate pass over
// the same snapshot; ReserveMargin and Frequency are sampled.
type SystemState struct {
	TotalLoad      float64 `json:"total_load"`
	ReserveMargin  float64 `json:"reserve_margin"`
	Frequency      float64 `json:"frequency"`
	AvgPrice       float64 `json:"avg_price"`
	RenewableShare float64 `json:"renewable_share"`
}

// Snapshot is one complete market state. Immutable once published:
// every refresh cycle builds a new one and the previous is discarded.
type Snapshot struct {
	Timestamp       time.Time                 `json:"timestamp"`
	Zones           map[string]ZoneState      `json:"zones"`
	Interfaces      map[string]InterfaceState `json:"interfaces"`
	Generation      map[string]FuelState      `json:"generation"`
	System          SystemState               `json:"system"`
	TotalGeneration float64                   `json:"total_generation"`
}

// SystemAggregates are the values derived from a snapshot by the
// aggregate pass.
type SystemAggregates struct {
	TotalLoad       float64 `json:"total_load"`
	AvgPrice        float64 `json:"avg_price"`
	TotalGeneration float64 `json:"total_generation"`
	RenewableShare  float64 `json:"renewable_share"`
}

// Trading signal types and actions.
const (
	SignalSpatialArbitrage  = "spatial_arbitrage"
	SignalTemporalArbitrage = "temporal_arbitrage"
	SignalCongestionHedge   = "congestion_hedge"

	ActionBuy          = "BUY"
	ActionVirtualBid   = "VIRTUAL_BID"
	ActionVirtualOffer = "VIRTUAL_OFFER"
	ActionHedgeLong    = "HEDGE_LONG"
)

// Signal is a detected trading opportunity. The zone fields are set
// for spatial signals, Zone for temporal, Interface for congestion.
type Signal struct {
	Type            string  `json:"type"`
	Action          string  `json:"action"`
	ZoneBuy         string  `json:"zone_buy,omitempty"`
	ZoneSell        string  `json:"zone_sell,omitempty"`
	Zone            string  `json:"zone,omitempty"`
	Interface       string  `json:"interface,omitempty"`
	Spread          float64 `json:"spread,omitempty"`
	VolumeMW        float64 `json:"volume_mw"`
	ProfitPotential float64 `json:"profit_potential"`
	RiskScore       float64 `json:"risk_score"`
	Confidence      float64 `json:"confidence"`
	TimeHorizon     string  `json:"time_horizon"`
}

// Severity is an alert severity level with a strict total order
// CRITICAL > HIGH > MEDIUM > LOW.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Rank maps a severity to its sort rank; lower sorts first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	}
	return 4
}

// Alert is one classified condition. Zone holds a zone ID, an
// interface ID, or "SYSTEM" depending on the rule that fired.
type Alert struct {
	ID             string    `json:"id"`
	Severity       Severity  `json:"severity"`
	Type           string    `json:"type"`
	Zone           string    `json:"zone"`
	Message        string    `json:"message"`
	TriggerValue   float64   `json:"trigger_value"`
	Threshold      float64   `json:"threshold"`
	Impact         string    `json:"impact"`
	Recommendation string    `json:"recommendation"`
	TimeToAction   string    `json:"time_to_action"`
	Confidence     float64   `json:"confidence"`
	Timestamp      time.Time `json:"timestamp"`
}

// Forecast horizons.
const (
	Horizon1H  = "1H"
	Horizon4H  = "4H"
	Horizon24H = "24H"
)

// Prediction is a projected price/load for one zone and horizon.
type Prediction struct {
	Zone           string  `json:"zone"`
	Horizon        string  `json:"horizon"`
	PredictedPrice float64 `json:"predicted_price"`
	PredictedLoad  float64 `json:"predicted_load"`
	Confidence     float64 `json:"confidence"`
}

// SystemPrediction is the system-level projection for one horizon.
// Reserve margin, renewable share, and peak demand are only projected
// at the 24H horizon.
type SystemPrediction struct {
	Horizon                 string  `json:"horizon"`
	PredictedAvgPrice       float64 `json:"predicted_avg_price"`
	PredictedReserveMargin  float64 `json:"predicted_reserve_margin,omitempty"`
	PredictedRenewableShare float64 `json:"predicted_renewable_share,omitempty"`
	PredictedPeakLoad       float64 `json:"predicted_peak_load,omitempty"`
	Confidence              float64 `json:"confidence"`
}

// PredictionSet covers every zone x horizon combination plus one
// system entry per horizon.
type PredictionSet struct {
	Zones  []Prediction       `json:"zones"`
	System []SystemPrediction `json:"system"`
}

// Bundle is the complete result of one refresh cycle. It is published
// as a single atomic unit: readers see either the whole previous
// bundle or the whole new one, never a mix.
type Bundle struct {
	Sequence    uint64        `json:"sequence"`
	GeneratedAt time.Time     `json:"generated_at"`
	Snapshot    Snapshot      `json:"snapshot"`
	Signals     []Signal      `json:"signals"`
	Alerts      []Alert       `json:"alerts"`
	Predictions PredictionSet `json:"predictions"`
}
