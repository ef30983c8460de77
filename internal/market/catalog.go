package market

import (
	"errors"
	"fmt"
)

// Fuel capacity-factor models. The model picks how the generator
// samples a fuel's capacity factor each cycle.
const (
	FuelModelNuclear = "nuclear"
	FuelModelWind    = "wind"
	FuelModelSolar   = "solar"
	FuelModelUniform = "uniform"
)

var ErrEmptyCatalog = errors.New("catalog has no members")

// ZoneClass holds the baseline sampling parameters shared by every
// zone of that class.
type ZoneClass struct {
	BaseLoad      float64 `yaml:"base_load" json:"base_load"`
	LoadSwing     float64 `yaml:"load_swing" json:"load_swing"`
	BasePrice     float64 `yaml:"base_price" json:"base_price"`
	PriceSwing    float64 `yaml:"price_swing" json:"price_swing"`
	CongestionMin float64 `yaml:"congestion_min" json:"congestion_min"`
	CongestionMax float64 `yaml:"congestion_max" json:"congestion_max"`
}

// Zone is a static catalog entry. Zones never change after startup.
type Zone struct {
	ID    string `yaml:"id" json:"id"`
	Class string `yaml:"class" json:"class"`
}

// Interface is a transmission interface to a neighboring system.
type Interface struct {
	ID          string  `yaml:"id" json:"id"`
	CapacityMin float64 `yaml:"capacity_min" json:"capacity_min"`
	CapacityMax float64 `yaml:"capacity_max" json:"capacity_max"`
}

// Fuel describes one fuel type in the generation stack.
type Fuel struct {
	ID            string  `yaml:"id" json:"id"`
	Model         string  `yaml:"model" json:"model"`
	CapacityMin   float64 `yaml:"capacity_min" json:"capacity_min"`
	CapacityMax   float64 `yaml:"capacity_max" json:"capacity_max"`
	CFMin         float64 `yaml:"cf_min" json:"cf_min"`
	CFMax         float64 `yaml:"cf_max" json:"cf_max"`
	CostBase      float64 `yaml:"cost_base" json:"cost_base"`
	CostJitterMin float64 `yaml:"cost_jitter_min" json:"cost_jitter_min"`
	CostJitterMax float64 `yaml:"cost_jitter_max" json:"cost_jitter_max"`
	EmissionsRate float64 `yaml:"emissions_rate" json:"emissions_rate"`
	Renewable     bool    `yaml:"renewable" json:"renewable"`
}

// Catalog is the static universe the engine runs over: zones,
// transmission interfaces, and fuel types. Built once at startup,
// never mutated.
type Catalog struct {
	Classes    map[string]ZoneClass `yaml:"zone_classes" json:"zone_classes"`
	Zones      []Zone               `yaml:"zones" json:"zones"`
	Interfaces []Interface          `yaml:"interfaces" json:"interfaces"`
	Fuels      []Fuel               `yaml:"fuels" json:"fuels"`
}

// Validate checks the catalog is complete and internally consistent.
// A bad catalog is fatal at startup, never retried.
func (c *Catalog) Validate() error {
	if len(c.Zones) == 0 || len(c.Interfaces) == 0 || len(c.Fuels) == 0 {
		return ErrEmptyCatalog
	}
	for _, z := range c.Zones {
		if z.ID == "" {
			return fmt.Errorf("zone with empty id")
		}
		cls, ok := c.Classes[z.Class]
		if !ok {
			return fmt.Errorf("zone %s references unknown class %q", z.ID, z.Class)
		}
		if cls.BaseLoad <= 0 || cls.BasePrice <= 0 {
			return fmt.Errorf("zone class %q has non-positive baselines", z.Class)
		}
	}
	for _, iface := range c.Interfaces {
		if iface.ID == "" {
			return fmt.Errorf("interface with empty id")
		}
		if iface.CapacityMin <= 0 || iface.CapacityMax < iface.CapacityMin {
			return fmt.Errorf("interface %s has invalid capacity bounds [%.1f, %.1f]",
				iface.ID, iface.CapacityMin, iface.CapacityMax)
		}
	}
	for _, f := range c.Fuels {
		if f.ID == "" {
			return fmt.Errorf("fuel with empty id")
		}
		switch f.Model {
		case FuelModelNuclear, FuelModelWind, FuelModelSolar, FuelModelUniform:
		default:
			return fmt.Errorf("fuel %s has unknown model %q", f.ID, f.Model)
		}
		if f.CapacityMin <= 0 || f.CapacityMax < f.CapacityMin {
			return fmt.Errorf("fuel %s has invalid capacity bounds [%.1f, %.1f]",
				f.ID, f.CapacityMin, f.CapacityMax)
		}
		if f.CFMin < 0 || f.CFMax > 1 || f.CFMax < f.CFMin {
			return fmt.Errorf("fuel %s has invalid capacity-factor bounds [%.2f, %.2f]",
				f.ID, f.CFMin, f.CFMax)
		}
	}
	return nil
}

// DefaultCatalog returns the built-in NYISO-flavored universe used
// when no catalog is configured.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Classes: map[string]ZoneClass{
			"load_center_major": {BaseLoad: 8500, LoadSwing: 2000, BasePrice: 55, PriceSwing: 25, CongestionMin: 5, CongestionMax: 25},
			"load_center":       {BaseLoad: 3200, LoadSwing: 800, BasePrice: 48, PriceSwing: 20, CongestionMin: 5, CongestionMax: 25},
			"rural":             {BaseLoad: 1800, LoadSwing: 500, BasePrice: 42, PriceSwing: 15, CongestionMin: 0, CongestionMax: 8},
		},
		Zones: []Zone{
			{ID: "CAPITL", Class: "rural"},
			{ID: "CENTRL", Class: "rural"},
			{ID: "DUNWOD", Class: "load_center"},
			{ID: "GENESE", Class: "rural"},
			{ID: "HUD VL", Class: "rural"},
			{ID: "LONGIL", Class: "load_center"},
			{ID: "MHK VL", Class: "rural"},
			{ID: "MILLWD", Class: "rural"},
			{ID: "N.Y.C.", Class: "load_center_major"},
			{ID: "NORTH", Class: "rural"},
			{ID: "WEST", Class: "rural"},
		},
		Interfaces: []Interface{
			{ID: "PJM", CapacityMin: 800, CapacityMax: 2500},
			{ID: "NE", CapacityMin: 800, CapacityMax: 2500},
			{ID: "HQ", CapacityMin: 800, CapacityMax: 2500},
			{ID: "OH", CapacityMin: 800, CapacityMax: 2500},
			{ID: "IESO", CapacityMin: 800, CapacityMax: 2500},
			{ID: "MISO", CapacityMin: 800, CapacityMax: 2500},
		},
		Fuels: []Fuel{
			{ID: "Natural Gas", Model: FuelModelUniform, CapacityMin: 15000, CapacityMax: 18000, CFMin: 0.45, CFMax: 0.65, CostBase: 35, CostJitterMin: -5, CostJitterMax: 15, EmissionsRate: 0.35},
			{ID: "Nuclear", Model: FuelModelNuclear, CapacityMin: 5000, CapacityMax: 5500, CFMin: 0.92, CFMax: 0.98, CostBase: 12, CostJitterMin: -2, CostJitterMax: 3, EmissionsRate: 0},
			{ID: "Hydro", Model: FuelModelUniform, CapacityMin: 4000, CapacityMax: 4500, CFMin: 0.35, CFMax: 0.85, CostBase: 0, CostJitterMin: 0, CostJitterMax: 2, EmissionsRate: 0, Renewable: true},
			{ID: "Wind", Model: FuelModelWind, CapacityMin: 2500, CapacityMax: 3000, CFMin: 0, CFMax: 1, CostBase: 0, CostJitterMin: 0, CostJitterMax: 1, EmissionsRate: 0, Renewable: true},
			{ID: "Solar", Model: FuelModelSolar, CapacityMin: 1500, CapacityMax: 2000, CFMin: 0, CFMax: 0.8, CostBase: 0, CostJitterMin: 0, CostJitterMax: 1, EmissionsRate: 0, Renewable: true},
			{ID: "Oil", Model: FuelModelUniform, CapacityMin: 500, CapacityMax: 1500, CFMin: 0.2, CFMax: 0.6, CostBase: 85, CostJitterMin: -15, CostJitterMax: 30, EmissionsRate: 0.75},
			{ID: "Coal", Model: FuelModelUniform, CapacityMin: 500, CapacityMax: 1500, CFMin: 0.2, CFMax: 0.6, CostBase: 45, CostJitterMin: -10, CostJitterMax: 20, EmissionsRate: 0.85},
			{ID: "Battery", Model: FuelModelUniform, CapacityMin: 500, CapacityMax: 1500, CFMin: 0.2, CFMax: 0.6, CostBase: 50, CostJitterMin: -10, CostJitterMax: 20, EmissionsRate: 0},
		},
	}
}
