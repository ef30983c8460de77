package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sawpanic/gridpulse/internal/market"
)

// SignalConfig holds the detector thresholds and the ranking bound.
type SignalConfig struct {
	SpatialSpread         float64 `yaml:"spatial_spread"`
	TemporalSpread        float64 `yaml:"temporal_spread"`
	CongestionUtilization float64 `yaml:"congestion_utilization"`
	CongestionShadowFloor float64 `yaml:"congestion_shadow_floor"`
	MaxSignals            int     `yaml:"max_signals"`
}

// AlertConfig holds the ordered threshold tables for the classifier.
type AlertConfig struct {
	PriceCritical         float64 `yaml:"price_critical"`
	PriceHigh             float64 `yaml:"price_high"`
	ReserveMarginCritical float64 `yaml:"reserve_margin_critical"`
	UtilizationCritical   float64 `yaml:"utilization_critical"`
	RenewableCFMedium     float64 `yaml:"renewable_cf_medium"`
	MaxAlerts             int     `yaml:"max_alerts"`
}

// Duration is a time.Duration that unmarshals from YAML strings
// like "30s" or "5m".
type Duration time.Duration

// D returns the wrapped time.Duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// SchedulerConfig controls the refresh cadence.
type SchedulerConfig struct {
	Interval Duration `yaml:"interval"`
	Backoff  Duration `yaml:"backoff"`
}

// HTTPConfig holds the API server settings.
type HTTPConfig struct {
	Host         string   `yaml:"host"`
	Port         int      `yaml:"port"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	IdleTimeout  Duration `yaml:"idle_timeout"`
}

// RedisConfig holds the optional bundle-publisher settings.
type RedisConfig struct {
	Enabled bool     `yaml:"enabled"`
	Addr    string   `yaml:"addr"`
	Key     string   `yaml:"key"`
	TTL     Duration `yaml:"ttl"`
}

// PostgresConfig holds the optional cycle-history recorder settings.
type PostgresConfig struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
}

// Config is the full application configuration. Catalogs and
// thresholds are data; validation happens once at startup and an
// invalid config is fatal, never silently clamped.
type Config struct {
	Catalog   *market.Catalog `yaml:"catalog"`
	Signals   SignalConfig    `yaml:"signals"`
	Alerts    AlertConfig     `yaml:"alerts"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	HTTP      HTTPConfig      `yaml:"http"`
	Redis     RedisConfig     `yaml:"redis"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Seed      int64           `yaml:"seed"`
	LogLevel  string          `yaml:"log_level"`
}

// Default returns the built-in configuration: the NYISO-flavored
// catalog and the stock thresholds.
func Default() *Config {
	return &Config{
		Catalog: market.DefaultCatalog(),
		Signals: SignalConfig{
			SpatialSpread:         10,
			TemporalSpread:        8,
			CongestionUtilization: 0.85,
			CongestionShadowFloor: 15,
			MaxSignals:            10,
		},
		Alerts: AlertConfig{
			PriceCritical:         150,
			PriceHigh:             100,
			ReserveMarginCritical: 0.10,
			UtilizationCritical:   0.95,
			RenewableCFMedium:     0.80,
			MaxAlerts:             15,
		},
		Scheduler: SchedulerConfig{
			Interval: Duration(30 * time.Second),
			Backoff:  Duration(10 * time.Second),
		},
		HTTP: HTTPConfig{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  Duration(10 * time.Second),
			WriteTimeout: Duration(10 * time.Second),
			IdleTimeout:  Duration(60 * time.Second),
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			Key:  "gridpulse:bundle:latest",
			TTL:  Duration(5 * time.Minute),
		},
		LogLevel: "info",
	}
}

// Load reads a YAML config file over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the catalog and every threshold table. Ordered
// tables must be strictly ordered: a CRITICAL threshold that is not
// stricter than HIGH is a configuration bug, not something to clamp.
func (c *Config) Validate() error {
	if c.Catalog == nil {
		return market.ErrEmptyCatalog
	}
	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}

	if c.Signals.SpatialSpread <= 0 || c.Signals.TemporalSpread <= 0 {
		return fmt.Errorf("signal spread thresholds must be positive")
	}
	if c.Signals.CongestionUtilization <= 0 || c.Signals.CongestionUtilization >= 1 {
		return fmt.Errorf("congestion utilization threshold %.2f outside (0,1)", c.Signals.CongestionUtilization)
	}
	if c.Signals.CongestionShadowFloor < 0 {
		return fmt.Errorf("congestion shadow-price floor must be non-negative")
	}
	if c.Signals.MaxSignals <= 0 {
		return fmt.Errorf("max_signals must be positive")
	}

	if c.Alerts.PriceCritical <= c.Alerts.PriceHigh {
		return fmt.Errorf("price_critical (%.1f) must exceed price_high (%.1f)",
			c.Alerts.PriceCritical, c.Alerts.PriceHigh)
	}
	if c.Alerts.ReserveMarginCritical <= 0 || c.Alerts.ReserveMarginCritical >= 1 {
		return fmt.Errorf("reserve_margin_critical %.2f outside (0,1)", c.Alerts.ReserveMarginCritical)
	}
	if c.Alerts.UtilizationCritical <= 0 || c.Alerts.UtilizationCritical > 1 {
		return fmt.Errorf("utilization_critical %.2f outside (0,1]", c.Alerts.UtilizationCritical)
	}
	if c.Alerts.RenewableCFMedium <= 0 || c.Alerts.RenewableCFMedium > 1 {
		return fmt.Errorf("renewable_cf_medium %.2f outside (0,1]", c.Alerts.RenewableCFMedium)
	}
	if c.Alerts.MaxAlerts <= 0 {
		return fmt.Errorf("max_alerts must be positive")
	}

	if c.Scheduler.Interval.D() < time.Second {
		return fmt.Errorf("scheduler interval %s too short", c.Scheduler.Interval.D())
	}
	if c.Scheduler.Backoff <= 0 {
		return fmt.Errorf("scheduler backoff must be positive")
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.HTTP.Port)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis enabled without addr")
	}
	if c.Postgres.Enabled && c.Postgres.DSN == "" {
		return fmt.Errorf("postgres enabled without dsn")
	}
	return nil
}
