// Package config loads the application settings from YAML, falling
// back to compiled-in defaults when no file is present.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MohammedBenaboud/Alphaseeker/src/application/tune"
)

// IngestConfig controls the market data poller.
type IngestConfig struct {
	BaseURL         string        `yaml:"base_url"`
	Query           string        `yaml:"query"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	RequestsPerSec  float64       `yaml:"requests_per_sec"`
	BurstAllowance  int           `yaml:"burst_allowance"`
	MinLiquidityUSD float64       `yaml:"min_liquidity_usd"`
	Synthetic       bool          `yaml:"synthetic"`
}

// ServerConfig controls the HTTP status server.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// CacheConfig controls the snapshot cache.
type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	SnapshotTTL   time.Duration `yaml:"snapshot_ttl"`
}

// DatabaseConfig controls the Postgres execution ledger. An empty DSN
// disables persistence.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NarrativeConfig controls the optional annotation service.
type NarrativeConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
	Enabled  bool          `yaml:"enabled"`
}

// Settings is the full application configuration. The Trading section
// is the tuner-owned part; everything else is static for the process
// lifetime.
type Settings struct {
	Trading   tune.TradingConfig `yaml:"trading"`
	Ingest    IngestConfig       `yaml:"ingest"`
	Server    ServerConfig       `yaml:"server"`
	Cache     CacheConfig        `yaml:"cache"`
	Database  DatabaseConfig     `yaml:"database"`
	Narrative NarrativeConfig    `yaml:"narrative"`
}

// Defaults returns the compiled-in baseline settings.
func Defaults() Settings {
	return Settings{
		Trading: tune.DefaultTradingConfig(),
		Ingest: IngestConfig{
			BaseURL:         "https://api.dexscreener.com",
			Query:           "SOL",
			PollInterval:    30 * time.Second,
			RequestTimeout:  10 * time.Second,
			RequestsPerSec:  2,
			BurstAllowance:  4,
			MinLiquidityUSD: 10000,
		},
		Server: ServerConfig{
			Addr:         ":8090",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			RedisAddr:   "localhost:6379",
			SnapshotTTL: 2 * time.Minute,
		},
		Narrative: NarrativeConfig{
			Timeout: 8 * time.Second,
		},
	}
}

// Load reads settings from path, layered over Defaults. A missing file
// is not an error; the defaults apply as-is.
func Load(path string) (Settings, error) {
	settings := Defaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(settings); err != nil {
		return settings, fmt.Errorf("validate config: %w", err)
	}
	return settings, nil
}

// Validate rejects settings the pipeline cannot run with.
func Validate(s Settings) error {
	if s.Ingest.PollInterval <= 0 {
		return fmt.Errorf("ingest poll_interval must be positive")
	}
	if s.Ingest.RequestsPerSec <= 0 {
		return fmt.Errorf("ingest requests_per_sec must be positive")
	}
	if !s.Ingest.Synthetic && s.Ingest.BaseURL == "" {
		return fmt.Errorf("ingest base_url is required unless synthetic mode is on")
	}
	if s.Server.Addr == "" {
		return fmt.Errorf("server addr is required")
	}

	t := s.Trading
	if t.Scoring.MinLiquidity < 0 {
		return fmt.Errorf("scoring min_liquidity must be non-negative")
	}
	weightSum := t.Scoring.VolumeWeight + t.Scoring.MomentumWeight +
		t.Scoring.LiquidityWeight + t.Scoring.VolatilityWeight
	if weightSum <= 0 {
		return fmt.Errorf("scoring weights must sum to a positive value")
	}
	if t.Risk.MaxOpenPositions <= 0 {
		return fmt.Errorf("risk max_open_positions must be positive")
	}
	if t.Risk.BasePositionSize <= 0 {
		return fmt.Errorf("risk base_position_size must be positive")
	}
	if t.Risk.CooldownSeconds < 0 {
		return fmt.Errorf("risk cooldown_seconds must be non-negative")
	}
	return nil
}
