// Package config loads the yaml configuration and the env overrides used in
// deployment. Configuration errors are fatal at startup, never surfaced at
// request time.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sawpanic/arbscan/internal/arb"
	"github.com/sawpanic/arbscan/internal/cache"
	"github.com/sawpanic/arbscan/internal/engine"
	"github.com/sawpanic/arbscan/internal/exchange"
	"github.com/sawpanic/arbscan/internal/fetch"
	"github.com/sawpanic/arbscan/internal/safety"
)

type ServerConfig struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `yaml:"idle_timeout_seconds"`
	// RequestTimeoutSeconds caps one handler's work; enforced by the
	// timeout middleware, so it must sit below write_timeout_seconds.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

type CacheConfig struct {
	TTLSeconds                int `yaml:"ttl_seconds"`
	MinRefreshIntervalSeconds int `yaml:"min_refresh_interval_seconds"`
	BackgroundIntervalSeconds int `yaml:"background_interval_seconds"`
}

type FetchConfig struct {
	MaxConcurrency     int     `yaml:"max_concurrency"`
	TimeoutSeconds     int     `yaml:"timeout_seconds"`
	DialTimeoutSeconds int     `yaml:"dial_timeout_seconds"`
	UserAgent          string  `yaml:"user_agent"`
	HostRPS            float64 `yaml:"host_rps"`
	HostBurst          int     `yaml:"host_burst"`
	ParseMinVolume     float64 `yaml:"parse_min_volume"`
}

type ArbitrageConfig struct {
	MinVolume      float64 `yaml:"min_volume"`
	NoiseFloorPct  float64 `yaml:"noise_floor_percent"`
	MaxPriceRatio  float64 `yaml:"max_price_ratio"`
	MaxProfitPct   float64 `yaml:"max_profit_percent"`
	LowVolumeFloor float64 `yaml:"low_volume_floor"`
	FreeLimit      int     `yaml:"free_limit"`
	PremiumLimit   int     `yaml:"premium_limit"`
	SampleSize     int     `yaml:"sample_size"`
}

type PostgresConfig struct {
	DSN            string `yaml:"dsn"` // empty disables the analytics sink
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type RedisConfig struct {
	Addr       string `yaml:"addr"` // empty disables the snapshot mirror
	Key        string `yaml:"key"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Cache     CacheConfig     `yaml:"cache"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Arbitrage ArbitrageConfig `yaml:"arbitrage"`
	Exchanges []string        `yaml:"exchanges"` // empty enables the full catalog
	Postgres  PostgresConfig  `yaml:"postgres"`
	Redis     RedisConfig     `yaml:"redis"`
}

// Default returns the built-in configuration, matching the documented
// pipeline defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                  "127.0.0.1",
			Port:                  8080,
			ReadTimeoutSeconds:    10,
			WriteTimeoutSeconds:   10,
			IdleTimeoutSeconds:    60,
			RequestTimeoutSeconds: 5,
		},
		Cache: CacheConfig{
			TTLSeconds:                30,
			MinRefreshIntervalSeconds: 15,
			BackgroundIntervalSeconds: 25,
		},
		Fetch: FetchConfig{
			MaxConcurrency:     10,
			TimeoutSeconds:     10,
			DialTimeoutSeconds: 5,
			UserAgent:          fetch.DefaultConfig().UserAgent,
			HostRPS:            2,
			HostBurst:          4,
			ParseMinVolume:     10_000,
		},
		Arbitrage: ArbitrageConfig{
			MinVolume:      100_000,
			NoiseFloorPct:  0.1,
			MaxPriceRatio:  1.30,
			MaxProfitPct:   20.0,
			LowVolumeFloor: 50_000,
			FreeLimit:      10,
			PremiumLimit:   100,
			SampleSize:     5,
		},
		Postgres: PostgresConfig{TimeoutSeconds: 3},
		Redis:    RedisConfig{Key: "arbscan:snapshot", TTLSeconds: 60},
	}
}

// Load reads the yaml file over the defaults, then applies env overrides
// and validates. An empty path loads defaults only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if dsn := os.Getenv("ARBSCAN_POSTGRES_DSN"); dsn != "" {
		c.Postgres.DSN = dsn
	}
	if addr := os.Getenv("ARBSCAN_REDIS_ADDR"); addr != "" {
		c.Redis.Addr = addr
	}
	if portStr := os.Getenv("HTTP_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			c.Server.Port = p
		}
	}
}

// Validate rejects configurations the pipeline cannot start with.
func (c *Config) Validate() error {
	if _, err := exchange.Select(c.Exchanges); err != nil {
		return err
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache.ttl_seconds must be positive, got %d", c.Cache.TTLSeconds)
	}
	if c.Cache.MinRefreshIntervalSeconds < 0 {
		return fmt.Errorf("cache.min_refresh_interval_seconds must not be negative")
	}
	if c.Fetch.MaxConcurrency <= 0 {
		return fmt.Errorf("fetch.max_concurrency must be positive, got %d", c.Fetch.MaxConcurrency)
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("server.request_timeout_seconds must be positive, got %d", c.Server.RequestTimeoutSeconds)
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be positive, got %d", c.Fetch.TimeoutSeconds)
	}
	if c.Arbitrage.FreeLimit <= 0 || c.Arbitrage.PremiumLimit <= 0 {
		return fmt.Errorf("arbitrage result limits must be positive")
	}
	if c.Arbitrage.MaxPriceRatio <= 1 {
		return fmt.Errorf("arbitrage.max_price_ratio must exceed 1, got %v", c.Arbitrage.MaxPriceRatio)
	}
	return nil
}

// Endpoints resolves the enabled exchange endpoints.
func (c *Config) Endpoints() ([]exchange.Endpoint, error) {
	return exchange.Select(c.Exchanges)
}

func (c *Config) FetchConfig() fetch.Config {
	return fetch.Config{
		MaxConcurrency: c.Fetch.MaxConcurrency,
		RequestTimeout: time.Duration(c.Fetch.TimeoutSeconds) * time.Second,
		DialTimeout:    time.Duration(c.Fetch.DialTimeoutSeconds) * time.Second,
		UserAgent:      c.Fetch.UserAgent,
		HostRPS:        c.Fetch.HostRPS,
		HostBurst:      c.Fetch.HostBurst,
		ParseMinVolume: c.Fetch.ParseMinVolume,
	}
}

func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		TTL:         time.Duration(c.Cache.TTLSeconds) * time.Second,
		MinInterval: time.Duration(c.Cache.MinRefreshIntervalSeconds) * time.Second,
	}
}

func (c *Config) BackgroundInterval() time.Duration {
	return time.Duration(c.Cache.BackgroundIntervalSeconds) * time.Second
}

func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		Build: arb.BuildConfig{
			NoiseFloorPct: c.Arbitrage.NoiseFloorPct,
			MaxPriceRatio: c.Arbitrage.MaxPriceRatio,
			MaxProfitPct:  c.Arbitrage.MaxProfitPct,
			MinVolume:     c.Arbitrage.MinVolume,
		},
		Risk: arb.RiskConfig{
			HighProfitPct:  arb.DefaultRiskConfig().HighProfitPct,
			LowVolumeFloor: c.Arbitrage.LowVolumeFloor,
			MinVolume:      c.Arbitrage.MinVolume,
		},
		Rank: arb.RankConfig{
			FreeLimit:    c.Arbitrage.FreeLimit,
			PremiumLimit: c.Arbitrage.PremiumLimit,
		},
		Safety: safety.Config{
			MinVolume:              c.Arbitrage.MinVolume,
			SuspiciousVolumeFactor: safety.DefaultConfig().SuspiciousVolumeFactor,
			SuspiciousMinExchanges: safety.DefaultConfig().SuspiciousMinExchanges,
			MaxVolumeDiscrepancy:   safety.DefaultConfig().MaxVolumeDiscrepancy,
		},
		SampleSize:  c.Arbitrage.SampleSize,
		SinkTimeout: time.Duration(c.Postgres.TimeoutSeconds) * time.Second,
	}
}

func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
