package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arbscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Server.RequestTimeoutSeconds)
	assert.Equal(t, 30*time.Second, cfg.CacheConfig().TTL)
	assert.Equal(t, 15*time.Second, cfg.CacheConfig().MinInterval)
	assert.Equal(t, 100_000.0, cfg.Arbitrage.MinVolume)
	assert.Equal(t, 10, cfg.Arbitrage.FreeLimit)
	assert.Equal(t, 100, cfg.Arbitrage.PremiumLimit)

	endpoints, err := cfg.Endpoints()
	require.NoError(t, err)
	assert.Len(t, endpoints, 14, "empty list enables the full catalog")
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9999
cache:
  ttl_seconds: 60
arbitrage:
  min_volume: 250000
exchanges: [binance, kraken, okx]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.CacheConfig().TTL)
	assert.Equal(t, 250_000.0, cfg.Arbitrage.MinVolume)
	assert.Equal(t, 250_000.0, cfg.EngineConfig().Build.MinVolume)
	// Untouched sections keep defaults.
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 10, cfg.Fetch.MaxConcurrency)

	endpoints, err := cfg.Endpoints()
	require.NoError(t, err)
	assert.Len(t, endpoints, 3)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ARBSCAN_POSTGRES_DSN", "postgres://test")
	t.Setenv("ARBSCAN_REDIS_ADDR", "localhost:6379")
	t.Setenv("HTTP_PORT", "7070")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://test", cfg.Postgres.DSN)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown exchange":     "exchanges: [binance, nasdaq]",
		"zero ttl":             "cache:\n  ttl_seconds: 0",
		"zero concurrency":     "fetch:\n  max_concurrency: 0",
		"ratio below one":      "arbitrage:\n  max_price_ratio: 0.9",
		"zero free limit":      "arbitrage:\n  free_limit: 0",
		"zero request timeout": "server:\n  request_timeout_seconds: 0",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: ["))
	assert.Error(t, err)
}
