package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/arbscan/internal/clock"
	"github.com/sawpanic/arbscan/internal/exchange"
	"github.com/sawpanic/arbscan/internal/model"
	"github.com/sawpanic/arbscan/internal/stats"
)

const binancePayload = `[
	{"symbol":"BTCUSDT","lastPrice":"30000","quoteVolume":"5000000","priceChangePercent":"1.2"},
	{"symbol":"ETHUSDT","lastPrice":"2000","quoteVolume":"2500000","priceChangePercent":"0.4"}
]`

const krakenPayload = `{"error":[],"result":{
	"XBTUSDT":{"c":["30300","0.05"],"v":["50","132"],"o":"30000"}
}}`

func jsonHandler(payload string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RequestTimeout = 2 * time.Second
	cfg.HostRPS = 1000 // keep tests fast
	cfg.HostBurst = 1000
	return cfg
}

func newTestFetcher(endpoints []exchange.Endpoint) (*Fetcher, *stats.Tracker) {
	tracker := stats.NewTracker()
	return New(endpoints, testConfig(), tracker, nil, clock.Real{}), tracker
}

func TestFetchAll_AggregatesVenues(t *testing.T) {
	binance := httptest.NewServer(jsonHandler(binancePayload))
	defer binance.Close()
	kraken := httptest.NewServer(jsonHandler(krakenPayload))
	defer kraken.Close()

	f, tracker := newTestFetcher([]exchange.Endpoint{
		{ID: "binance", Tier: model.Tier1, URL: binance.URL},
		{ID: "kraken", Tier: model.Tier1, URL: kraken.URL},
	})
	defer f.Close()

	snap := f.FetchAll(context.Background())
	require.NotNil(t, snap)
	assert.Equal(t, 2, snap.ExchangeCount)
	assert.Equal(t, 2, snap.SymbolCount, "BTCUSDT overlaps, ETHUSDT is binance-only")

	assert.Equal(t, 30_000.0, snap.PerExchange["binance"]["BTCUSDT"].Price)
	assert.Equal(t, 30_300.0, snap.PerExchange["kraken"]["BTCUSDT"].Price, "kraken XBT spelling normalized")

	s := tracker.Snapshot()
	assert.Equal(t, int64(2), s.APIRequests)
	assert.Equal(t, int64(0), s.Exchanges["binance"].Errors)
}

func TestFetchAll_FailingVenueIsIsolated(t *testing.T) {
	binance := httptest.NewServer(jsonHandler(binancePayload))
	defer binance.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	f, tracker := newTestFetcher([]exchange.Endpoint{
		{ID: "binance", Tier: model.Tier1, URL: binance.URL},
		{ID: "mexc", Tier: model.Tier3, URL: broken.URL},
	})
	defer f.Close()

	snap := f.FetchAll(context.Background())
	assert.Equal(t, 1, snap.ExchangeCount, "only reporting venues count")
	assert.Empty(t, snap.PerExchange["mexc"], "failed venue yields an empty map, not a missing key")
	assert.NotNil(t, snap.PerExchange["mexc"])

	assert.Equal(t, int64(1), tracker.Snapshot().Exchanges["mexc"].Errors)
}

func TestFetchAll_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	requests := 0
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer broken.Close()

	f, _ := newTestFetcher([]exchange.Endpoint{
		{ID: "mexc", Tier: model.Tier3, URL: broken.URL},
	})
	defer f.Close()

	for i := 0; i < 5; i++ {
		f.FetchAll(context.Background())
	}
	assert.Equal(t, 3, requests, "breaker trips after three consecutive failures")
}

func TestFetchAll_UndecodablePayload(t *testing.T) {
	garbage := httptest.NewServer(jsonHandler(`<html>rate limited</html>`))
	defer garbage.Close()

	f, _ := newTestFetcher([]exchange.Endpoint{
		{ID: "binance", Tier: model.Tier1, URL: garbage.URL},
	})
	defer f.Close()

	snap := f.FetchAll(context.Background())
	assert.Equal(t, 0, snap.ExchangeCount)
}

func TestFetchAll_ContextCancellation(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer slow.Close()

	f, _ := newTestFetcher([]exchange.Endpoint{
		{ID: "binance", Tier: model.Tier1, URL: slow.URL},
	})
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	snap := f.FetchAll(ctx)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 0, snap.ExchangeCount)
}

func TestFetchAll_NoEndpoints(t *testing.T) {
	f, _ := newTestFetcher(nil)
	defer f.Close()

	snap := f.FetchAll(context.Background())
	require.NotNil(t, snap)
	assert.Equal(t, 0, snap.ExchangeCount)
	assert.Equal(t, 0, snap.SymbolCount)
}
