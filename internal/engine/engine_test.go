package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/arbscan/internal/cache"
	"github.com/sawpanic/arbscan/internal/clock"
	"github.com/sawpanic/arbscan/internal/exchange"
	"github.com/sawpanic/arbscan/internal/fetch"
	"github.com/sawpanic/arbscan/internal/metrics"
	"github.com/sawpanic/arbscan/internal/model"
	"github.com/sawpanic/arbscan/internal/stats"
)

const binancePayload = `[
	{"symbol":"BTCUSDT","lastPrice":"30000","quoteVolume":"5000000","priceChangePercent":"1.0"},
	{"symbol":"ETHUSDT","lastPrice":"2000","quoteVolume":"2500000","priceChangePercent":"0.5"},
	{"symbol":"WOOFUSDT","lastPrice":"1.00","quoteVolume":"500000","priceChangePercent":"0"}
]`

const krakenPayload = `{"error":[],"result":{
	"XBTUSDT":{"c":["30300","0.05"],"v":["50","132"],"o":"30000"},
	"WOOFUSDT":{"c":["2.00","100"],"v":["1000","150000"],"o":"2.00"}
}}`

const okxPayload = `{"code":"0","data":[
	{"instId":"BTC-USDT","last":"30100","volCcy24h":"3000000","open24h":"30000"}
]}`

// fakeSink records batches for inspection.
type fakeSink struct {
	mu      sync.Mutex
	batches [][]model.OpportunitySample
}

func (s *fakeSink) InsertBatch(ctx context.Context, samples []model.OpportunitySample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, samples)
	return nil
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func newTestEngine(t *testing.T, sink Sink) (*Engine, *stats.Tracker) {
	t.Helper()

	serve := func(payload string) *httptest.Server {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(payload))
		}))
		t.Cleanup(srv.Close)
		return srv
	}

	endpoints := []exchange.Endpoint{
		{ID: "binance", Tier: model.Tier1, URL: serve(binancePayload).URL},
		{ID: "kraken", Tier: model.Tier1, URL: serve(krakenPayload).URL},
		{ID: "okx", Tier: model.Tier2, URL: serve(okxPayload).URL},
	}

	fetchCfg := fetch.DefaultConfig()
	fetchCfg.HostRPS = 1000
	fetchCfg.HostBurst = 1000

	tracker := stats.NewTracker()
	reg := metrics.NewRegistry()
	clk := clock.Real{}
	fetcher := fetch.New(endpoints, fetchCfg, tracker, reg, clk)
	snapCache := cache.New(fetcher.FetchAll, cache.DefaultConfig(), clk, tracker, reg)

	eng := New(DefaultConfig(), snapCache, fetcher, tracker, reg, clk, sink)
	t.Cleanup(eng.Close)
	return eng, tracker
}

func TestGetOpportunities_EndToEnd(t *testing.T) {
	eng, _ := newTestEngine(t, nil)

	report, err := eng.GetOpportunities(context.Background(), model.TierFree, nil)
	require.NoError(t, err)
	require.Len(t, report.Opportunities, 1, "only BTCUSDT spans venues with sane prices")

	o := report.Opportunities[0]
	assert.Equal(t, "BTCUSDT", o.Symbol)
	assert.Equal(t, "binance", o.LowExchange)
	assert.Equal(t, "kraken", o.HighExchange)
	assert.InDelta(t, 1.0, o.ProfitPercent, 1e-9)
	assert.InDelta(t, 132*30300.0, o.Volume24h, 1.0, "min leg is kraken's quote volume")
	assert.Equal(t, model.RiskLow, o.RiskLevel)
	assert.Equal(t, 100, o.Confidence)
	assert.Greater(t, o.Score, 50.0)

	// WOOFUSDT doubles in price across venues: the ratio cap rejects it,
	// and ETHUSDT only has one quoting venue.
	assert.Equal(t, 1, report.Meta.TotalFound)
	assert.Equal(t, 3, report.Meta.ExchangeCount)
	assert.Equal(t, 3, report.Meta.SymbolCount)
	assert.Equal(t, model.TierFree, report.Meta.AccessTier)
}

func TestGetOpportunities_CountsPreFilterRejections(t *testing.T) {
	eng, tracker := newTestEngine(t, nil)

	_, err := eng.GetOpportunities(context.Background(), model.TierFree, nil)
	require.NoError(t, err)

	// WOOFUSDT trips the spread builder's ratio cap and ETHUSDT has a
	// single quoting venue: both drops land in the safety counter even
	// though no caller filter was set.
	s := tracker.Snapshot()
	assert.Equal(t, int64(2), s.SafetyFiltered)
	assert.Zero(t, s.RiskFiltered)
	assert.Zero(t, s.VolumeFiltered)
}

func TestGetOpportunities_Idempotent(t *testing.T) {
	eng, tracker := newTestEngine(t, nil)
	ctx := context.Background()

	first, err := eng.GetOpportunities(ctx, model.TierFree, nil)
	require.NoError(t, err)
	requestsAfterFirst := tracker.Snapshot().APIRequests

	second, err := eng.GetOpportunities(ctx, model.TierFree, nil)
	require.NoError(t, err)
	assert.Equal(t, requestsAfterFirst, tracker.Snapshot().APIRequests,
		"second query within TTL must not refetch")

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b), "identical snapshot yields a byte-identical report")
}

func TestGetOpportunities_Filters(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	ctx := context.Background()

	minVolume := 10_000_000.0
	report, err := eng.GetOpportunities(ctx, model.TierFree, &model.Filters{MinVolume: &minVolume})
	require.NoError(t, err)
	assert.Empty(t, report.Opportunities)

	minProfit := 0.5
	report, err = eng.GetOpportunities(ctx, model.TierFree, &model.Filters{MinProfit: &minProfit})
	require.NoError(t, err)
	assert.Len(t, report.Opportunities, 1)
}

func TestGetOpportunities_InvalidInput(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := eng.GetOpportunities(ctx, model.AccessTier("enterprise"), nil)
	assert.Error(t, err)

	bad := -1.0
	_, err = eng.GetOpportunities(ctx, model.TierFree, &model.Filters{MinProfit: &bad})
	assert.Error(t, err)
}

func TestGetOpportunities_SinkReceivesSamples(t *testing.T) {
	sink := &fakeSink{}
	eng, _ := newTestEngine(t, sink)

	_, err := eng.GetOpportunities(context.Background(), model.TierFree, nil)
	require.NoError(t, err)

	// The sink is fed on a separate goroutine.
	require.Eventually(t, func() bool { return sink.count() > 0 }, 2*time.Second, 10*time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.batches[0], 1)
	assert.Equal(t, "BTCUSDT", sink.batches[0][0].Symbol)
	assert.Equal(t, "binance", sink.batches[0][0].ExchangeLow)
}

func TestGetSymbolQuotes(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	ctx := context.Background()

	quotes, err := eng.GetSymbolQuotes(ctx, "btc-usdt")
	require.NoError(t, err)
	require.Len(t, quotes, 3, "raw spelling normalizes to the canonical symbol")
	assert.Equal(t, "binance", quotes[0].Exchange, "cheapest first")
	assert.Equal(t, "okx", quotes[1].Exchange)
	assert.Equal(t, "kraken", quotes[2].Exchange)
	assert.Equal(t, model.Tier1, quotes[0].Tier)

	quotes, err = eng.GetSymbolQuotes(ctx, "NOPEUSDT")
	require.NoError(t, err)
	assert.Empty(t, quotes)

	_, err = eng.GetSymbolQuotes(ctx, "   ")
	assert.Error(t, err)
}

func TestStats_AfterQuery(t *testing.T) {
	eng, _ := newTestEngine(t, nil)

	_, err := eng.GetOpportunities(context.Background(), model.TierFree, nil)
	require.NoError(t, err)

	s := eng.Stats()
	assert.Equal(t, int64(3), s.APIRequests)
	assert.Equal(t, int64(1), s.OpportunitiesFound)
	assert.Equal(t, int64(1), s.CacheMisses)

	p := eng.Performance()
	assert.Equal(t, 3, p.ActiveExchanges)
}
