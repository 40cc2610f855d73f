package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/arbscan/internal/cache"
	"github.com/sawpanic/arbscan/internal/clock"
	"github.com/sawpanic/arbscan/internal/engine"
	"github.com/sawpanic/arbscan/internal/exchange"
	"github.com/sawpanic/arbscan/internal/fetch"
	"github.com/sawpanic/arbscan/internal/model"
	"github.com/sawpanic/arbscan/internal/stats"
)

const binancePayload = `[
	{"symbol":"BTCUSDT","lastPrice":"30000","quoteVolume":"5000000","priceChangePercent":"1.0"}
]`

const krakenPayload = `{"error":[],"result":{
	"XBTUSDT":{"c":["30300","0.05"],"v":["50","132"],"p":["30100","30200"]}
}}`

// newTestRouter wires real handlers over an engine backed by httptest
// exchange endpoints. With no payloads the engine never builds a snapshot.
func newTestRouter(t *testing.T, payloads map[string]string) *mux.Router {
	t.Helper()

	var endpoints []exchange.Endpoint
	for id, payload := range payloads {
		body := payload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))
		t.Cleanup(srv.Close)
		endpoints = append(endpoints, exchange.Endpoint{ID: id, URL: srv.URL})
	}

	fetchCfg := fetch.DefaultConfig()
	fetchCfg.HostRPS = 1000
	fetchCfg.HostBurst = 1000

	tracker := stats.NewTracker()
	clk := clock.Real{}
	fetcher := fetch.New(endpoints, fetchCfg, tracker, nil, clk)
	snapCache := cache.New(fetcher.FetchAll, cache.DefaultConfig(), clk, tracker, nil)
	eng := engine.New(engine.DefaultConfig(), snapCache, fetcher, tracker, nil, clk, nil)
	t.Cleanup(eng.Close)

	h := NewHandlers(eng, clk)
	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/v1/opportunities", h.Opportunities).Methods("GET")
	r.HandleFunc("/v1/quotes/{symbol}", h.Quotes).Methods("GET")
	r.HandleFunc("/v1/stats", h.Stats).Methods("GET")
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	return r
}

func doGET(t *testing.T, r *mux.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

func marketRouter(t *testing.T) *mux.Router {
	return newTestRouter(t, map[string]string{"binance": binancePayload, "kraken": krakenPayload})
}

func TestOpportunities_OK(t *testing.T) {
	rec := doGET(t, marketRouter(t), "/v1/opportunities")
	require.Equal(t, http.StatusOK, rec.Code)

	var report model.OpportunityReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Opportunities, 1)
	assert.Equal(t, "BTCUSDT", report.Opportunities[0].Symbol)
	assert.Equal(t, model.TierFree, report.Meta.AccessTier)
}

func TestOpportunities_QueryParams(t *testing.T) {
	r := marketRouter(t)

	rec := doGET(t, r, "/v1/opportunities?tier=premium&min_profit=0.5&risk=low,medium")
	require.Equal(t, http.StatusOK, rec.Code)
	var report model.OpportunityReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, model.TierPremium, report.Meta.AccessTier)
	assert.Len(t, report.Opportunities, 1)

	rec = doGET(t, r, "/v1/opportunities?min_profit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Empty(t, report.Opportunities)
}

func TestOpportunities_BadInput(t *testing.T) {
	r := marketRouter(t)

	for _, path := range []string{
		"/v1/opportunities?tier=enterprise",
		"/v1/opportunities?min_profit=lots",
		"/v1/opportunities?min_volume=-5",
		"/v1/opportunities?risk=extreme",
	} {
		rec := doGET(t, r, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "path=%s", path)

		var errResp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
		assert.NotEmpty(t, errResp.Message)
	}
}

func TestQuotes(t *testing.T) {
	r := marketRouter(t)

	rec := doGET(t, r, "/v1/quotes/btc-usdt")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp QuotesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "BTCUSDT", resp.Symbol)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "binance", resp.Quotes[0].Exchange, "cheapest first")

	rec = doGET(t, r, "/v1/quotes/NOPEUSDT")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	// No endpoints: the engine can never capture a snapshot.
	degraded := newTestRouter(t, nil)
	rec := doGET(t, degraded, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Nil(t, resp.SnapshotAge)

	healthy := marketRouter(t)
	doGET(t, healthy, "/v1/opportunities") // warms the snapshot
	rec = doGET(t, healthy, "/health")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.NotNil(t, resp.SnapshotAge)
	assert.Equal(t, 2, resp.ExchangeCount)
}

func TestStatsEndpoint(t *testing.T) {
	r := marketRouter(t)
	doGET(t, r, "/v1/opportunities")

	rec := doGET(t, r, "/v1/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Stats.APIRequests)
	assert.Equal(t, 2, resp.Performance.ActiveExchanges)
}

func TestNotFound(t *testing.T) {
	rec := doGET(t, newTestRouter(t, nil), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestParseQuery(t *testing.T) {
	tier, filters, err := parseQuery(map[string][]string{
		"tier":       {"premium"},
		"min_profit": {"1.5"},
		"exchange":   {"Binance, kraken"},
		"category":   {"layer1"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.TierPremium, tier)
	require.NotNil(t, filters.MinProfit)
	assert.Equal(t, 1.5, *filters.MinProfit)
	assert.Equal(t, []string{"binance", "kraken"}, filters.Exchanges)
	assert.Equal(t, []string{"layer1"}, filters.Categories)

	tier, filters, err = parseQuery(map[string][]string{})
	require.NoError(t, err)
	assert.Equal(t, model.TierFree, tier)
	assert.Nil(t, filters.MinProfit)

	_, _, err = parseQuery(map[string][]string{"risk": {"extreme"}})
	assert.Error(t, err)
}

func TestHealth_UptimeGrows(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	fetcher := fetch.New(nil, fetch.DefaultConfig(), stats.NewTracker(), nil, clk)
	snapCache := cache.New(fetcher.FetchAll, cache.DefaultConfig(), clk, stats.NewTracker(), nil)
	eng := engine.New(engine.DefaultConfig(), snapCache, fetcher, stats.NewTracker(), nil, clk, nil)
	t.Cleanup(eng.Close)

	h := NewHandlers(eng, clk)
	clk.Advance(90 * time.Second)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest("GET", "/health", nil))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 90.0, resp.UptimeSeconds)
}
