// Package exchange holds the static venue catalog, symbol normalization and
// the per-venue ticker payload parsers.
package exchange

import (
	"fmt"

	"github.com/sawpanic/arbscan/internal/model"
)

// Endpoint describes one exchange's public 24h ticker API. The catalog is
// immutable and defined at process start.
type Endpoint struct {
	ID   string
	Tier model.Tier
	URL  string
}

var catalog = []Endpoint{
	{ID: "binance", Tier: model.Tier1, URL: "https://api.binance.com/api/v3/ticker/24hr"},
	{ID: "coinbase", Tier: model.Tier1, URL: "https://api.exchange.coinbase.com/products"},
	{ID: "kraken", Tier: model.Tier1, URL: "https://api.kraken.com/0/public/Ticker"},
	{ID: "kucoin", Tier: model.Tier2, URL: "https://api.kucoin.com/api/v1/market/allTickers"},
	{ID: "gate", Tier: model.Tier2, URL: "https://api.gateio.ws/api/v4/spot/tickers"},
	{ID: "okx", Tier: model.Tier2, URL: "https://www.okx.com/api/v5/market/tickers?instType=SPOT"},
	{ID: "bybit", Tier: model.Tier2, URL: "https://api.bybit.com/v5/market/tickers?category=spot"},
	{ID: "bitget", Tier: model.Tier2, URL: "https://api.bitget.com/api/spot/v1/market/tickers"},
	{ID: "mexc", Tier: model.Tier3, URL: "https://api.mexc.com/api/v3/ticker/24hr"},
	{ID: "huobi", Tier: model.Tier3, URL: "https://api.huobi.pro/market/tickers"},
	{ID: "bitfinex", Tier: model.Tier3, URL: "https://api-pub.bitfinex.com/v2/tickers?symbols=ALL"},
	{ID: "poloniex", Tier: model.Tier3, URL: "https://api.poloniex.com/markets/ticker24h"},
	{ID: "bingx", Tier: model.Tier3, URL: "https://open-api.bingx.com/openApi/spot/v1/ticker/24hr"},
	{ID: "lbank", Tier: model.Tier3, URL: "https://api.lbkex.com/v2/ticker/24hr.do"},
}

var tierByID = func() map[string]model.Tier {
	m := make(map[string]model.Tier, len(catalog))
	for _, e := range catalog {
		m[e.ID] = e.Tier
	}
	return m
}()

// Catalog returns a copy of the full endpoint catalog.
func Catalog() []Endpoint {
	out := make([]Endpoint, len(catalog))
	copy(out, catalog)
	return out
}

// Select returns the endpoints for the given IDs, or the full catalog when
// ids is empty. Unknown IDs are a configuration error.
func Select(ids []string) ([]Endpoint, error) {
	if len(ids) == 0 {
		return Catalog(), nil
	}
	byID := make(map[string]Endpoint, len(catalog))
	for _, e := range catalog {
		byID[e.ID] = e
	}
	out := make([]Endpoint, 0, len(ids))
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown exchange %q", id)
		}
		out = append(out, e)
	}
	return out, nil
}

// TierOf returns the trust tier for an exchange ID. Unknown venues are
// treated as Tier 3, the least trusted.
func TierOf(id string) model.Tier {
	if t, ok := tierByID[id]; ok {
		return t
	}
	return model.Tier3
}
