package exchange

import (
	"encoding/json"

	"github.com/sawpanic/arbscan/internal/model"
)

// Binance and MEXC serve the same 24hr ticker array shape.

type binanceTicker struct {
	Symbol         string    `json:"symbol"`
	LastPrice      flexFloat `json:"lastPrice"`
	QuoteVolume    flexFloat `json:"quoteVolume"`
	PriceChangePct flexFloat `json:"priceChangePercent"`
}

func parseBinanceStyle(exchangeID string) ParseFunc {
	return func(raw []byte, opts ParseOptions) []model.Ticker {
		var items []binanceTicker
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		out := make([]model.Ticker, 0, len(items))
		for _, it := range items {
			if it.Symbol == "" || !keep(float64(it.LastPrice), float64(it.QuoteVolume), opts) {
				continue
			}
			out = append(out, model.Ticker{
				Exchange:     exchangeID,
				Symbol:       NormalizeSymbol(it.Symbol, exchangeID),
				Price:        float64(it.LastPrice),
				Volume24h:    float64(it.QuoteVolume),
				ChangePct24h: float64(it.PriceChangePct),
				ObservedAt:   opts.At,
			})
		}
		return out
	}
}

func init() {
	RegisterParser("binance", parseBinanceStyle("binance"))
	RegisterParser("mexc", parseBinanceStyle("mexc"))
}
