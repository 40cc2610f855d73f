package exchange

import (
	"encoding/json"

	"github.com/sawpanic/arbscan/internal/model"
)

type poloniexTicker struct {
	Close       flexFloat `json:"close"`
	QuoteVolume flexFloat `json:"quoteVolume"`
}

func parsePoloniex(raw []byte, opts ParseOptions) []model.Ticker {
	var items map[string]poloniexTicker
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]model.Ticker, 0, len(items))
	for symbol, it := range items {
		if !keep(float64(it.Close), float64(it.QuoteVolume), opts) {
			continue
		}
		out = append(out, model.Ticker{
			Exchange:   "poloniex",
			Symbol:     NormalizeSymbol(symbol, "poloniex"),
			Price:      float64(it.Close),
			Volume24h:  float64(it.QuoteVolume),
			ObservedAt: opts.At,
		})
	}
	return out
}

func init() { RegisterParser("poloniex", parsePoloniex) }
