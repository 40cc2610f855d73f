package exchange

import (
	"encoding/json"

	"github.com/sawpanic/arbscan/internal/model"
)

type gateTicker struct {
	CurrencyPair string    `json:"currency_pair"`
	Last         flexFloat `json:"last"`
	QuoteVolume  flexFloat `json:"quote_volume"`
	ChangePct    flexFloat `json:"change_percentage"`
}

func parseGate(raw []byte, opts ParseOptions) []model.Ticker {
	var items []gateTicker
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]model.Ticker, 0, len(items))
	for _, it := range items {
		if it.CurrencyPair == "" || !keep(float64(it.Last), float64(it.QuoteVolume), opts) {
			continue
		}
		out = append(out, model.Ticker{
			Exchange:     "gate",
			Symbol:       NormalizeSymbol(it.CurrencyPair, "gate"),
			Price:        float64(it.Last),
			Volume24h:    float64(it.QuoteVolume),
			ChangePct24h: float64(it.ChangePct),
			ObservedAt:   opts.At,
		})
	}
	return out
}

func init() { RegisterParser("gate", parseGate) }
