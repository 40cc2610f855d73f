package exchange

import (
	"encoding/json"

	"github.com/sawpanic/arbscan/internal/model"
)

type bingxResponse struct {
	Data []struct {
		Symbol      string    `json:"symbol"`
		LastPrice   flexFloat `json:"lastPrice"`
		QuoteVolume flexFloat `json:"quoteVolume"`
	} `json:"data"`
}

func parseBingX(raw []byte, opts ParseOptions) []model.Ticker {
	var resp bingxResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	out := make([]model.Ticker, 0, len(resp.Data))
	for _, it := range resp.Data {
		if it.Symbol == "" || !keep(float64(it.LastPrice), float64(it.QuoteVolume), opts) {
			continue
		}
		out = append(out, model.Ticker{
			Exchange:   "bingx",
			Symbol:     NormalizeSymbol(it.Symbol, "bingx"),
			Price:      float64(it.LastPrice),
			Volume24h:  float64(it.QuoteVolume),
			ObservedAt: opts.At,
		})
	}
	return out
}

func init() { RegisterParser("bingx", parseBingX) }
