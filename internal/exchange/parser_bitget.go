package exchange

import (
	"encoding/json"

	"github.com/sawpanic/arbscan/internal/model"
)

type bitgetResponse struct {
	Data []struct {
		Symbol   string    `json:"symbol"`
		Close    flexFloat `json:"close"`
		QuoteVol flexFloat `json:"quoteVol"`
		Change   flexFloat `json:"change"`
	} `json:"data"`
}

func parseBitget(raw []byte, opts ParseOptions) []model.Ticker {
	var resp bitgetResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	out := make([]model.Ticker, 0, len(resp.Data))
	for _, it := range resp.Data {
		if it.Symbol == "" || !keep(float64(it.Close), float64(it.QuoteVol), opts) {
			continue
		}
		out = append(out, model.Ticker{
			Exchange:     "bitget",
			Symbol:       NormalizeSymbol(it.Symbol, "bitget"),
			Price:        float64(it.Close),
			Volume24h:    float64(it.QuoteVol),
			ChangePct24h: float64(it.Change) * 100, // Bitget reports a fraction
			ObservedAt:   opts.At,
		})
	}
	return out
}

func init() { RegisterParser("bitget", parseBitget) }
