package exchange

import (
	"encoding/json"

	"github.com/sawpanic/arbscan/internal/model"
)

type bybitResponse struct {
	Result struct {
		List []struct {
			Symbol      string    `json:"symbol"`
			LastPrice   flexFloat `json:"lastPrice"`
			Turnover24h flexFloat `json:"turnover24h"`
			Price24hPct flexFloat `json:"price24hPcnt"`
		} `json:"list"`
	} `json:"result"`
}

func parseBybit(raw []byte, opts ParseOptions) []model.Ticker {
	var resp bybitResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	out := make([]model.Ticker, 0, len(resp.Result.List))
	for _, it := range resp.Result.List {
		if it.Symbol == "" || !keep(float64(it.LastPrice), float64(it.Turnover24h), opts) {
			continue
		}
		out = append(out, model.Ticker{
			Exchange:     "bybit",
			Symbol:       NormalizeSymbol(it.Symbol, "bybit"),
			Price:        float64(it.LastPrice),
			Volume24h:    float64(it.Turnover24h),
			ChangePct24h: float64(it.Price24hPct) * 100, // Bybit reports a fraction
			ObservedAt:   opts.At,
		})
	}
	return out
}

func init() { RegisterParser("bybit", parseBybit) }
