package exchange

import (
	"encoding/json"

	"github.com/sawpanic/arbscan/internal/model"
)

type huobiResponse struct {
	Data []struct {
		Symbol string    `json:"symbol"`
		Close  flexFloat `json:"close"`
		Vol    flexFloat `json:"vol"` // quote currency turnover
		Open   flexFloat `json:"open"`
	} `json:"data"`
}

func parseHuobi(raw []byte, opts ParseOptions) []model.Ticker {
	var resp huobiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	out := make([]model.Ticker, 0, len(resp.Data))
	for _, it := range resp.Data {
		if it.Symbol == "" || !keep(float64(it.Close), float64(it.Vol), opts) {
			continue
		}
		change := 0.0
		if it.Open > 0 {
			change = (float64(it.Close) - float64(it.Open)) / float64(it.Open) * 100
		}
		out = append(out, model.Ticker{
			Exchange:     "huobi",
			Symbol:       NormalizeSymbol(it.Symbol, "huobi"),
			Price:        float64(it.Close),
			Volume24h:    float64(it.Vol),
			ChangePct24h: change,
			ObservedAt:   opts.At,
		})
	}
	return out
}

func init() { RegisterParser("huobi", parseHuobi) }
