package exchange

import (
	"encoding/json"

	"github.com/sawpanic/arbscan/internal/model"
)

type lbankResponse struct {
	Data []struct {
		Symbol string `json:"symbol"`
		Ticker struct {
			Latest   flexFloat `json:"latest"`
			Turnover flexFloat `json:"turnover"`
			Change   flexFloat `json:"change"`
		} `json:"ticker"`
	} `json:"data"`
}

func parseLBank(raw []byte, opts ParseOptions) []model.Ticker {
	var resp lbankResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	out := make([]model.Ticker, 0, len(resp.Data))
	for _, it := range resp.Data {
		if it.Symbol == "" || !keep(float64(it.Ticker.Latest), float64(it.Ticker.Turnover), opts) {
			continue
		}
		out = append(out, model.Ticker{
			Exchange:     "lbank",
			Symbol:       NormalizeSymbol(it.Symbol, "lbank"),
			Price:        float64(it.Ticker.Latest),
			Volume24h:    float64(it.Ticker.Turnover),
			ChangePct24h: float64(it.Ticker.Change),
			ObservedAt:   opts.At,
		})
	}
	return out
}

func init() { RegisterParser("lbank", parseLBank) }
