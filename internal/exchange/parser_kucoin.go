package exchange

import (
	"encoding/json"

	"github.com/sawpanic/arbscan/internal/model"
)

type kucoinResponse struct {
	Data struct {
		Ticker []struct {
			Symbol     string    `json:"symbol"`
			Last       flexFloat `json:"last"`
			VolValue   flexFloat `json:"volValue"`
			ChangeRate flexFloat `json:"changeRate"`
		} `json:"ticker"`
	} `json:"data"`
}

func parseKucoin(raw []byte, opts ParseOptions) []model.Ticker {
	var resp kucoinResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	out := make([]model.Ticker, 0, len(resp.Data.Ticker))
	for _, it := range resp.Data.Ticker {
		if it.Symbol == "" || !keep(float64(it.Last), float64(it.VolValue), opts) {
			continue
		}
		out = append(out, model.Ticker{
			Exchange:     "kucoin",
			Symbol:       NormalizeSymbol(it.Symbol, "kucoin"),
			Price:        float64(it.Last),
			Volume24h:    float64(it.VolValue),
			ChangePct24h: float64(it.ChangeRate) * 100, // KuCoin reports a fraction
			ObservedAt:   opts.At,
		})
	}
	return out
}

func init() { RegisterParser("kucoin", parseKucoin) }
