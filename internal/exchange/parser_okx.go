package exchange

import (
	"encoding/json"

	"github.com/sawpanic/arbscan/internal/model"
)

type okxResponse struct {
	Data []struct {
		InstID    string    `json:"instId"`
		Last      flexFloat `json:"last"`
		VolCcy24h flexFloat `json:"volCcy24h"`
		Open24h   flexFloat `json:"open24h"`
	} `json:"data"`
}

func parseOKX(raw []byte, opts ParseOptions) []model.Ticker {
	var resp okxResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	out := make([]model.Ticker, 0, len(resp.Data))
	for _, it := range resp.Data {
		if it.InstID == "" || !keep(float64(it.Last), float64(it.VolCcy24h), opts) {
			continue
		}
		change := 0.0
		if it.Open24h > 0 {
			change = (float64(it.Last) - float64(it.Open24h)) / float64(it.Open24h) * 100
		}
		out = append(out, model.Ticker{
			Exchange:     "okx",
			Symbol:       NormalizeSymbol(it.InstID, "okx"),
			Price:        float64(it.Last),
			Volume24h:    float64(it.VolCcy24h),
			ChangePct24h: change,
			ObservedAt:   opts.At,
		})
	}
	return out
}

func init() { RegisterParser("okx", parseOKX) }
