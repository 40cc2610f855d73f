package exchange

import (
	"encoding/json"

	"github.com/sawpanic/arbscan/internal/model"
)

// Kraken keys its result map by pair name; "c" holds [lastPrice, lotVolume],
// "v" holds [todayVolume, last24hVolume] in base units and "o" the opening
// price of the day.
type krakenResponse struct {
	Result map[string]struct {
		C []flexFloat `json:"c"`
		V []flexFloat `json:"v"`
		O flexFloat   `json:"o"`
	} `json:"result"`
}

func parseKraken(raw []byte, opts ParseOptions) []model.Ticker {
	var resp krakenResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	out := make([]model.Ticker, 0, len(resp.Result))
	for pair, it := range resp.Result {
		if len(it.C) < 1 || len(it.V) < 2 {
			continue
		}
		last := float64(it.C[0])
		quoteVol := float64(it.V[1]) * last
		if !keep(last, quoteVol, opts) {
			continue
		}
		change := 0.0
		if it.O > 0 {
			change = (last - float64(it.O)) / float64(it.O) * 100
		}
		out = append(out, model.Ticker{
			Exchange:     "kraken",
			Symbol:       NormalizeSymbol(pair, "kraken"),
			Price:        last,
			Volume24h:    quoteVol,
			ChangePct24h: change,
			ObservedAt:   opts.At,
		})
	}
	return out
}

func init() { RegisterParser("kraken", parseKraken) }
