package exchange

import (
	"encoding/json"

	"github.com/sawpanic/arbscan/internal/model"
)

// Coinbase's products listing only carries price/volume on entries the stats
// expansion is enabled for; entries without them are skipped.
type coinbaseProduct struct {
	ID        string    `json:"id"`
	Price     flexFloat `json:"price"`
	Volume24h flexFloat `json:"volume_24h"`
}

func parseCoinbase(raw []byte, opts ParseOptions) []model.Ticker {
	var items []coinbaseProduct
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]model.Ticker, 0, len(items))
	for _, it := range items {
		if it.ID == "" || !keep(float64(it.Price), float64(it.Volume24h), opts) {
			continue
		}
		out = append(out, model.Ticker{
			Exchange:   "coinbase",
			Symbol:     NormalizeSymbol(it.ID, "coinbase"),
			Price:      float64(it.Price),
			Volume24h:  float64(it.Volume24h),
			ObservedAt: opts.At,
		})
	}
	return out
}

func init() { RegisterParser("coinbase", parseCoinbase) }
