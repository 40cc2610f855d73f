package exchange

import (
	"encoding/json"

	"github.com/sawpanic/arbscan/internal/model"
)

// Bitfinex serves positional arrays per pair:
// [SYMBOL, BID, BID_SIZE, ASK, ASK_SIZE, DAILY_CHANGE, DAILY_CHANGE_REL,
// LAST_PRICE, VOLUME, HIGH, LOW]. Volume is in base units, so quote volume
// is derived as volume * last.
func parseBitfinex(raw []byte, opts ParseOptions) []model.Ticker {
	var items [][]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]model.Ticker, 0, len(items))
	for _, it := range items {
		if len(it) < 9 {
			continue
		}
		var symbol string
		if err := json.Unmarshal(it[0], &symbol); err != nil || symbol == "" {
			continue
		}
		var last, changeRel, baseVol flexFloat
		if json.Unmarshal(it[7], &last) != nil ||
			json.Unmarshal(it[6], &changeRel) != nil ||
			json.Unmarshal(it[8], &baseVol) != nil {
			continue
		}
		quoteVol := float64(baseVol) * float64(last)
		if !keep(float64(last), quoteVol, opts) {
			continue
		}
		out = append(out, model.Ticker{
			Exchange:     "bitfinex",
			Symbol:       NormalizeSymbol(symbol, "bitfinex"),
			Price:        float64(last),
			Volume24h:    quoteVol,
			ChangePct24h: float64(changeRel) * 100,
			ObservedAt:   opts.At,
		})
	}
	return out
}

func init() { RegisterParser("bitfinex", parseBitfinex) }
