package arb

import "github.com/sawpanic/arbscan/internal/model"

// Rejection names why an opportunity failed the caller's filters.
type Rejection string

const (
	RejectNone     Rejection = ""
	RejectRisk     Rejection = "risk"
	RejectProfit   Rejection = "profit"
	RejectVolume   Rejection = "volume"
	RejectExchange Rejection = "exchange"
	RejectCategory Rejection = "category"
)

// Passes evaluates every present filter field as an independent AND-ed
// predicate. An absent field constrains nothing.
func Passes(o *model.Opportunity, f *model.Filters) (bool, Rejection) {
	if f == nil {
		return true, RejectNone
	}

	if len(f.RiskLevels) > 0 && !containsRisk(f.RiskLevels, o.RiskLevel) {
		return false, RejectRisk
	}
	if f.MinProfit != nil && o.ProfitPercent < *f.MinProfit {
		return false, RejectProfit
	}
	if f.MinVolume != nil && o.Volume24h < *f.MinVolume {
		return false, RejectVolume
	}
	if len(f.Exchanges) > 0 &&
		!containsString(f.Exchanges, o.LowExchange) &&
		!containsString(f.Exchanges, o.HighExchange) {
		return false, RejectExchange
	}
	if len(f.Categories) > 0 && !containsString(f.Categories, o.Category) {
		return false, RejectCategory
	}
	return true, RejectNone
}

func containsRisk(levels []model.RiskLevel, level model.RiskLevel) bool {
	for _, l := range levels {
		if l == level {
			return true
		}
	}
	return false
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
