package arb

import (
	"sort"

	"github.com/sawpanic/arbscan/internal/exchange"
	"github.com/sawpanic/arbscan/internal/model"
)

// RankConfig holds the composite-score weights and access-tier ceilings.
type RankConfig struct {
	FreeLimit    int
	PremiumLimit int
}

func DefaultRankConfig() RankConfig {
	return RankConfig{FreeLimit: 10, PremiumLimit: 100}
}

// CompositeScore computes the 0-100 desirability score: profit forms the
// base, volume and venue tier add bonuses, risk subtracts.
func CompositeScore(o *model.Opportunity) float64 {
	score := o.ProfitPercent * 10

	volumeBonus := o.Volume24h / 10_000
	if volumeBonus > 20 {
		volumeBonus = 20
	}
	score += volumeBonus

	lowTier := exchange.TierOf(o.LowExchange)
	highTier := exchange.TierOf(o.HighExchange)
	switch {
	case lowTier == model.Tier1 || highTier == model.Tier1:
		score += 15
	case lowTier == model.Tier2 || highTier == model.Tier2:
		score += 10
	}

	if exchange.IsPremium(o.Symbol) {
		score += 10
	}

	score -= float64(o.RiskScore) * 5

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Rank sorts opportunities by composite score descending. The sort is
// stable, so equal scores keep their construction order.
func Rank(opportunities []model.Opportunity) {
	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].Score > opportunities[j].Score
	})
}

// Slice applies the access-tier result ceiling. Always called after scoring
// and filtering, never before.
func Slice(opportunities []model.Opportunity, tier model.AccessTier, cfg RankConfig) []model.Opportunity {
	limit := cfg.FreeLimit
	if tier == model.TierPremium {
		limit = cfg.PremiumLimit
	}
	if len(opportunities) > limit {
		return opportunities[:limit]
	}
	return opportunities
}
