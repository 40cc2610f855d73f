package arb

import (
	"fmt"

	"github.com/sawpanic/arbscan/internal/exchange"
	"github.com/sawpanic/arbscan/internal/model"
)

// RiskConfig holds the point-scale thresholds. The scorer is a deliberately
// simple additive heuristic and stays deterministic for identical inputs.
type RiskConfig struct {
	HighProfitPct  float64 // above this, profit itself is a red flag
	LowVolumeFloor float64 // below this, volume adds the maximum points
	MinVolume      float64 // general minimum volume threshold
}

func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		HighProfitPct:  10.0,
		LowVolumeFloor: 50_000,
		MinVolume:      100_000,
	}
}

// ScoreRisk assigns the risk level, additive score and contributing factors
// for an opportunity, and a confidence value on [20,100].
func ScoreRisk(o *model.Opportunity, cfg RiskConfig) (model.RiskLevel, int, []string, int) {
	score := 0
	var factors []string

	// Highest profit band wins; bands are mutually exclusive.
	switch {
	case o.ProfitPercent > cfg.HighProfitPct:
		score += 3
		factors = append(factors, fmt.Sprintf("high_profit_%.1f%%", o.ProfitPercent))
	case o.ProfitPercent > 5.0:
		score += 2
		factors = append(factors, fmt.Sprintf("medium_profit_%.1f%%", o.ProfitPercent))
	case o.ProfitPercent > 2.0:
		score += 1
		factors = append(factors, fmt.Sprintf("low_profit_%.1f%%", o.ProfitPercent))
	}

	switch {
	case o.Volume24h < cfg.LowVolumeFloor:
		score += 3
		factors = append(factors, fmt.Sprintf("low_volume_%.0fk", o.Volume24h/1000))
	case o.Volume24h < cfg.MinVolume:
		score += 2
		factors = append(factors, fmt.Sprintf("medium_volume_%.0fk", o.Volume24h/1000))
	}

	lowTier := exchange.TierOf(o.LowExchange)
	highTier := exchange.TierOf(o.HighExchange)
	switch {
	case lowTier == model.Tier3 && highTier == model.Tier3:
		score += 3
		factors = append(factors, "tier3_exchanges")
	case lowTier == model.Tier3 || highTier == model.Tier3:
		score += 1
		factors = append(factors, "mixed_tier_exchanges")
	}

	if !exchange.IsTrusted(o.Symbol) {
		score += 2
		factors = append(factors, "untrusted_symbol")
	} else if exchange.IsPremium(o.Symbol) {
		score -= 1
		factors = append(factors, "premium_coin")
	}

	level := model.RiskLow
	switch {
	case score >= 6:
		level = model.RiskHigh
	case score >= 3:
		level = model.RiskMedium
	}

	confidence := 100 - score*10
	if confidence > 100 {
		confidence = 100
	}
	if confidence < 20 {
		confidence = 20
	}

	return level, score, factors, confidence
}
