// Package arb turns snapshot ticker data into scored, ranked, filtered
// arbitrage opportunities.
package arb

import (
	"github.com/sawpanic/arbscan/internal/exchange"
	"github.com/sawpanic/arbscan/internal/model"
)

// BuildConfig bounds which spreads count as real opportunities.
type BuildConfig struct {
	// NoiseFloorPct drops spreads too small to act on.
	NoiseFloorPct float64
	// MaxPriceRatio rejects spreads an order of magnitude beyond what a
	// real two-sided market can sustain; those are stale or bad data.
	MaxPriceRatio float64
	// MaxProfitPct is the sanity cap on believable profit.
	MaxProfitPct float64
	// MinVolume is the opportunity-level floor on min(leg volumes).
	MinVolume float64
}

func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		NoiseFloorPct: 0.1,
		MaxPriceRatio: 1.30,
		MaxProfitPct:  20.0,
		MinVolume:     100_000,
	}
}

// Build selects the lowest- and highest-priced quotes for one symbol and
// computes the spread. Returns nil when no plausible opportunity exists.
func Build(symbol string, quotes map[string]model.Ticker, cfg BuildConfig) *model.Opportunity {
	if len(quotes) < 2 {
		return nil
	}

	var low, high model.Ticker
	first := true
	for _, t := range quotes {
		if first {
			low, high = t, t
			first = false
			continue
		}
		if t.Price < low.Price {
			low = t
		}
		if t.Price > high.Price {
			high = t
		}
	}
	if low.Price <= 0 {
		return nil
	}

	profit := (high.Price - low.Price) / low.Price * 100
	if profit < cfg.NoiseFloorPct {
		return nil
	}
	if high.Price/low.Price > cfg.MaxPriceRatio || profit > cfg.MaxProfitPct {
		return nil
	}

	volume := low.Volume24h
	if high.Volume24h < volume {
		volume = high.Volume24h
	}
	if volume < cfg.MinVolume {
		return nil
	}

	return &model.Opportunity{
		Symbol:        symbol,
		LowExchange:   low.Exchange,
		HighExchange:  high.Exchange,
		LowPrice:      low.Price,
		HighPrice:     high.Price,
		ProfitPercent: profit,
		Volume24h:     volume,
		ExchangeCount: len(quotes),
		Category:      exchange.Category(symbol),
	}
}
