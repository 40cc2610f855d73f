// Package model defines the core value types shared across the arbscan
// pipeline: tickers, snapshots, opportunities, filters and stats.
package model

import (
	"fmt"
	"time"
)

// Tier classifies an exchange by trust and liquidity. Tier 1 venues are
// the largest and most reliable; Tier 3 the smallest.
type Tier int

const (
	Tier1 Tier = iota + 1
	Tier2
	Tier3
)

func (t Tier) String() string {
	switch t {
	case Tier1:
		return "tier_1"
	case Tier2:
		return "tier_2"
	case Tier3:
		return "tier_3"
	default:
		return "unknown"
	}
}

// RiskLevel is the LOW/MEDIUM/HIGH classification produced by the risk scorer.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ParseRiskLevel converts a string to a RiskLevel, rejecting unknown values.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch RiskLevel(s) {
	case RiskLow, RiskMedium, RiskHigh:
		return RiskLevel(s), nil
	default:
		return "", fmt.Errorf("unknown risk level %q", s)
	}
}

// AccessTier controls how many ranked opportunities a caller may receive.
type AccessTier string

const (
	TierFree    AccessTier = "free"
	TierPremium AccessTier = "premium"
)

// Ticker is one exchange's last price, 24h quote volume and 24h change for
// one symbol at one point in time. Tickers are produced fresh on every fetch
// and never mutated.
type Ticker struct {
	Exchange     string    `json:"exchange"`
	Symbol       string    `json:"symbol"`
	Price        float64   `json:"price"`
	Volume24h    float64   `json:"volume_24h"`
	ChangePct24h float64   `json:"change_24h"`
	ObservedAt   time.Time `json:"observed_at"`
}

// Snapshot is one aggregated generation of ticker data across all exchanges.
// It is built once by the fetcher and never mutated afterwards; readers hold
// a reference to one generation and are unaffected by later replacements.
type Snapshot struct {
	PerExchange map[string]map[string]Ticker `json:"per_exchange"`
	CapturedAt  time.Time                    `json:"captured_at"`

	// ExchangeCount counts exchanges that reported at least one ticker.
	ExchangeCount int `json:"exchange_count"`
	// SymbolCount counts distinct canonical symbols across all exchanges.
	SymbolCount int `json:"symbol_count"`
}

// Tickers returns all quotes for one canonical symbol, keyed by exchange.
func (s *Snapshot) Tickers(symbol string) map[string]Ticker {
	out := make(map[string]Ticker)
	for exchange, tickers := range s.PerExchange {
		if t, ok := tickers[symbol]; ok {
			out[exchange] = t
		}
	}
	return out
}

// Quote is one exchange's current price for a symbol, as returned by the
// symbol-quotes lookup.
type Quote struct {
	Exchange     string  `json:"exchange"`
	Tier         Tier    `json:"tier"`
	Price        float64 `json:"price"`
	Volume24h    float64 `json:"volume_24h"`
	ChangePct24h float64 `json:"change_24h"`
}

// Opportunity is a detected buy-low/sell-high spread for one symbol across
// two exchanges. Derived from a snapshot on every query, never persisted by
// the engine itself.
type Opportunity struct {
	Symbol        string    `json:"symbol"`
	LowExchange   string    `json:"low_exchange"`
	HighExchange  string    `json:"high_exchange"`
	LowPrice      float64   `json:"low_price"`
	HighPrice     float64   `json:"high_price"`
	ProfitPercent float64   `json:"profit_percent"`
	Volume24h     float64   `json:"volume_24h"`
	ExchangeCount int       `json:"exchange_count"`
	RiskLevel     RiskLevel `json:"risk_level"`
	RiskScore     int       `json:"risk_score"`
	RiskFactors   []string  `json:"risk_factors"`
	Confidence    int       `json:"confidence"`
	Score         float64   `json:"opportunity_score"`
	Category      string    `json:"category"`
}

// Filters narrows an opportunity query. A nil or zero field means no
// constraint on that dimension.
type Filters struct {
	MinProfit  *float64    `json:"min_profit,omitempty"`
	RiskLevels []RiskLevel `json:"risk_levels,omitempty"`
	Exchanges  []string    `json:"exchanges,omitempty"`
	Categories []string    `json:"categories,omitempty"`
	MinVolume  *float64    `json:"min_volume,omitempty"`
}

// Validate rejects filter values that cannot be satisfied. This is the only
// caller-visible rejection the engine produces under spec'd error policy.
func (f *Filters) Validate() error {
	if f == nil {
		return nil
	}
	if f.MinProfit != nil && *f.MinProfit < 0 {
		return fmt.Errorf("min_profit must be >= 0, got %v", *f.MinProfit)
	}
	if f.MinVolume != nil && *f.MinVolume < 0 {
		return fmt.Errorf("min_volume must be >= 0, got %v", *f.MinVolume)
	}
	for _, rl := range f.RiskLevels {
		if _, err := ParseRiskLevel(string(rl)); err != nil {
			return err
		}
	}
	return nil
}

// ReportMeta describes the snapshot and pipeline state behind a report.
type ReportMeta struct {
	CapturedAt    time.Time   `json:"captured_at"`
	ExchangeCount int         `json:"exchange_count"`
	SymbolCount   int         `json:"symbol_count"`
	TotalFound    int         `json:"total_found"`
	AccessTier    AccessTier  `json:"access_tier"`
	Performance   PerfSummary `json:"performance"`
}

// OpportunityReport is the engine's answer to an opportunities query.
type OpportunityReport struct {
	Opportunities []Opportunity `json:"opportunities"`
	Meta          ReportMeta    `json:"metadata"`
}

// OpportunitySample is the narrow record handed to the analytics sink.
type OpportunitySample struct {
	Symbol        string    `json:"symbol" db:"symbol"`
	ExchangeLow   string    `json:"exchange_low" db:"exchange_low"`
	ExchangeHigh  string    `json:"exchange_high" db:"exchange_high"`
	PriceLow      float64   `json:"price_low" db:"price_low"`
	PriceHigh     float64   `json:"price_high" db:"price_high"`
	ProfitPercent float64   `json:"profit_percent" db:"profit_percent"`
	Volume24h     float64   `json:"volume_24h" db:"volume_24h"`
	Timestamp     time.Time `json:"timestamp" db:"ts"`
}

// ExchangeStats tracks one exchange's observed request behavior.
type ExchangeStats struct {
	AvgLatency  time.Duration `json:"avg_latency"`
	SuccessRate float64       `json:"success_rate"`
	Requests    int64         `json:"requests"`
	Errors      int64         `json:"errors"`
}

// Stats is a read-only copy of the pipeline counters.
type Stats struct {
	CacheHits          int64                    `json:"cache_hits"`
	CacheMisses        int64                    `json:"cache_misses"`
	APIRequests        int64                    `json:"api_requests"`
	OpportunitiesFound int64                    `json:"opportunities_found"`
	RiskFiltered       int64                    `json:"risk_filtered"`
	VolumeFiltered     int64                    `json:"volume_filtered"`
	SafetyFiltered     int64                    `json:"safety_filtered"`
	Exchanges          map[string]ExchangeStats `json:"exchanges"`
}

// PerfSummary condenses per-exchange health into report metadata.
type PerfSummary struct {
	AvgResponseMS   float64 `json:"avg_response_ms"`
	ActiveExchanges int     `json:"active_exchanges"`
	SuccessRate     float64 `json:"success_rate"`
	TotalRequests   int64   `json:"total_api_requests"`
}
