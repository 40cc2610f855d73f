// Package safety decides whether a symbol is eligible for arbitrage
// consideration at all. Ineligible symbols are excluded from opportunity
// construction entirely, not merely down-ranked.
package safety

import (
	"fmt"

	"github.com/sawpanic/arbscan/internal/exchange"
	"github.com/sawpanic/arbscan/internal/model"
)

// Config carries the eligibility thresholds.
type Config struct {
	// MinVolume is the general sufficient-volume threshold per exchange.
	MinVolume float64
	// SuspiciousVolumeFactor scales MinVolume into the elevated total
	// volume a suspicious-named symbol must carry.
	SuspiciousVolumeFactor float64
	// SuspiciousMinExchanges is the elevated coverage requirement for
	// suspicious-named symbols.
	SuspiciousMinExchanges int
	// MaxVolumeDiscrepancy rejects symbols whose largest leg volume
	// exceeds the smallest by more than this factor, a data-anomaly tell.
	MaxVolumeDiscrepancy float64
}

func DefaultConfig() Config {
	return Config{
		MinVolume:              100_000,
		SuspiciousVolumeFactor: 5,
		SuspiciousMinExchanges: 3,
		MaxVolumeDiscrepancy:   100,
	}
}

// Filter applies the eligibility rules in trust order.
type Filter struct {
	cfg Config
}

func NewFilter(cfg Config) *Filter {
	return &Filter{cfg: cfg}
}

// IsEligible reports whether the symbol may enter opportunity construction,
// with a human-readable reason either way.
//
// Rules, in order: trusted symbols pass immediately; suspicious-named
// symbols need elevated aggregate volume and coverage; everything else
// needs at least two quoting exchanges and sane leg volumes.
func (f *Filter) IsEligible(symbol string, quotes map[string]model.Ticker) (bool, string) {
	if exchange.IsTrusted(symbol) {
		return true, "trusted"
	}

	var totalVolume float64
	var minVol, maxVol float64
	sufficient := 0
	quoting := 0
	for _, t := range quotes {
		if t.Volume24h <= 0 {
			continue
		}
		quoting++
		totalVolume += t.Volume24h
		if t.Volume24h >= f.cfg.MinVolume {
			sufficient++
		}
		if minVol == 0 || t.Volume24h < minVol {
			minVol = t.Volume24h
		}
		if t.Volume24h > maxVol {
			maxVol = t.Volume24h
		}
	}

	if quoting == 0 {
		return false, "no_volume_data"
	}

	if exchange.HasSuspiciousName(symbol) {
		need := f.cfg.MinVolume * f.cfg.SuspiciousVolumeFactor
		if totalVolume > need && sufficient >= f.cfg.SuspiciousMinExchanges {
			return true, fmt.Sprintf("suspicious_name_high_volume_%d_exchanges", sufficient)
		}
		return false, "suspicious_name"
	}

	if quoting < 2 {
		return false, "insufficient_exchanges"
	}

	if minVol > 0 && maxVol > minVol*f.cfg.MaxVolumeDiscrepancy {
		return false, "volume_discrepancy"
	}

	if quoting >= 5 {
		return true, fmt.Sprintf("multiple_exchanges_%d", quoting)
	}
	return true, fmt.Sprintf("limited_exchanges_%d", quoting)
}
