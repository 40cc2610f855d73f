package exchange

import "strings"

// aliases rewrites legacy or venue-private ticker codes to their canonical
// form after separator stripping. Applied last so it sees canonical spelling.
var aliases = map[string]string{
	"XBTUSDT": "BTCUSDT",
	"XBTUSD":  "BTCUSD",
	"XDGUSDT": "DOGEUSDT",
	"XDGUSD":  "DOGEUSD",
}

// NormalizeSymbol maps one exchange's symbol spelling to the canonical form:
// separators stripped, upper-cased, venue prefixes removed and legacy codes
// rewritten. Idempotent: normalizing an already canonical symbol is a no-op.
func NormalizeSymbol(raw, exchangeID string) string {
	s := raw

	// Bitfinex prefixes trading pairs with a lowercase "t" (tBTCUSD).
	// Strip it before upper-casing so canonical symbols starting with T
	// (TRXUSDT and friends) survive a second pass untouched.
	if exchangeID == "bitfinex" && len(s) > 1 && s[0] == 't' && s[1] >= 'A' && s[1] <= 'Z' {
		s = s[1:]
	}

	s = strings.ToUpper(s)
	s = strings.NewReplacer("/", "", "-", "", "_", "").Replace(s)

	if exchangeID == "kraken" {
		s = krakenCanonical(s)
	}

	if canonical, ok := aliases[s]; ok {
		return canonical
	}
	return s
}

// krakenLegacy maps Kraken's pre-2014 asset codes to canonical tickers.
var krakenLegacy = map[string]string{
	"XBT": "BTC",
	"XDG": "DOGE",
}

// krakenCanonical rewrites Kraken's legacy spellings. Classic pair names
// prefix crypto assets with X and fiat with Z (XXBTZUSD, XETHZEUR); newer
// pairs just lead with the legacy code (XBTUSDT). Both rewrites are anchored
// so running the result through again changes nothing.
func krakenCanonical(s string) string {
	if len(s) == 8 && s[0] == 'X' && s[4] == 'Z' {
		base, quote := s[1:4], s[5:8]
		if c, ok := krakenLegacy[base]; ok {
			base = c
		}
		return base + quote
	}
	for legacy, canonical := range krakenLegacy {
		if strings.HasPrefix(s, legacy) {
			return canonical + s[len(legacy):]
		}
	}
	return s
}
