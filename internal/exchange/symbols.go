package exchange

import "strings"

// CoinInfo carries curated metadata for the premium coin set.
type CoinInfo struct {
	Category      string
	MarketCapRank int
}

// premiumCoins are the curated large caps that earn a ranking bonus and a
// risk discount.
var premiumCoins = map[string]CoinInfo{
	"BTCUSDT":   {Category: "layer1", MarketCapRank: 1},
	"ETHUSDT":   {Category: "layer1", MarketCapRank: 2},
	"BNBUSDT":   {Category: "exchange", MarketCapRank: 4},
	"SOLUSDT":   {Category: "layer1", MarketCapRank: 5},
	"XRPUSDT":   {Category: "payment", MarketCapRank: 6},
	"ADAUSDT":   {Category: "layer1", MarketCapRank: 8},
	"AVAXUSDT":  {Category: "layer1", MarketCapRank: 10},
	"DOGEUSDT":  {Category: "meme", MarketCapRank: 11},
	"DOTUSDT":   {Category: "layer0", MarketCapRank: 12},
	"MATICUSDT": {Category: "layer2", MarketCapRank: 13},
}

// trustedSymbols are presumed safe from naming collisions and manipulation:
// the premium set plus established mid caps.
var trustedSymbols = func() map[string]struct{} {
	set := map[string]struct{}{}
	for s := range premiumCoins {
		set[s] = struct{}{}
	}
	for _, s := range []string{
		"LINKUSDT", "LTCUSDT", "BCHUSDT", "UNIUSDT", "ATOMUSDT",
		"VETUSDT", "FILUSDT", "TRXUSDT", "ETCUSDT", "XLMUSDT",
		"ALGOUSDT", "ICPUSDT", "THETAUSDT", "AXSUSDT", "SANDUSDT",
		"MANAUSDT", "CHZUSDT", "ENJUSDT", "GALAUSDT", "APTUSDT",
		"NEARUSDT", "FLOWUSDT", "AAVEUSDT", "COMPUSDT", "SUSHIUSDT",
		"YFIUSDT", "SNXUSDT", "MKRUSDT", "CRVUSDT", "1INCHUSDT",
		"RUNEUSDT", "LUNA2USDT", "FTMUSDT", "ONEUSDT", "ZILUSDT",
		"ZECUSDT", "DASHUSDT", "WAVESUSDT", "ONTUSDT", "QTUMUSDT",
	} {
		set[s] = struct{}{}
	}
	return set
}()

// suspiciousKeywords flag base tokens whose names are commonly reused by
// unrelated scam or meme coins across venues.
var suspiciousKeywords = []string{
	"SUN", "MOON", "SHIB", "PEPE", "FLOKI", "BABY",
	"SAFE", "MINI", "MICRO", "MEGA", "SUPER", "ULTRA", "ELON",
	"MARS", "ROCKET", "DIAMOND", "GOLD", "SILVER", "TITAN",
	"RISE", "FIRE", "ICE", "SNOW", "STORM", "THUNDER", "LIGHTNING",
}

var quoteAssets = []string{"USDT", "USDC", "BUSD"}

// IsTrusted reports whether the canonical symbol is in the curated safe set.
func IsTrusted(symbol string) bool {
	_, ok := trustedSymbols[symbol]
	return ok
}

// IsPremium reports whether the canonical symbol is a curated premium coin.
func IsPremium(symbol string) bool {
	_, ok := premiumCoins[symbol]
	return ok
}

// Category returns the curated category for a symbol, or "other".
func Category(symbol string) string {
	if info, ok := premiumCoins[symbol]; ok {
		return info.Category
	}
	return "other"
}

// BaseToken strips the known quote assets off a canonical symbol.
func BaseToken(symbol string) string {
	for _, quote := range quoteAssets {
		if strings.HasSuffix(symbol, quote) && len(symbol) > len(quote) {
			return strings.TrimSuffix(symbol, quote)
		}
	}
	return symbol
}

// HasSuspiciousName reports whether the symbol's base token matches a known
// scam/meme naming pattern. DOGE is excluded: it is in the trusted set and
// trust wins before this check runs.
func HasSuspiciousName(symbol string) bool {
	base := strings.ToUpper(BaseToken(symbol))
	for _, kw := range suspiciousKeywords {
		if strings.Contains(base, kw) {
			return true
		}
	}
	return false
}
