package exchange

import (
	"bytes"
	"strconv"
	"time"

	"github.com/sawpanic/arbscan/internal/model"
)

// ParseOptions carries the cross-venue knobs every parser honors.
type ParseOptions struct {
	// MinVolume drops records whose 24h quote volume is below this floor.
	MinVolume float64
	// At is stamped on every produced ticker.
	At time.Time
}

// ParseFunc converts one venue's raw ticker payload into normalized tickers.
// Parsers are pure: no I/O, no shared state. A parser that cannot decode its
// payload returns nil rather than an error; a single malformed record is
// dropped without affecting the rest.
type ParseFunc func(raw []byte, opts ParseOptions) []model.Ticker

var parsers = map[string]ParseFunc{}

// RegisterParser installs the parser for an exchange ID. Each venue's parser
// lives in its own file and self-registers; adding an exchange never touches
// existing parsers.
func RegisterParser(id string, fn ParseFunc) {
	parsers[id] = fn
}

// Parse runs the registered parser for the exchange, or returns nil when no
// parser is known for it.
func Parse(id string, raw []byte, opts ParseOptions) []model.Ticker {
	fn, ok := parsers[id]
	if !ok {
		return nil
	}
	return fn(raw, opts)
}

// HasParser reports whether a parser is registered for the exchange.
func HasParser(id string) bool {
	_, ok := parsers[id]
	return ok
}

// flexFloat decodes JSON numbers that venues serve interchangeably as
// numbers, quoted strings, empty strings or null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		// Unparseable numerics zero the field; the record is then
		// dropped by the price/volume checks.
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// keep is the shared record filter: positive price, volume at or above the
// configured floor.
func keep(price, volume float64, opts ParseOptions) bool {
	return price > 0 && volume >= opts.MinVolume
}
