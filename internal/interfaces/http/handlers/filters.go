package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sawpanic/arbscan/internal/model"
)

// parseQuery translates query parameters into an access tier and filter set.
// Unknown parameters are ignored; malformed values are errors.
func parseQuery(q url.Values) (model.AccessTier, *model.Filters, error) {
	tier := model.TierFree
	switch strings.ToLower(q.Get("tier")) {
	case "", "free":
	case "premium":
		tier = model.TierPremium
	default:
		return "", nil, fmt.Errorf("unknown tier %q", q.Get("tier"))
	}

	filters := &model.Filters{}

	if v := q.Get("min_profit"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", nil, fmt.Errorf("min_profit: %w", err)
		}
		filters.MinProfit = &f
	}

	if v := q.Get("min_volume"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", nil, fmt.Errorf("min_volume: %w", err)
		}
		filters.MinVolume = &f
	}

	for _, raw := range splitParam(q.Get("risk")) {
		level, err := model.ParseRiskLevel(raw)
		if err != nil {
			return "", nil, err
		}
		filters.RiskLevels = append(filters.RiskLevels, level)
	}

	filters.Exchanges = splitParam(q.Get("exchange"))
	filters.Categories = splitParam(q.Get("category"))

	return tier, filters, nil
}

// splitParam splits a comma-separated parameter, trimming blanks.
func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}
