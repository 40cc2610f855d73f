// Package engine wires the snapshot cache, safety filter, opportunity
// builder, risk scorer, ranker and filter engine into the one public
// interface the outer layers (HTTP facade, bots) consume.
package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/arbscan/internal/arb"
	"github.com/sawpanic/arbscan/internal/cache"
	"github.com/sawpanic/arbscan/internal/clock"
	"github.com/sawpanic/arbscan/internal/exchange"
	"github.com/sawpanic/arbscan/internal/fetch"
	"github.com/sawpanic/arbscan/internal/metrics"
	"github.com/sawpanic/arbscan/internal/model"
	"github.com/sawpanic/arbscan/internal/safety"
	"github.com/sawpanic/arbscan/internal/stats"
)

// Sink receives small opportunity samples for offline analytics. The engine
// never blocks on it and never surfaces its errors.
type Sink interface {
	InsertBatch(ctx context.Context, samples []model.OpportunitySample) error
}

// Config bundles the pipeline thresholds.
type Config struct {
	Build  arb.BuildConfig
	Risk   arb.RiskConfig
	Rank   arb.RankConfig
	Safety safety.Config

	// SampleSize is how many top opportunities go to the sink per query.
	SampleSize  int
	SinkTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Build:       arb.DefaultBuildConfig(),
		Risk:        arb.DefaultRiskConfig(),
		Rank:        arb.DefaultRankConfig(),
		Safety:      safety.DefaultConfig(),
		SampleSize:  5,
		SinkTimeout: 3 * time.Second,
	}
}

// Engine is an explicit service object with injected dependencies; there is
// deliberately no package-level singleton.
type Engine struct {
	cfg     Config
	cache   *cache.SnapshotCache
	fetcher *fetch.Fetcher
	safety  *safety.Filter
	tracker *stats.Tracker
	metrics *metrics.Registry
	clk     clock.Clock
	sink    Sink

	closeOnce sync.Once
}

func New(cfg Config, c *cache.SnapshotCache, f *fetch.Fetcher, tracker *stats.Tracker, reg *metrics.Registry, clk clock.Clock, sink Sink) *Engine {
	return &Engine{
		cfg:     cfg,
		cache:   c,
		fetcher: f,
		safety:  safety.NewFilter(cfg.Safety),
		tracker: tracker,
		metrics: reg,
		clk:     clk,
		sink:    sink,
	}
}

// GetOpportunities recomputes ranked opportunities from the current
// snapshot. Network flakiness never produces an error here; only invalid
// caller input does.
func (e *Engine) GetOpportunities(ctx context.Context, tier model.AccessTier, filters *model.Filters) (*model.OpportunityReport, error) {
	switch tier {
	case model.TierFree, model.TierPremium:
	default:
		return nil, fmt.Errorf("unknown access tier %q", tier)
	}
	if err := filters.Validate(); err != nil {
		return nil, fmt.Errorf("invalid filters: %w", err)
	}

	snap := e.cache.Get(ctx)
	if snap == nil {
		// Nothing fetched yet and nothing fetchable: a valid empty
		// answer, not an error.
		return &model.OpportunityReport{
			Opportunities: []model.Opportunity{},
			Meta: model.ReportMeta{
				AccessTier:  tier,
				Performance: e.tracker.Performance(),
			},
		}, nil
	}

	found := e.compute(snap, filters)
	arb.Rank(found)
	total := len(found)
	sliced := arb.Slice(found, tier, e.cfg.Rank)

	e.tracker.OpportunitiesFound(total)
	if e.metrics != nil {
		e.metrics.Opportunities.Set(float64(total))
	}

	e.submitSamples(sliced, snap.CapturedAt)

	return &model.OpportunityReport{
		Opportunities: sliced,
		Meta: model.ReportMeta{
			CapturedAt:    snap.CapturedAt,
			ExchangeCount: snap.ExchangeCount,
			SymbolCount:   snap.SymbolCount,
			TotalFound:    total,
			AccessTier:    tier,
			Performance:   e.tracker.Performance(),
		},
	}, nil
}

// compute walks the snapshot's symbols in sorted order, so identical
// snapshots always yield identical opportunity lists.
func (e *Engine) compute(snap *model.Snapshot, filters *model.Filters) []model.Opportunity {
	symbolSet := make(map[string]struct{})
	for _, tickers := range snap.PerExchange {
		for sym := range tickers {
			symbolSet[sym] = struct{}{}
		}
	}
	symbols := make([]string, 0, len(symbolSet))
	for sym := range symbolSet {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	var found []model.Opportunity
	for _, sym := range symbols {
		quotes := snap.Tickers(sym)
		if len(quotes) < 2 {
			e.rejectSymbol("safety")
			continue
		}
		if ok, _ := e.safety.IsEligible(sym, quotes); !ok {
			e.rejectSymbol("safety")
			continue
		}
		opp := arb.Build(sym, quotes, e.cfg.Build)
		if opp == nil {
			e.rejectSymbol("spread")
			continue
		}

		level, score, factors, confidence := arb.ScoreRisk(opp, e.cfg.Risk)
		opp.RiskLevel = level
		opp.RiskScore = score
		opp.RiskFactors = factors
		opp.Confidence = confidence
		opp.Score = arb.CompositeScore(opp)

		if ok, rejection := arb.Passes(opp, filters); !ok {
			switch rejection {
			case arb.RejectRisk:
				e.tracker.RiskFiltered()
			case arb.RejectVolume:
				e.tracker.VolumeFiltered()
			}
			if e.metrics != nil {
				e.metrics.FilteredTotal.WithLabelValues(string(rejection)).Inc()
			}
			continue
		}
		found = append(found, *opp)
	}
	return found
}

// rejectSymbol records a symbol dropped by the eligibility checks or the
// spread builder, before caller filters are even consulted.
func (e *Engine) rejectSymbol(stage string) {
	e.tracker.SafetyFiltered()
	if e.metrics != nil {
		e.metrics.FilteredTotal.WithLabelValues(stage).Inc()
	}
}

// GetSymbolQuotes returns every current quote for one symbol, cheapest
// first, independent of arbitrage eligibility.
func (e *Engine) GetSymbolQuotes(ctx context.Context, symbol string) ([]model.Quote, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol must not be empty")
	}
	canonical := exchange.NormalizeSymbol(symbol, "")

	snap := e.cache.Get(ctx)
	if snap == nil {
		return []model.Quote{}, nil
	}

	quotes := make([]model.Quote, 0, 4)
	for exchangeID, tickers := range snap.PerExchange {
		t, ok := tickers[canonical]
		if !ok || t.Price <= 0 {
			continue
		}
		quotes = append(quotes, model.Quote{
			Exchange:     exchangeID,
			Tier:         exchange.TierOf(exchangeID),
			Price:        t.Price,
			Volume24h:    t.Volume24h,
			ChangePct24h: t.ChangePct24h,
		})
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Price < quotes[j].Price })
	return quotes, nil
}

// Stats returns a read-only copy of the pipeline counters.
func (e *Engine) Stats() model.Stats {
	return e.tracker.Snapshot()
}

// Performance summarizes per-exchange request health.
func (e *Engine) Performance() model.PerfSummary {
	return e.tracker.Performance()
}

// CurrentSnapshot returns the cached snapshot without triggering a refresh.
// Nil until the first successful fetch.
func (e *Engine) CurrentSnapshot() *model.Snapshot {
	return e.cache.Current()
}

// submitSamples hands the top opportunities to the analytics sink on a
// separate goroutine. Fire-and-forget: a slow or failing sink cannot slow a
// query down.
func (e *Engine) submitSamples(opportunities []model.Opportunity, capturedAt time.Time) {
	if e.sink == nil || len(opportunities) == 0 {
		return
	}
	n := e.cfg.SampleSize
	if n > len(opportunities) {
		n = len(opportunities)
	}
	samples := make([]model.OpportunitySample, n)
	for i := 0; i < n; i++ {
		o := opportunities[i]
		samples[i] = model.OpportunitySample{
			Symbol:        o.Symbol,
			ExchangeLow:   o.LowExchange,
			ExchangeHigh:  o.HighExchange,
			PriceLow:      o.LowPrice,
			PriceHigh:     o.HighPrice,
			ProfitPercent: o.ProfitPercent,
			Volume24h:     o.Volume24h,
			Timestamp:     capturedAt,
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.SinkTimeout)
		defer cancel()
		if err := e.sink.InsertBatch(ctx, samples); err != nil {
			log.Warn().Err(err).Int("samples", len(samples)).Msg("analytics sink rejected batch")
		}
	}()
}

// Close stops the background refresher and releases pooled connections.
// Idempotent and safe at process termination.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.cache.Close()
		e.fetcher.Close()
		log.Info().Msg("engine closed")
	})
}
