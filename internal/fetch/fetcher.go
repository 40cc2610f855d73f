// Package fetch polls every configured exchange's ticker endpoint
// concurrently and assembles the results into one immutable snapshot.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/sawpanic/arbscan/internal/clock"
	"github.com/sawpanic/arbscan/internal/exchange"
	"github.com/sawpanic/arbscan/internal/metrics"
	"github.com/sawpanic/arbscan/internal/model"
	"github.com/sawpanic/arbscan/internal/stats"
)

// Config tunes fetch concurrency and politeness toward exchange APIs.
type Config struct {
	MaxConcurrency int           // global in-flight request bound
	RequestTimeout time.Duration // total per-request budget
	DialTimeout    time.Duration
	UserAgent      string
	HostRPS        float64 // token-bucket rate per host
	HostBurst      int
	ParseMinVolume float64 // per-record quote-volume floor at parse time
}

// DefaultConfig mirrors the polite-crawling limits the exchange APIs expect.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 10,
		RequestTimeout: 10 * time.Second,
		DialTimeout:    5 * time.Second,
		UserAgent:      "arbscan/1.0 (+https://github.com/sawpanic/arbscan)",
		HostRPS:        2,
		HostBurst:      4,
		ParseMinVolume: 10_000,
	}
}

// Fetcher issues bounded-concurrency ticker fetches. A failing venue yields
// an empty ticker map, never an aggregate error.
type Fetcher struct {
	cfg       Config
	endpoints []exchange.Endpoint
	client    *http.Client
	sem       chan struct{}
	breakers  map[string]*gobreaker.CircuitBreaker
	tracker   *stats.Tracker
	metrics   *metrics.Registry
	clock     clock.Clock

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func New(endpoints []exchange.Endpoint, cfg Config, tracker *stats.Tracker, reg *metrics.Registry, clk clock.Clock) *Fetcher {
	f := &Fetcher{
		cfg:       cfg,
		endpoints: endpoints,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: cfg.DialTimeout}).DialContext,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		sem:      make(chan struct{}, cfg.MaxConcurrency),
		breakers: make(map[string]*gobreaker.CircuitBreaker, len(endpoints)),
		limiters: make(map[string]*rate.Limiter),
		tracker:  tracker,
		metrics:  reg,
		clock:    clk,
	}
	for _, ep := range endpoints {
		f.breakers[ep.ID] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     ep.ID,
			Interval: 60 * time.Second,
			Timeout:  60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		})
	}
	return f
}

// FetchAll polls every endpoint concurrently and returns once each has
// either produced data or exhausted its timeout. Slow venues never block
// fast ones; each runs as its own goroutine under the shared semaphore.
func (f *Fetcher) FetchAll(ctx context.Context) *model.Snapshot {
	results := make([]map[string]model.Ticker, len(f.endpoints))

	var wg sync.WaitGroup
	for i, ep := range f.endpoints {
		wg.Add(1)
		go func(i int, ep exchange.Endpoint) {
			defer wg.Done()
			results[i] = f.fetchOne(ctx, ep)
		}(i, ep)
	}
	wg.Wait()

	snap := &model.Snapshot{
		PerExchange: make(map[string]map[string]model.Ticker, len(f.endpoints)),
		CapturedAt:  f.clock.Now(),
	}
	symbols := make(map[string]struct{})
	for i, ep := range f.endpoints {
		tickers := results[i]
		if tickers == nil {
			tickers = map[string]model.Ticker{}
		}
		snap.PerExchange[ep.ID] = tickers
		if len(tickers) > 0 {
			snap.ExchangeCount++
		}
		for sym := range tickers {
			symbols[sym] = struct{}{}
		}
	}
	snap.SymbolCount = len(symbols)

	log.Debug().
		Int("exchanges_reporting", snap.ExchangeCount).
		Int("symbols", snap.SymbolCount).
		Msg("snapshot assembled")

	return snap
}

// fetchOne runs one guarded GET and parses the payload. Every failure mode
// (timeout, non-200, open breaker, undecodable body) maps to nil.
func (f *Fetcher) fetchOne(ctx context.Context, ep exchange.Endpoint) map[string]model.Ticker {
	select {
	case f.sem <- struct{}{}:
		defer func() { <-f.sem }()
	case <-ctx.Done():
		return nil
	}

	if err := f.hostLimiter(ep.URL).Wait(ctx); err != nil {
		return nil
	}

	start := time.Now()
	raw, err := f.breakers[ep.ID].Execute(func() (interface{}, error) {
		return f.get(ctx, ep.URL)
	})
	latency := time.Since(start)

	f.tracker.RecordRequest(ep.ID, latency, err == nil)
	if f.metrics != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		f.metrics.FetchDuration.WithLabelValues(ep.ID, result).Observe(latency.Seconds())
	}

	if err != nil {
		log.Warn().Err(err).Str("exchange", ep.ID).Dur("latency", latency).Msg("exchange fetch failed")
		return nil
	}

	tickers := exchange.Parse(ep.ID, raw.([]byte), exchange.ParseOptions{
		MinVolume: f.cfg.ParseMinVolume,
		At:        f.clock.Now(),
	})
	if len(tickers) == 0 {
		log.Warn().Str("exchange", ep.ID).Msg("no parseable tickers in payload")
		return nil
	}

	out := make(map[string]model.Ticker, len(tickers))
	for _, t := range tickers {
		out[t.Symbol] = t
	}
	log.Debug().Str("exchange", ep.ID).Int("symbols", len(out)).Dur("latency", latency).Msg("tickers fetched")
	return out
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// hostLimiter returns the token bucket for a URL's host, creating it on
// first use.
func (f *Fetcher) hostLimiter(rawURL string) *rate.Limiter {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if lim, ok := f.limiters[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Limit(f.cfg.HostRPS), f.cfg.HostBurst)
	f.limiters[host] = lim
	return lim
}

// Close releases pooled connections. Safe to call more than once.
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}
