// Package cache owns the aggregated snapshot and coordinates its refresh.
//
// At most one outbound refresh runs at any instant (single-flight). Callers
// arriving during a refresh are served the last available snapshot, possibly
// stale, and never block; only the background refresher waits on an
// in-flight refresh.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/arbscan/internal/clock"
	"github.com/sawpanic/arbscan/internal/metrics"
	"github.com/sawpanic/arbscan/internal/model"
	"github.com/sawpanic/arbscan/internal/stats"
)

// FetchFunc produces a fresh snapshot. It never fails; a total outage shows
// up as a snapshot with ExchangeCount == 0.
type FetchFunc func(ctx context.Context) *model.Snapshot

// Config tunes freshness and refresh-storm protection.
type Config struct {
	TTL         time.Duration // snapshot age below which no fetch happens
	MinInterval time.Duration // minimum gap between refresh attempts
}

func DefaultConfig() Config {
	return Config{TTL: 30 * time.Second, MinInterval: 15 * time.Second}
}

// SnapshotCache holds the most recent snapshot generation. The snapshot
// reference, its timestamp and the in-flight flag share one mutex so a
// reader can never observe a half-replaced generation.
type SnapshotCache struct {
	mu          sync.RWMutex
	snap        *model.Snapshot
	lastAttempt time.Time
	refreshing  bool

	fetch     FetchFunc
	clk       clock.Clock
	cfg       Config
	tracker   *stats.Tracker
	metrics   *metrics.Registry
	onRefresh func(*model.Snapshot)

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func New(fetch FetchFunc, cfg Config, clk clock.Clock, tracker *stats.Tracker, reg *metrics.Registry) *SnapshotCache {
	return &SnapshotCache{
		fetch:   fetch,
		clk:     clk,
		cfg:     cfg,
		tracker: tracker,
		metrics: reg,
		stop:    make(chan struct{}),
	}
}

// OnRefresh installs a hook invoked with every successfully fetched
// snapshot, after it has been published. Used for the Redis mirror.
// Must be set before any Get or StartBackground call.
func (c *SnapshotCache) OnRefresh(fn func(*model.Snapshot)) {
	c.onRefresh = fn
}

// Get returns the current snapshot, refreshing it when stale.
//
//   - Fresh (age < TTL): served directly.
//   - Refresh in flight: last available snapshot served without blocking;
//     nil when nothing has ever been fetched.
//   - Stale but a refresh ran less than MinInterval ago: stale snapshot
//     served, no new fetch.
//   - Otherwise the caller becomes the refresher and waits for its own
//     fetch only.
func (c *SnapshotCache) Get(ctx context.Context) *model.Snapshot {
	now := c.clk.Now()

	c.mu.RLock()
	snap := c.snap
	refreshing := c.refreshing
	lastAttempt := c.lastAttempt
	c.mu.RUnlock()

	if isFresh(snap, now, c.cfg.TTL) {
		c.recordHit()
		return snap
	}
	if refreshing {
		if snap != nil {
			c.recordHit()
		} else {
			c.recordMiss()
		}
		return snap
	}
	if snap != nil && now.Sub(lastAttempt) < c.cfg.MinInterval {
		// Refresh-storm guard: stale is acceptable for MinInterval.
		c.recordHit()
		return snap
	}

	return c.refresh(ctx, now)
}

// Current returns whatever snapshot is held, without triggering a refresh.
func (c *SnapshotCache) Current() *model.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// refresh performs the single-flight fetch. Exactly one caller wins the
// in-flight flag; losers fall back to the non-blocking stale path.
func (c *SnapshotCache) refresh(ctx context.Context, now time.Time) *model.Snapshot {
	c.mu.Lock()
	if c.refreshing || isFresh(c.snap, now, c.cfg.TTL) {
		snap := c.snap
		c.mu.Unlock()
		if snap != nil {
			c.recordHit()
		} else {
			c.recordMiss()
		}
		return snap
	}
	c.refreshing = true
	c.lastAttempt = now
	c.mu.Unlock()

	c.recordMiss()
	fresh := c.fetch(ctx)
	ok := fresh != nil && fresh.ExchangeCount > 0

	c.mu.Lock()
	c.refreshing = false
	if ok {
		c.snap = fresh
	} else {
		// Keep the previous generation and clear the attempt stamp so
		// the next request re-attempts instead of freezing on empty
		// data for MinInterval.
		c.lastAttempt = time.Time{}
	}
	cur := c.snap
	c.mu.Unlock()

	if c.metrics != nil {
		result := "ok"
		if !ok {
			result = "failed"
		}
		c.metrics.RefreshTotal.WithLabelValues(result).Inc()
	}
	if ok {
		log.Info().
			Int("exchanges", fresh.ExchangeCount).
			Int("symbols", fresh.SymbolCount).
			Msg("snapshot refreshed")
		if c.onRefresh != nil {
			c.onRefresh(fresh)
		}
	} else {
		log.Warn().Msg("snapshot refresh produced no data, keeping previous generation")
	}
	return cur
}

// StartBackground launches the maintenance refresher: every interval it
// refreshes the snapshot when older than maxAge, so interactive requests
// usually hit a warm cache. Individual failures back off exponentially but
// never terminate the loop.
func (c *SnapshotCache) StartBackground(interval, maxAge time.Duration) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		failures := 0
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
			}

			// Unlike interactive callers, the maintenance task waits
			// out an in-flight refresh before deciding.
			if !c.awaitIdle() {
				return
			}

			now := c.clk.Now()
			c.mu.RLock()
			snap := c.snap
			c.mu.RUnlock()
			if snap != nil && now.Sub(snap.CapturedAt) < maxAge {
				continue
			}

			cur := c.refresh(context.Background(), now)
			if cur == nil || now.Sub(cur.CapturedAt) >= maxAge {
				failures++
				backoff := backoffFor(failures, interval)
				log.Warn().Int("failures", failures).Dur("backoff", backoff).
					Msg("background refresh failed, backing off")
				select {
				case <-c.stop:
					return
				case <-time.After(backoff):
				}
			} else {
				failures = 0
			}
		}
	}()
}

// awaitIdle polls until no refresh is in flight. Returns false on shutdown.
func (c *SnapshotCache) awaitIdle() bool {
	for {
		c.mu.RLock()
		refreshing := c.refreshing
		c.mu.RUnlock()
		if !refreshing {
			return true
		}
		select {
		case <-c.stop:
			return false
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// Close stops the background refresher. Idempotent.
func (c *SnapshotCache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
	c.wg.Wait()
}

func (c *SnapshotCache) recordHit() {
	c.tracker.CacheHit()
	if c.metrics != nil {
		c.metrics.CacheHits.Inc()
	}
}

func (c *SnapshotCache) recordMiss() {
	c.tracker.CacheMiss()
	if c.metrics != nil {
		c.metrics.CacheMisses.Inc()
	}
}

func isFresh(snap *model.Snapshot, now time.Time, ttl time.Duration) bool {
	return snap != nil && now.Sub(snap.CapturedAt) < ttl
}

func backoffFor(failures int, base time.Duration) time.Duration {
	backoff := base
	for i := 1; i < failures && backoff < 5*time.Minute; i++ {
		backoff *= 2
	}
	if backoff > 5*time.Minute {
		backoff = 5 * time.Minute
	}
	return backoff
}
