// Package stats tracks pipeline counters and per-exchange health for the
// operational stats endpoint. Counters live for the process lifetime and are
// never reset.
package stats

import (
	"sync"
	"time"

	"github.com/sawpanic/arbscan/internal/model"
)

type exchangeState struct {
	avgLatency  time.Duration
	successRate float64
	requests    int64
	errors      int64
}

// Tracker is safe for concurrent use; all fields are guarded by one mutex,
// the same discipline the snapshot cache uses.
type Tracker struct {
	mu sync.Mutex

	cacheHits          int64
	cacheMisses        int64
	apiRequests        int64
	opportunitiesFound int64
	riskFiltered       int64
	volumeFiltered     int64
	safetyFiltered     int64

	exchanges map[string]*exchangeState
}

func NewTracker() *Tracker {
	return &Tracker{exchanges: make(map[string]*exchangeState)}
}

func (t *Tracker) CacheHit() {
	t.mu.Lock()
	t.cacheHits++
	t.mu.Unlock()
}

func (t *Tracker) CacheMiss() {
	t.mu.Lock()
	t.cacheMisses++
	t.mu.Unlock()
}

func (t *Tracker) OpportunitiesFound(n int) {
	t.mu.Lock()
	t.opportunitiesFound += int64(n)
	t.mu.Unlock()
}

func (t *Tracker) RiskFiltered() {
	t.mu.Lock()
	t.riskFiltered++
	t.mu.Unlock()
}

func (t *Tracker) VolumeFiltered() {
	t.mu.Lock()
	t.volumeFiltered++
	t.mu.Unlock()
}

// SafetyFiltered counts symbols the eligibility checks or the spread
// builder rejected before any caller filter ran.
func (t *Tracker) SafetyFiltered() {
	t.mu.Lock()
	t.safetyFiltered++
	t.mu.Unlock()
}

// RecordRequest folds one exchange fetch into the per-venue averages.
// Success rate is an EWMA so a venue recovers visibility quickly after an
// outage; latency uses the same simple running average the health stats of
// the REST adapters use.
func (t *Tracker) RecordRequest(exchange string, latency time.Duration, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.apiRequests++

	st, exists := t.exchanges[exchange]
	if !exists {
		st = &exchangeState{successRate: 0.95}
		t.exchanges[exchange] = st
	}
	st.requests++
	if ok {
		st.successRate = st.successRate*0.9 + 0.1
	} else {
		st.successRate = st.successRate * 0.9
		st.errors++
	}
	if st.avgLatency == 0 {
		st.avgLatency = latency
	} else {
		st.avgLatency = (st.avgLatency + latency) / 2
	}
}

// Snapshot returns a copy of all counters.
func (t *Tracker) Snapshot() model.Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := model.Stats{
		CacheHits:          t.cacheHits,
		CacheMisses:        t.cacheMisses,
		APIRequests:        t.apiRequests,
		OpportunitiesFound: t.opportunitiesFound,
		RiskFiltered:       t.riskFiltered,
		VolumeFiltered:     t.volumeFiltered,
		SafetyFiltered:     t.safetyFiltered,
		Exchanges:          make(map[string]model.ExchangeStats, len(t.exchanges)),
	}
	for id, st := range t.exchanges {
		out.Exchanges[id] = model.ExchangeStats{
			AvgLatency:  st.avgLatency,
			SuccessRate: st.successRate,
			Requests:    st.requests,
			Errors:      st.errors,
		}
	}
	return out
}

// Performance condenses the per-exchange state into report metadata.
func (t *Tracker) Performance() model.PerfSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	var latencySum time.Duration
	var rateSum float64
	for _, st := range t.exchanges {
		latencySum += st.avgLatency
		rateSum += st.successRate
	}
	summary := model.PerfSummary{
		ActiveExchanges: len(t.exchanges),
		TotalRequests:   t.apiRequests,
	}
	if n := len(t.exchanges); n > 0 {
		summary.AvgResponseMS = float64(latencySum.Milliseconds()) / float64(n)
		summary.SuccessRate = rateSum / float64(n) * 100
	}
	return summary
}
