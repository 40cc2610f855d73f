package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/arbscan/internal/model"
)

func TestTracker_Counters(t *testing.T) {
	tr := NewTracker()

	tr.CacheHit()
	tr.CacheHit()
	tr.CacheMiss()
	tr.OpportunitiesFound(7)
	tr.RiskFiltered()
	tr.VolumeFiltered()
	tr.VolumeFiltered()
	tr.SafetyFiltered()
	tr.SafetyFiltered()
	tr.SafetyFiltered()

	s := tr.Snapshot()
	assert.Equal(t, int64(2), s.CacheHits)
	assert.Equal(t, int64(1), s.CacheMisses)
	assert.Equal(t, int64(7), s.OpportunitiesFound)
	assert.Equal(t, int64(1), s.RiskFiltered)
	assert.Equal(t, int64(2), s.VolumeFiltered)
	assert.Equal(t, int64(3), s.SafetyFiltered)
}

func TestTracker_RecordRequest(t *testing.T) {
	tr := NewTracker()

	tr.RecordRequest("binance", 100*time.Millisecond, true)
	s := tr.Snapshot()
	require.Contains(t, s.Exchanges, "binance")
	assert.Equal(t, int64(1), s.APIRequests)
	assert.Equal(t, 100*time.Millisecond, s.Exchanges["binance"].AvgLatency)
	assert.InDelta(t, 0.955, s.Exchanges["binance"].SuccessRate, 1e-9, "EWMA from the 0.95 prior")

	tr.RecordRequest("binance", 300*time.Millisecond, false)
	s = tr.Snapshot()
	assert.Equal(t, 200*time.Millisecond, s.Exchanges["binance"].AvgLatency)
	assert.InDelta(t, 0.8595, s.Exchanges["binance"].SuccessRate, 1e-9)
	assert.Equal(t, int64(1), s.Exchanges["binance"].Errors)
	assert.Equal(t, int64(2), s.Exchanges["binance"].Requests)
}

func TestTracker_Performance(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, 0, tr.Performance().ActiveExchanges)

	tr.RecordRequest("binance", 100*time.Millisecond, true)
	tr.RecordRequest("kraken", 300*time.Millisecond, true)

	p := tr.Performance()
	assert.Equal(t, 2, p.ActiveExchanges)
	assert.Equal(t, int64(2), p.TotalRequests)
	assert.InDelta(t, 200.0, p.AvgResponseMS, 1e-9)
	assert.InDelta(t, 95.5, p.SuccessRate, 1e-9)
}

func TestTracker_SnapshotIsACopy(t *testing.T) {
	tr := NewTracker()
	tr.RecordRequest("binance", time.Millisecond, true)

	s := tr.Snapshot()
	s.Exchanges["binance"] = model.ExchangeStats{Requests: 99}

	assert.Equal(t, int64(1), tr.Snapshot().Exchanges["binance"].Requests)
}
