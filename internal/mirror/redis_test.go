package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/arbscan/internal/model"
)

type fakeRedis struct {
	key   string
	value []byte
	ttl   time.Duration
	calls int
	err   error
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.calls++
	f.key = key
	f.value, _ = value.([]byte)
	f.ttl = expiration

	cmd := redis.NewStatusCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	}
	return cmd
}

func testSnapshot() *model.Snapshot {
	return &model.Snapshot{
		PerExchange: map[string]map[string]model.Ticker{
			"binance": {"BTCUSDT": {Exchange: "binance", Symbol: "BTCUSDT", Price: 30_000, Volume24h: 5e6}},
		},
		CapturedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		ExchangeCount: 1,
		SymbolCount:   1,
	}
}

func TestPublish_WritesSnapshotWithTTL(t *testing.T) {
	fake := &fakeRedis{}
	m := NewWithClient(fake, "arbscan:snapshot", time.Minute)

	snap := testSnapshot()
	m.Publish(snap)

	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, "arbscan:snapshot", fake.key)
	assert.Equal(t, time.Minute, fake.ttl)

	var decoded model.Snapshot
	require.NoError(t, json.Unmarshal(fake.value, &decoded))
	assert.Equal(t, snap.ExchangeCount, decoded.ExchangeCount)
	assert.Equal(t, 30_000.0, decoded.PerExchange["binance"]["BTCUSDT"].Price)
}

func TestPublish_SwallowsRedisErrors(t *testing.T) {
	fake := &fakeRedis{err: errors.New("connection refused")}
	m := NewWithClient(fake, "arbscan:snapshot", time.Minute)

	// Must not panic or propagate; best-effort only.
	m.Publish(testSnapshot())
	assert.Equal(t, 1, fake.calls)
}

func TestClose_WithoutOwnedClient(t *testing.T) {
	m := NewWithClient(&fakeRedis{}, "k", time.Minute)
	assert.NoError(t, m.Close())
}
