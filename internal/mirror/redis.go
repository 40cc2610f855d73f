// Package mirror publishes the latest snapshot to Redis so dashboards and
// sibling processes can read it without hitting the exchange APIs. The
// mirror is strictly best-effort: publish failures are logged and dropped.
package mirror

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/arbscan/internal/model"
)

// Cmdable is the slice of the Redis client the mirror needs; tests provide
// a fake.
type Cmdable interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Mirror writes snapshot generations to one Redis key with a TTL.
type Mirror struct {
	client  Cmdable
	key     string
	ttl     time.Duration
	timeout time.Duration
	closer  func() error
}

// New builds a mirror backed by a real Redis client.
func New(addr, key string, ttl time.Duration) *Mirror {
	client := redis.NewClient(&redis.Options{Addr: addr})
	m := NewWithClient(client, key, ttl)
	m.closer = client.Close
	return m
}

// NewWithClient builds a mirror on any Cmdable, used by tests.
func NewWithClient(client Cmdable, key string, ttl time.Duration) *Mirror {
	return &Mirror{
		client:  client,
		key:     key,
		ttl:     ttl,
		timeout: 2 * time.Second,
	}
}

// Publish writes one snapshot generation. Errors are logged, never returned;
// the caller must not depend on the mirror succeeding.
func (m *Mirror) Publish(snap *model.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot mirror: marshal failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if err := m.client.Set(ctx, m.key, payload, m.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", m.key).Msg("snapshot mirror: publish failed")
		return
	}
	log.Debug().Str("key", m.key).Int("bytes", len(payload)).Msg("snapshot mirrored")
}

// Close releases the underlying client, when the mirror owns one.
func (m *Mirror) Close() error {
	if m.closer != nil {
		return m.closer()
	}
	return nil
}
