package salesstats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// Publisher holds the most recent complete snapshot. Readers see either the
// previous snapshot or the new one, never a mix.
type Publisher interface {
	Publish(ctx context.Context, snap *Snapshot) error
	// Latest returns (nil, nil) when nothing has been published yet.
	Latest(ctx context.Context) (*Snapshot, error)
}

// MemoryPublisher keeps the snapshot in process. Callers must not modify a
// snapshot after publishing it or after reading it back.
type MemoryPublisher struct {
	p atomic.Pointer[Snapshot]
}

// NewMemoryPublisher returns an empty MemoryPublisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// Publish swaps in snap.
func (m *MemoryPublisher) Publish(_ context.Context, snap *Snapshot) error {
	m.p.Store(snap)
	return nil
}

// Latest returns the last published snapshot.
func (m *MemoryPublisher) Latest(_ context.Context) (*Snapshot, error) {
	return m.p.Load(), nil
}

// DefaultRedisKey is where RedisPublisher stores the snapshot.
const DefaultRedisKey = "stratashop:salesstats:latest"

// RedisPublisher shares the snapshot between console instances as a single
// JSON value, written with one SET.
type RedisPublisher struct {
	rdb *redis.Client
	key string
}

// NewRedisPublisher stores snapshots under key, or DefaultRedisKey if key is empty.
func NewRedisPublisher(rdb *redis.Client, key string) *RedisPublisher {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisPublisher{rdb: rdb, key: key}
}

// Publish writes snap as JSON.
func (p *RedisPublisher) Publish(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := p.rdb.Set(ctx, p.key, data, 0).Err(); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// Latest reads the stored snapshot.
func (p *RedisPublisher) Latest(ctx context.Context) (*Snapshot, error) {
	data, err := p.rdb.Get(ctx, p.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
