// Package data provides the snapshot cache that decouples the scan
// loop from upstream market data availability.
package data

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MohammedBenaboud/Alphaseeker/src/domain"
)

// batchEnvelope is the stored form of one snapshot batch. FetchedAt
// lets readers judge staleness independently of the cache TTL.
type batchEnvelope struct {
	Snapshots []domain.AssetSnapshot `json:"snapshots"`
	Source    string                 `json:"source"`
	FetchedAt time.Time              `json:"fetched_at"`
}

// SnapshotCache stores the most recent asset batch per key. A miss is
// not an error; callers fall back to their last in-process batch.
type SnapshotCache interface {
	GetBatch(ctx context.Context, key string) ([]domain.AssetSnapshot, time.Time, bool)
	SetBatch(ctx context.Context, key string, snaps []domain.AssetSnapshot, source string, ttl time.Duration) error
	Stats() CacheStats
	Health(ctx context.Context) bool
	Close() error
}

// CacheStats provides cache performance counters.
type CacheStats struct {
	HitRate     float64   `json:"hit_rate"`
	TotalHits   int64     `json:"total_hits"`
	TotalMisses int64     `json:"total_misses"`
	TotalSets   int64     `json:"total_sets"`
	ErrorCount  int64     `json:"error_count"`
	LastError   string    `json:"last_error,omitempty"`
	Connected   bool      `json:"connected"`
	LastPing    time.Time `json:"last_ping"`
}

// RedisSnapshotCache implements SnapshotCache on Redis.
type RedisSnapshotCache struct {
	client    *redis.Client
	keyPrefix string
	stats     CacheStats
}

// NewRedisSnapshotCache connects a cache to the given Redis instance.
func NewRedisSnapshotCache(addr, password string, db int) *RedisSnapshotCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		PoolSize:     10,
		MinIdleConns: 2,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		MaxRetries:      3,
		MinRetryBackoff: 100 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})

	return &RedisSnapshotCache{
		client:    client,
		keyPrefix: "alphaseeker:snapshots:",
		stats:     CacheStats{Connected: true},
	}
}

// GetBatch returns the cached batch and when it was fetched upstream.
func (r *RedisSnapshotCache) GetBatch(ctx context.Context, key string) ([]domain.AssetSnapshot, time.Time, bool) {
	raw, err := r.client.Get(ctx, r.keyPrefix+key).Result()
	if err != nil {
		if err == redis.Nil {
			r.stats.TotalMisses++
			return nil, time.Time{}, false
		}
		r.stats.ErrorCount++
		r.stats.LastError = fmt.Sprintf("get: %v", err)
		r.stats.Connected = false
		return nil, time.Time{}, false
	}

	var env batchEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		r.stats.ErrorCount++
		r.stats.LastError = fmt.Sprintf("decode: %v", err)
		return nil, time.Time{}, false
	}

	r.stats.TotalHits++
	r.updateHitRate()
	return env.Snapshots, env.FetchedAt, true
}

// SetBatch stores a batch under key with the given TTL.
func (r *RedisSnapshotCache) SetBatch(ctx context.Context, key string, snaps []domain.AssetSnapshot, source string, ttl time.Duration) error {
	env := batchEnvelope{
		Snapshots: snaps,
		Source:    source,
		FetchedAt: time.Now(),
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode snapshot batch: %w", err)
	}

	if err := r.client.Set(ctx, r.keyPrefix+key, data, ttl).Err(); err != nil {
		r.stats.ErrorCount++
		r.stats.LastError = fmt.Sprintf("set: %v", err)
		r.stats.Connected = false
		return fmt.Errorf("store snapshot batch: %w", err)
	}

	r.stats.TotalSets++
	r.stats.Connected = true
	return nil
}

func (r *RedisSnapshotCache) Stats() CacheStats {
	r.updateHitRate()
	return r.stats
}

func (r *RedisSnapshotCache) Health(ctx context.Context) bool {
	pong, err := r.client.Ping(ctx).Result()
	if err != nil || pong != "PONG" {
		r.stats.Connected = false
		r.stats.ErrorCount++
		r.stats.LastError = fmt.Sprintf("ping: %v", err)
		return false
	}
	r.stats.Connected = true
	r.stats.LastPing = time.Now()
	return true
}

func (r *RedisSnapshotCache) Close() error {
	return r.client.Close()
}

func (r *RedisSnapshotCache) updateHitRate() {
	total := r.stats.TotalHits + r.stats.TotalMisses
	if total > 0 {
		r.stats.HitRate = float64(r.stats.TotalHits) / float64(total)
	}
}

// InMemorySnapshotCache is the Redis-free fallback, also used in
// tests. Not safe for concurrent use; the host loop is the sole caller.
type InMemorySnapshotCache struct {
	data  map[string]memoryEntry
	stats CacheStats
}

type memoryEntry struct {
	env       batchEnvelope
	expiresAt time.Time
}

// NewInMemorySnapshotCache creates an empty in-memory cache.
func NewInMemorySnapshotCache() *InMemorySnapshotCache {
	return &InMemorySnapshotCache{
		data:  make(map[string]memoryEntry),
		stats: CacheStats{Connected: true, LastPing: time.Now()},
	}
}

func (m *InMemorySnapshotCache) GetBatch(_ context.Context, key string) ([]domain.AssetSnapshot, time.Time, bool) {
	entry, ok := m.data[key]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(m.data, key)
		m.stats.TotalMisses++
		m.updateHitRate()
		return nil, time.Time{}, false
	}
	m.stats.TotalHits++
	m.updateHitRate()
	return entry.env.Snapshots, entry.env.FetchedAt, true
}

func (m *InMemorySnapshotCache) SetBatch(_ context.Context, key string, snaps []domain.AssetSnapshot, source string, ttl time.Duration) error {
	m.data[key] = memoryEntry{
		env: batchEnvelope{
			Snapshots: append([]domain.AssetSnapshot(nil), snaps...),
			Source:    source,
			FetchedAt: time.Now(),
		},
		expiresAt: time.Now().Add(ttl),
	}
	m.stats.TotalSets++
	return nil
}

func (m *InMemorySnapshotCache) Stats() CacheStats {
	m.updateHitRate()
	return m.stats
}

func (m *InMemorySnapshotCache) Health(context.Context) bool {
	m.stats.LastPing = time.Now()
	return true
}

func (m *InMemorySnapshotCache) Close() error {
	return nil
}

func (m *InMemorySnapshotCache) updateHitRate() {
	total := m.stats.TotalHits + m.stats.TotalMisses
	if total > 0 {
		m.stats.HitRate = float64(m.stats.TotalHits) / float64(total)
	}
}
