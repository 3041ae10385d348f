package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohammedBenaboud/Alphaseeker/src/domain"
)

func sampleBatch() []domain.AssetSnapshot {
	return []domain.AssetSnapshot{
		{ID: "a1", Symbol: "ALPHA", Price: 1.5, Liquidity: 120000},
		{ID: "b2", Symbol: "BETA", Price: 0.02, Liquidity: 60000},
	}
}

func TestInMemorySnapshotCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemorySnapshotCache()

	_, _, ok := cache.GetBatch(ctx, "latest")
	assert.False(t, ok, "empty cache misses")

	require.NoError(t, cache.SetBatch(ctx, "latest", sampleBatch(), "test", time.Minute))

	got, fetchedAt, ok := cache.GetBatch(ctx, "latest")
	require.True(t, ok)
	assert.Equal(t, sampleBatch(), got)
	assert.WithinDuration(t, time.Now(), fetchedAt, 5*time.Second)
}

func TestInMemorySnapshotCache_Expiry(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemorySnapshotCache()

	require.NoError(t, cache.SetBatch(ctx, "latest", sampleBatch(), "test", -time.Second))
	_, _, ok := cache.GetBatch(ctx, "latest")
	assert.False(t, ok, "expired entries miss")
}

func TestInMemorySnapshotCache_CopyIsolation(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemorySnapshotCache()

	batch := sampleBatch()
	require.NoError(t, cache.SetBatch(ctx, "latest", batch, "test", time.Minute))
	batch[0].Symbol = "MUTATED"

	got, _, ok := cache.GetBatch(ctx, "latest")
	require.True(t, ok)
	assert.Equal(t, "ALPHA", got[0].Symbol, "cache must not alias caller slices")
}

func TestInMemorySnapshotCache_Stats(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemorySnapshotCache()

	cache.GetBatch(ctx, "latest")
	require.NoError(t, cache.SetBatch(ctx, "latest", sampleBatch(), "test", time.Minute))
	cache.GetBatch(ctx, "latest")

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.TotalHits)
	assert.Equal(t, int64(1), stats.TotalMisses)
	assert.Equal(t, int64(1), stats.TotalSets)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
	assert.True(t, cache.Health(ctx))
}
