package querycache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/septivank/earthquake-catalog/internal/earthquake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Cache) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, New(NewRedisKV(client), "earthquakes:query", time.Minute, zap.NewNop())
}

func sampleResult() earthquake.PagedResult {
	date := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	return earthquake.PagedResult{
		Data: []earthquake.Record{{
			ID:        "0b7c1f4e-5d8a-4a57-9d8e-2f3a1c6b7e90",
			Location:  "34.052,-118.244",
			Magnitude: 4.2,
			Date:      date,
			CreatedAt: date,
			UpdatedAt: date,
		}},
		Count:   11,
		HasMore: true,
	}
}

func TestCache_PutThenGet(t *testing.T) {
	_, cache := setupTestRedis(t)
	ctx := context.Background()

	_, gen, ok := cache.Get(ctx, "page=2")
	require.False(t, ok)
	assert.Equal(t, "0", gen)

	cache.Put(ctx, gen, "page=2", sampleResult())
	got, _, ok := cache.Get(ctx, "page=2")

	require.True(t, ok)
	assert.Equal(t, sampleResult(), got)
}

func TestCache_Miss(t *testing.T) {
	_, cache := setupTestRedis(t)

	_, _, ok := cache.Get(context.Background(), "limit=5")

	assert.False(t, ok)
}

func TestCache_EmptyWindowKeepsNonNilData(t *testing.T) {
	_, cache := setupTestRedis(t)
	ctx := context.Background()

	cache.Put(ctx, "0", "location=atlantis", earthquake.PagedResult{Data: []earthquake.Record{}})
	got, _, ok := cache.Get(ctx, "location=atlantis")

	require.True(t, ok)
	assert.NotNil(t, got.Data)
	assert.Empty(t, got.Data)
}

func TestCache_InvalidateDropsEveryWindow(t *testing.T) {
	mr, cache := setupTestRedis(t)
	ctx := context.Background()

	cache.Put(ctx, "0", "", sampleResult())
	cache.Put(ctx, "0", "page=2", sampleResult())
	require.NoError(t, cache.Invalidate(ctx))

	_, _, ok := cache.Get(ctx, "")
	assert.False(t, ok)
	_, gen, ok := cache.Get(ctx, "page=2")
	assert.False(t, ok)
	assert.Equal(t, "1", gen)

	stored, err := mr.Get("earthquakes:query:generation")
	require.NoError(t, err)
	assert.Equal(t, "1", stored)

	cache.Put(ctx, gen, "", sampleResult())
	assert.True(t, mr.Exists("earthquakes:query:1:"))
}

func TestCache_WindowReadBeforeInvalidateIsNotServed(t *testing.T) {
	_, cache := setupTestRedis(t)
	ctx := context.Background()

	_, gen, ok := cache.Get(ctx, "page=1")
	require.False(t, ok)

	// a mutation lands while the window is being read from the store
	require.NoError(t, cache.Invalidate(ctx))
	cache.Put(ctx, gen, "page=1", sampleResult())

	_, _, ok = cache.Get(ctx, "page=1")
	assert.False(t, ok)
}

func TestCache_EntriesExpire(t *testing.T) {
	mr, cache := setupTestRedis(t)
	ctx := context.Background()

	cache.Put(ctx, "0", "page=3", sampleResult())
	mr.FastForward(2 * time.Minute)

	_, _, ok := cache.Get(ctx, "page=3")
	assert.False(t, ok)
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	mr, cache := setupTestRedis(t)
	require.NoError(t, mr.Set("earthquakes:query:0:page=4", "{not json"))

	_, gen, ok := cache.Get(context.Background(), "page=4")

	assert.False(t, ok)
	assert.Equal(t, "0", gen)
}

func TestCache_RedisDownDegradesToMiss(t *testing.T) {
	mr, cache := setupTestRedis(t)
	ctx := context.Background()
	cache.Put(ctx, "0", "", sampleResult())

	mr.Close()

	_, gen, ok := cache.Get(ctx, "")
	assert.False(t, ok)
	assert.Empty(t, gen)
	cache.Put(ctx, gen, "", sampleResult())
	assert.Error(t, cache.Invalidate(ctx))
}
