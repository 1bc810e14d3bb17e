package cache_test

import (
	"context"
	"errors"
	"hostel/infras/otel/mocks"
	"hostel/shared/cache"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roomStatus struct {
	Capacity  int   `json:"capacity"`
	Available []int `json:"available"`
}

func setupCache(t *testing.T) (*miniredis.Miniredis, cache.RedisCache) {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return server, cache.NewRedisCache(client, mocks.NewOtel())
}

func TestRedisCache_SaveAndGet(t *testing.T) {
	server, redisCache := setupCache(t)
	ctx := context.Background()

	require.NoError(t, redisCache.Save(ctx, "booking:room-status:1:3", roomStatus{Capacity: 3, Available: []int{2, 3}}, 60))

	var got roomStatus
	require.NoError(t, redisCache.Get(ctx, "booking:room-status:1:3", &got))
	assert.Equal(t, roomStatus{Capacity: 3, Available: []int{2, 3}}, got)

	server.FastForward(61 * time.Second)

	err := redisCache.Get(ctx, "booking:room-status:1:3", &got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cache.Nil))
}

func TestRedisCache_SaveString(t *testing.T) {
	server, redisCache := setupCache(t)
	ctx := context.Background()

	require.NoError(t, redisCache.Save(ctx, "greeting", "hello", 10))

	raw, err := server.Get("greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", raw)

	var got string
	require.NoError(t, redisCache.Get(ctx, "greeting", &got))
	assert.Equal(t, "hello", got)
}

func TestRedisCache_Incr(t *testing.T) {
	server, redisCache := setupCache(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		count, err := redisCache.Incr(ctx, "limiter:10.0.0.1", 60)
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}

	assert.Equal(t, 60*time.Second, server.TTL("limiter:10.0.0.1"))

	server.FastForward(61 * time.Second)

	count, err := redisCache.Incr(ctx, "limiter:10.0.0.1", 60)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRedisCache_Unavailable(t *testing.T) {
	server, redisCache := setupCache(t)
	server.Close()

	err := redisCache.Save(context.Background(), "k", "v", 10)
	assert.Error(t, err)
}

func TestRedisCache_SaveWithoutTTL(t *testing.T) {
	server, redisCache := setupCache(t)

	require.NoError(t, redisCache.Save(context.Background(), "payment:all", roomStatus{Capacity: 2}, 0))
	assert.False(t, server.Exists("payment:all"))
}

func TestRedisCache_Versions(t *testing.T) {
	server, redisCache := setupCache(t)
	ctx := context.Background()

	version, err := redisCache.Version(ctx, "version:room:1:1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)

	require.NoError(t, redisCache.Bump(ctx, "version:room:1:1"))
	require.NoError(t, redisCache.Bump(ctx, "version:room:1:1"))

	version, err = redisCache.Version(ctx, "version:room:1:1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
	assert.Zero(t, server.TTL("version:room:1:1"))

	require.NoError(t, server.Set("version:broken", "x"))

	_, err = redisCache.Version(ctx, "version:broken")
	assert.Error(t, err)
}

func TestRedisCache_IncrWindowWithExistingCount(t *testing.T) {
	server, redisCache := setupCache(t)
	ctx := context.Background()

	_, err := redisCache.Incr(ctx, "limiter:10.0.0.2", 30)
	require.NoError(t, err)

	server.FastForward(10 * time.Second)

	count, err := redisCache.Incr(ctx, "limiter:10.0.0.2", 30)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, 20*time.Second, server.TTL("limiter:10.0.0.2"))
}
