package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return s, client
}

func TestRedisLimiter(t *testing.T) {
	s, client := newRedis(t)
	ctx := context.Background()
	require.NoError(t, Ping(ctx, client))

	limiter := NewRedisLimiter(client, 3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "user:42")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i+1)
	}

	ok, err := limiter.Allow(ctx, "user:42")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = limiter.Allow(ctx, "user:7")
	require.NoError(t, err)
	assert.True(t, ok, "keys are independent")

	assert.Equal(t, time.Minute, s.TTL("rate_limit:user:42"))

	s.FastForward(time.Minute + time.Second)
	ok, err = limiter.Allow(ctx, "user:42")
	require.NoError(t, err)
	assert.True(t, ok, "window expired")
}

func TestRedisLimiter_Errors(t *testing.T) {
	_, err := NewRedisLimiter(nil, 1, time.Minute).Allow(context.Background(), "k")
	assert.Error(t, err)

	s, client := newRedis(t)
	s.Close()
	_, err = NewRedisLimiter(client, 1, time.Minute).Allow(context.Background(), "k")
	assert.Error(t, err)
}

func TestMemoryLimiter(t *testing.T) {
	limiter := NewMemoryLimiter(0.001, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "user:1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := limiter.Allow(ctx, "user:1")
	assert.False(t, ok)

	ok, _ = limiter.Allow(ctx, "user:2")
	assert.True(t, ok)

	assert.Same(t, limiter.getLimiter("user:1"), limiter.getLimiter("user:1"))
}
