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

func newRedisLimiter(t *testing.T, opts Options) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisLimiter(client, opts), mr
}

func TestRedisLimiter_AllowIP(t *testing.T) {
	l, mr := newRedisLimiter(t, Options{Limit: 2, Window: time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.AllowIP(ctx, "10.0.0.1", "login")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := l.AllowIP(ctx, "10.0.0.1", "login")
	require.NoError(t, err)
	assert.False(t, ok)

	// other purposes and addresses have their own counters
	ok, err = l.AllowIP(ctx, "10.0.0.1", "register")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = l.AllowIP(ctx, "10.0.0.2", "login")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(time.Minute + time.Second)

	ok, err = l.AllowIP(ctx, "10.0.0.1", "login")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiter_EmailCooldown(t *testing.T) {
	l, mr := newRedisLimiter(t, Options{EmailCooldown: 2 * time.Minute})
	ctx := context.Background()

	ok, err := l.AcquireEmailCooldown(ctx, "Alice@Example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.AcquireEmailCooldown(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(2*time.Minute + time.Second)

	ok, err = l.AcquireEmailCooldown(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiter_ServerDown(t *testing.T) {
	l, mr := newRedisLimiter(t, Options{})
	mr.Close()

	_, err := l.AllowIP(context.Background(), "10.0.0.1", "login")
	assert.Error(t, err)
}
