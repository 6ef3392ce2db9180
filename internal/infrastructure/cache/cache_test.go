package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Guard(t *testing.T) {
	ms := NewMemoryStore()
	t.Cleanup(func() { _ = ms.Close() })
	ctx := context.Background()

	ok, err := ms.Acquire(ctx, "notes:run_1:0", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ms.Acquire(ctx, "notes:run_1:0", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, ms.Release(ctx, "notes:run_1:0"))
	ok, err = ms.Acquire(ctx, "notes:run_1:0", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStore_GuardExpired(t *testing.T) {
	ms := NewMemoryStore()
	t.Cleanup(func() { _ = ms.Close() })

	assert.True(t, ms.SetNX("k", -time.Second))
	assert.True(t, ms.SetNX("k", time.Minute))
	assert.False(t, ms.SetNX("k", time.Minute))

	ms.Delete("k")
	assert.True(t, ms.SetNX("k", time.Minute))
}

func TestMemoryStore_AcquireCancelled(t *testing.T) {
	ms := NewMemoryStore()
	t.Cleanup(func() { _ = ms.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ms.Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedisGuard(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	g := NewRedisGuard(client)
	ctx := context.Background()
	key := "test:" + time.Now().Format(time.RFC3339Nano)

	ok, err := g.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, g.Release(ctx, key))
}
