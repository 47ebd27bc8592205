package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drivers(t *testing.T) map[string]Cache {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return map[string]Cache{
		"memory": NewMemory(),
		"redis":  NewRedis(rdb),
	}
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	for name, c := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Set(ctx, "k", payload{Name: "pizza", Count: 2}, time.Minute))

			var got payload
			require.NoError(t, c.Get(ctx, "k", &got))
			assert.Equal(t, payload{Name: "pizza", Count: 2}, got)

			require.NoError(t, c.Del(ctx, "k", "never-set"))
			err := c.Get(ctx, "k", &got)
			assert.True(t, errors.Is(err, ErrMiss), "expected ErrMiss, got %v", err)
		})
	}
}

func TestSetNX(t *testing.T) {
	ctx := context.Background()
	for name, c := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			ok, err := c.SetNX(ctx, "lock", 1, time.Minute)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = c.SetNX(ctx, "lock", 2, time.Minute)
			require.NoError(t, err)
			assert.False(t, ok, "second SetNX must not overwrite")

			require.NoError(t, c.Del(ctx, "lock"))
			ok, err = c.SetNX(ctx, "lock", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", "v", time.Second))
	now = now.Add(2 * time.Second)

	var got string
	assert.ErrorIs(t, m.Get(ctx, "k", &got), ErrMiss)

	ok, err := m.SetNX(ctx, "k", "w", 0)
	require.NoError(t, err)
	assert.True(t, ok, "expired key must be claimable")
}

func TestMemorySweepsExpiredEntriesOnWrite(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	for i := 0; i < 1000; i++ {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("fastbite:session:%d", i), i, time.Minute))
	}
	require.NoError(t, m.Set(ctx, "keep", "v", 0))

	now = now.Add(24 * time.Hour)
	require.NoError(t, m.Set(ctx, "fresh", "v", time.Minute))

	assert.Len(t, m.entries, 2, "only the unexpiring and the fresh entry remain")
}

func TestMemorySweepsAfterManyWritesWithinInterval(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "short", "v", time.Millisecond))
	now = now.Add(time.Second)

	for i := 0; i < sweepEvery; i++ {
		_, err := m.SetNX(ctx, fmt.Sprintf("fastbite:checkout:token:%d", i), "s", time.Hour)
		require.NoError(t, err)
	}

	_, held := m.entries["short"]
	assert.False(t, held)
}
