// Package cache is a small key/value store with TTLs, backed by Redis or by
// process memory. Sessions, the checkout lock and the catalog cache use it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhonlemus05/FastBite-Delivery/config"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache is implemented by the redis and memory drivers.
type Cache interface {
	// Get unmarshals the JSON value stored under key into dest.
	Get(ctx context.Context, key string, dest interface{}) error
	// Set stores value as JSON under key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// SetNX stores value only if key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	// Del removes keys; missing keys are ignored.
	Del(ctx context.Context, keys ...string) error
	// Driver names the backend ("redis" or "memory").
	Driver() string
}

// Connect builds the cache selected by SESSION_DRIVER. The redis driver pings
// the server so callers can fall back to memory on failure.
func Connect(ctx context.Context) (Cache, error) {
	if config.SessionDriver() != "redis" {
		return NewMemory(), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return NewRedis(rdb), nil
}

// ── Redis ────────────────────────────────────────────────────────────────────

type redisCache struct {
	rdb *redis.Client
}

// NewRedis wraps an existing client.
func NewRedis(rdb *redis.Client) Cache {
	return &redisCache{rdb: rdb}
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("cache: redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	return c.rdb.SetNX(ctx, key, data, ttl).Result()
}

func (c *redisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *redisCache) Driver() string { return "redis" }

// ── Memory ───────────────────────────────────────────────────────────────────

type memoryEntry struct {
	data      []byte
	expiresAt time.Time // zero = never
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Expired memory entries are purged on a write once sweepEvery writes or
// sweepInterval have passed since the last purge.
const (
	sweepEvery    = 1024
	sweepInterval = time.Minute
)

// Memory is the in-process driver. Values are stored as JSON so both drivers
// behave the same with respect to copying.
type Memory struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	now       func() time.Time
	writes    int
	lastSweep time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: map[string]memoryEntry{}, now: time.Now}
}

// sweep drops expired entries when due. Callers hold m.mu.
func (m *Memory) sweep(now time.Time) {
	m.writes++
	if m.lastSweep.IsZero() {
		m.lastSweep = now
	}
	if m.writes < sweepEvery && now.Sub(m.lastSweep) < sweepInterval {
		return
	}
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
		}
	}
	m.writes = 0
	m.lastSweep = now
}

func (m *Memory) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	e, ok := m.entries[key]
	if ok && e.expired(m.now()) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return ErrMiss
	}
	if err := json.Unmarshal(e.data, dest); err != nil {
		return fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return nil
}

func (m *Memory) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.sweep(m.now())
	m.entries[key] = m.entry(data, ttl)
	m.mu.Unlock()
	return nil
}

func (m *Memory) SetNX(_ context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep(m.now())
	if e, ok := m.entries[key]; ok && !e.expired(m.now()) {
		return false, nil
	}
	m.entries[key] = m.entry(data, ttl)
	return true, nil
}

func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Driver() string { return "memory" }

func (m *Memory) entry(data []byte, ttl time.Duration) memoryEntry {
	e := memoryEntry{data: data}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	return e
}
