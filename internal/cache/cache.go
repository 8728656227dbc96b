package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/garagemdigital/autovendas-ai-platform/pkg/logging"
)

// ErrNotFound indicates the key is absent or expired.
var ErrNotFound = errors.New("cache: key not found")

// Store is the minimal key-value contract shared by the Redis backend and
// the in-process fallback.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Incr increments a counter; the first increment in a window sets the
	// key's expiry to the window duration.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
}

// Options configures the cache backend selection.
type Options struct {
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
}

// Cache fronts a Store with the rate-limit and lock primitives used by the
// conversation engine. The backend is chosen once at startup: if Redis does
// not answer a ping, the process runs on the in-process store for its whole
// lifetime. There is no per-call fallback.
type Cache struct {
	store   Store
	backend string
	logger  *logging.Logger
}

// New pings Redis and returns a Redis-backed cache, or the in-process
// fallback when Redis is unreachable or unconfigured.
func New(ctx context.Context, opts Options, logger *logging.Logger) *Cache {
	if logger == nil {
		logger = logging.Default()
	}

	if opts.RedisAddr != "" {
		redisOpts := &redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
		}
		if opts.RedisTLS {
			redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(redisOpts)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err == nil {
			logger.Info("cache: using redis backend", "addr", opts.RedisAddr)
			return &Cache{store: NewRedisStore(client), backend: "redis", logger: logger}
		} else {
			logger.Warn("cache: redis unreachable, using in-process fallback", "addr", opts.RedisAddr, "error", err)
			_ = client.Close()
		}
	} else {
		logger.Warn("cache: redis not configured, using in-process fallback")
	}

	mem := NewMemoryStore()
	mem.StartJanitor(ctx, time.Minute)
	return &Cache{store: mem, backend: "memory", logger: logger}
}

// NewWithStore wires a cache around an explicit store. Used by tests and by
// callers that manage the Redis client themselves.
func NewWithStore(store Store, logger *logging.Logger) *Cache {
	if store == nil {
		panic("cache: store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	backend := "memory"
	if _, ok := store.(*RedisStore); ok {
		backend = "redis"
	}
	return &Cache{store: store, backend: backend, logger: logger}
}

// Backend reports which store was selected at startup ("redis" or "memory").
func (c *Cache) Backend() string { return c.backend }

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.store.Get(ctx, key)
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.store.Set(ctx, key, value, ttl)
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// SetJSON marshals value and stores it under key.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}
	return c.store.Set(ctx, key, data, ttl)
}

// GetJSON loads key and unmarshals it into out. Returns ErrNotFound when
// the key is absent or expired.
func (c *Cache) GetJSON(ctx context.Context, key string, out any) error {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("cache: unmarshal %s: %w", key, err)
	}
	return nil
}

// RateLimit applies a fixed-window counter to key. remaining is how many
// requests are left in the current window.
func (c *Cache) RateLimit(ctx context.Context, key string, max int, window time.Duration) (allowed bool, remaining int, err error) {
	if max <= 0 {
		return true, 0, nil
	}
	count, err := c.store.Incr(ctx, "ratelimit:"+key, window)
	if err != nil {
		// A broken counter must not take the conversation down with it.
		c.logger.Warn("cache: rate limit counter failed", "key", key, "error", err)
		return true, max, err
	}
	remaining = max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return count <= int64(max), remaining, nil
}

// AcquireLock takes a set-if-not-exists lock with expiry. Returns false when
// another holder owns the lock.
func (c *Cache) AcquireLock(ctx context.Context, key string, ttl time.Duration) bool {
	ok, err := c.store.SetNX(ctx, "lock:"+key, []byte("1"), ttl)
	if err != nil {
		c.logger.Warn("cache: lock acquisition failed", "key", key, "error", err)
		return false
	}
	return ok
}

// ReleaseLock drops a previously acquired lock.
func (c *Cache) ReleaseLock(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, "lock:"+key); err != nil {
		c.logger.Warn("cache: lock release failed", "key", key, "error", err)
	}
}
