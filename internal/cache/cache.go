// Package cache stores per-file line counts in Redis so unchanged files are
// not recounted across runs.
//
// Entries are keyed by a file's absolute path, size and modification time.
// Editing a file changes its key, so stale counts are never served; old
// entries simply expire after the configured TTL.
package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	lperrors "github.com/vnykmshr/linepool/pkg/common/errors"
)

// DefaultTimeout bounds each Redis round trip.
const DefaultTimeout = 500 * time.Millisecond

// Fingerprint identifies one version of a file.
type Fingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Same reports whether f and o describe the same version of the same file.
func (f Fingerprint) Same(o Fingerprint) bool {
	return f.Path == o.Path && f.Size == o.Size && f.ModTime.Equal(o.ModTime)
}

// Stat fingerprints the file at path.
func Stat(path string) (Fingerprint, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Fingerprint{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Fingerprint{}, err
	}
	if !info.Mode().IsRegular() {
		return Fingerprint{}, fmt.Errorf("%s: not a regular file", path)
	}
	return Fingerprint{Path: abs, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Config configures a RedisCache.
type Config struct {
	// Redis is the client used for every operation. Required.
	Redis *redis.Client

	// Prefix namespaces every key, default "linepool".
	Prefix string

	// TTL is the lifetime of an entry; 0 keeps entries until evicted.
	TTL time.Duration

	// Timeout bounds each operation, default DefaultTimeout.
	Timeout time.Duration
}

// RedisCache is a line count cache backed by Redis. It is safe for
// concurrent use by the pool workers.
type RedisCache struct {
	config Config
	closed atomic.Bool
}

// New creates a cache over an existing client.
func New(config Config) (*RedisCache, error) {
	if config.Redis == nil {
		return nil, lperrors.NewValidationError("cache", "redis", nil, "cannot be nil").
			WithHint("pass a client created with redis.NewClient")
	}
	if config.TTL < 0 {
		return nil, lperrors.NewValidationError("cache", "ttl", config.TTL, "cannot be negative")
	}
	if config.Prefix == "" {
		config.Prefix = "linepool"
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &RedisCache{config: config}, nil
}

// Dial connects to the Redis server at addr and verifies it answers a PING.
func Dial(ctx context.Context, addr string, db int, prefix string, ttl time.Duration) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, lperrors.NewOperationError("cache", "Dial", err).WithContext(addr)
	}

	c, err := New(Config{Redis: rdb, Prefix: prefix, TTL: ttl})
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return c, nil
}

// Key returns the Redis key holding the count for fp.
func (c *RedisCache) Key(fp Fingerprint) string {
	return fmt.Sprintf("%s:lines:%s:%d:%d", c.config.Prefix, fp.Path, fp.Size, fp.ModTime.UnixNano())
}

// Lookup returns the cached count for fp. ok is false on a miss.
func (c *RedisCache) Lookup(ctx context.Context, fp Fingerprint) (lines int, ok bool, err error) {
	if c.closed.Load() {
		return 0, false, lperrors.ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	val, err := c.config.Redis.Get(ctx, c.Key(fp)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, lperrors.NewOperationError("cache", "Lookup", err).WithContext(fp.Path)
	}

	lines, err = strconv.Atoi(val)
	if err != nil || lines < 0 {
		return 0, false, lperrors.NewOperationError("cache", "Lookup",
			fmt.Errorf("corrupt entry %q", val)).WithContext(fp.Path)
	}
	return lines, true, nil
}

// Store records the count for fp.
func (c *RedisCache) Store(ctx context.Context, fp Fingerprint, lines int) error {
	if c.closed.Load() {
		return lperrors.ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if err := c.config.Redis.Set(ctx, c.Key(fp), lines, c.config.TTL).Err(); err != nil {
		return lperrors.NewOperationError("cache", "Store", err).WithContext(fp.Path)
	}
	return nil
}

// Close closes the underlying client. Later operations return ErrClosed.
func (c *RedisCache) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.config.Redis.Close()
}
