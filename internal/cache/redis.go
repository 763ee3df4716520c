// Redis-backed Cache implementation.
//
// A redis.Nil reply maps to a clean miss; every other error is reported to
// the caller, which treats it as "cache unavailable" and falls through to
// the store. Prefix deletion walks the keyspace with SCAN (never KEYS) and
// removes matches in batches, so invalidation stays O(matched keys) without
// blocking the server.
package cache

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ErrNilClient is returned by NewRedis when no client is supplied.
var ErrNilClient = errors.New("cache: nil redis client")

// scanBatch is the COUNT hint passed to SCAN and the flush threshold for DEL.
const scanBatch = 256

// Redis adapts a go-redis universal client to the Cache contract.
type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ Cache = (*Redis)(nil)

// RedisConfig configures NewRedis.
type RedisConfig struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this cache exclusively owns the client
}

// NewRedis wraps an existing go-redis client. The client is shared across all
// requests; ownership (and therefore Close responsibility) is opt-in.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

// Get fetches key, mapping redis.Nil to a miss.
func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

// Set stores value under key with the given TTL. Non-positive TTLs are
// treated as "no expiry".
func (c *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 0
	}
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// DeleteByPrefix removes every key matching prefix* via SCAN + DEL.
func (c *Redis) DeleteByPrefix(ctx context.Context, prefix string) error {
	iter := c.rdb.Scan(ctx, 0, prefix+"*", scanBatch).Iterator()
	keys := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= scanBatch {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return c.rdb.Del(ctx, keys...).Err()
	}
	return nil
}

// Close releases the underlying redis client only when this cache owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (c *Redis) Close() error {
	if c.closeClient {
		if err := c.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
