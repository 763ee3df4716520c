// Package cache defines the byte-oriented cache contract used by the catalog
// read path, plus Redis-backed and in-process implementations.
//
// The contract is intentionally narrow: the catalog caches exactly one read
// pattern (serialized list pages under a common key prefix) with a fixed TTL,
// and invalidates by deleting the whole prefix. Implementations must treat
// transient unavailability as a soft failure — callers degrade a failed Get
// to a miss and log-and-continue on failed Set/DeleteByPrefix, so the cache
// is never a correctness dependency.
package cache

import (
	"context"
	"time"
)

// Cache is a volatile key-value store for serialized query results.
//
// Semantics:
//   - Get returns (value, true, nil) on a hit, (nil, false, nil) on a clean
//     miss, and (nil, false, err) when the backend could not be asked.
//   - Set stores value under key with an absolute TTL; entries are never
//     updated in place by callers, only re-created after invalidation.
//   - DeleteByPrefix removes every key starting with prefix. It is the
//     coarse-grained invalidation primitive: one write evicts all pages.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}
