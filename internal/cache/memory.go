// In-process Cache implementation.
//
// Memory keeps entries in a mutex-guarded map with per-entry deadlines and
// lazy expiry (entries are dropped when read past their deadline, not by a
// background sweeper). It backs single-process deployments without Redis and
// the service tests; it intentionally mirrors the Redis semantics, including
// clean misses for expired keys.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memEntry struct {
	value    []byte
	deadline time.Time // zero means no expiry
}

// Memory is a process-local Cache. The zero value is not usable; construct
// with NewMemory.
type Memory struct {
	mu sync.RWMutex
	m  map[string]memEntry

	// now is a test seam; defaults to time.Now.
	now func() time.Time
}

var _ Cache = (*Memory)(nil)

// NewMemory returns an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{m: make(map[string]memEntry), now: time.Now}
}

// Get returns the stored value when present and unexpired.
func (c *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.deadline.IsZero() && c.now().After(e.deadline) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	// Copy so callers cannot mutate the cached bytes.
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

// Set stores a copy of value under key with the given TTL.
func (c *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	v := make([]byte, len(value))
	copy(v, value)
	e := memEntry{value: v}
	if ttl > 0 {
		e.deadline = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.m[key] = e
	c.mu.Unlock()
	return nil
}

// DeleteByPrefix removes every key starting with prefix.
func (c *Memory) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	for k := range c.m {
		if strings.HasPrefix(k, prefix) {
			delete(c.m, k)
		}
	}
	c.mu.Unlock()
	return nil
}

// Close drops all entries.
func (c *Memory) Close() error {
	c.mu.Lock()
	c.m = make(map[string]memEntry)
	c.mu.Unlock()
	return nil
}

// Len reports the number of live entries; used by tests.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
