package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// MemoryResponseCache is a process-local ResponseCache. Expired entries are
// hidden on read and removed by a background sweep.
type MemoryResponseCache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
	now        func() time.Time

	hits   atomic.Int64
	misses atomic.Int64

	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// MemoryOption configures a MemoryResponseCache
type MemoryOption func(*MemoryResponseCache)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryResponseCache) {
		c.now = now
	}
}

// NewMemoryResponseCache creates the cache and starts its sweeper. A zero
// checkPeriod disables the sweeper.
func NewMemoryResponseCache(defaultTTL, checkPeriod time.Duration, opts ...MemoryOption) *MemoryResponseCache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	c := &MemoryResponseCache{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		now:        time.Now,
		stopChan:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	if checkPeriod > 0 {
		c.wg.Add(1)
		go c.sweepLoop(checkPeriod)
	}
	return c
}

// Get implements ResponseCache
func (c *MemoryResponseCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || e.expired(c.now()) {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return e.value, true
}

// Set implements ResponseCache
func (c *MemoryResponseCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Invalidate implements ResponseCache
func (c *MemoryResponseCache) Invalidate(_ context.Context, pattern string) int {
	return c.deleteWhere(func(key string) bool {
		return strings.Contains(key, pattern)
	})
}

// InvalidateResource implements ResponseCache
func (c *MemoryResponseCache) InvalidateResource(_ context.Context, resource string) int {
	prefix := resource + KeySeparator
	return c.deleteWhere(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

func (c *MemoryResponseCache) deleteWhere(match func(string) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if match(key) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear implements ResponseCache
func (c *MemoryResponseCache) Clear(_ context.Context) {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Keys implements ResponseCache
func (c *MemoryResponseCache) Keys(_ context.Context) []string {
	now := c.now()
	c.mu.RLock()
	keys := make([]string, 0, len(c.entries))
	for key, e := range c.entries {
		if !e.expired(now) {
			keys = append(keys, key)
		}
	}
	c.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Stats implements ResponseCache
func (c *MemoryResponseCache) Stats(ctx context.Context) Stats {
	return Stats{
		Driver: "memory",
		Keys:   len(c.Keys(ctx)),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}

// Close stops the sweeper. Safe to call multiple times.
func (c *MemoryResponseCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *MemoryResponseCache) sweepLoop(period time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *MemoryResponseCache) sweep() int {
	now := c.now()
	return c.deleteWhere(func(key string) bool {
		// deleteWhere holds the write lock, entries is safe to read here
		return c.entries[key].expired(now)
	})
}

// Ensure MemoryResponseCache implements ResponseCache
var _ ResponseCache = (*MemoryResponseCache)(nil)
