// Package cache implements the HTTP response cache and its invalidation.
//
// Keys are structured as "<resource>|<request uri>". A write to a resource
// drops that resource's partition with InvalidateResource; Invalidate keeps
// the older contract of removing every key that contains a substring.
package cache

import (
	"context"
	"strings"
	"time"
)

// KeySeparator splits the resource tag from the request path in a key
const KeySeparator = "|"

// Default timings
const (
	DefaultTTL         = 300 * time.Second
	DefaultCheckPeriod = 60 * time.Second
)

// ResponseCache stores serialized GET responses. Implementations never return
// errors to callers: a failing backend behaves like an empty cache.
type ResponseCache interface {
	// Get returns the cached value, false on miss or expiry
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores a value; ttl <= 0 uses the cache's default TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// Invalidate removes every key containing pattern and returns how many were removed
	Invalidate(ctx context.Context, pattern string) int
	// InvalidateResource removes exactly the keys tagged with resource
	InvalidateResource(ctx context.Context, resource string) int
	// Clear removes every entry
	Clear(ctx context.Context)
	// Keys lists live keys, for the admin endpoint
	Keys(ctx context.Context) []string
	// Stats reports counters for the admin endpoint
	Stats(ctx context.Context) Stats
	Close() error
}

// Stats summarises cache activity
type Stats struct {
	Driver string `json:"driver"`
	Keys   int    `json:"keys"`
	Hits   int64  `json:"hits"`
	Misses int64  `json:"misses"`
}

// Key builds the cache key of a response
func Key(resource, requestURI string) string {
	return resource + KeySeparator + requestURI
}

// ResourceOf returns the resource tag of a key
func ResourceOf(key string) string {
	resource, _, found := strings.Cut(key, KeySeparator)
	if !found {
		return ""
	}
	return resource
}
