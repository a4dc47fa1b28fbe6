package middleware

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gestion-compras/backend/internal/infrastructure/cache"
	"github.com/gestion-compras/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// X-Cache header values
const (
	CacheHeader = "X-Cache"
	CacheHit    = "HIT"
	CacheMiss   = "MISS"
)

// CacheLookupRecorder counts cache hits and misses
type CacheLookupRecorder interface {
	RecordCacheLookup(ctx context.Context, resource string, hit bool)
}

type noopLookupRecorder struct{}

func (noopLookupRecorder) RecordCacheLookup(context.Context, string, bool) {}

// bodyRecorder keeps a copy of what the handler writes
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CacheResponse serves GET requests of resource from the response cache.
// On a miss the handler runs and a 200 JSON answer is stored for ttl.
// A nil cache disables the middleware.
func CacheResponse(store cache.ResponseCache, resource string, ttl time.Duration, recorder CacheLookupRecorder) gin.HandlerFunc {
	if store == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if recorder == nil {
		recorder = noopLookupRecorder{}
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := cache.Key(resource, c.Request.URL.RequestURI())

		if body, ok := store.Get(ctx, key); ok {
			recorder.RecordCacheLookup(ctx, resource, true)
			c.Header(CacheHeader, CacheHit)
			c.Data(http.StatusOK, "application/json; charset=utf-8", body)
			c.Abort()
			return
		}
		recorder.RecordCacheLookup(ctx, resource, false)

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Header(CacheHeader, CacheMiss)

		c.Next()

		if rec.Status() != http.StatusOK || rec.body.Len() == 0 {
			return
		}
		if !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
			return
		}
		store.Set(ctx, key, bytes.Clone(rec.body.Bytes()), ttl)
		logger.L(ctx).Debug("Response cached",
			zap.String("key", key),
			zap.Duration("ttl", ttl),
		)
	}
}
