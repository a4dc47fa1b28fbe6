package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*RateLimiter, *time.Time) {
	t.Helper()
	rl := NewRateLimiter(limit, window)
	t.Cleanup(rl.Stop)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiter_Allow(t *testing.T) {
	rl, now := newTestLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "request %d", i)
	}
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.Equal(t, 0, rl.Remaining("10.0.0.1"))

	// other clients have their own bucket
	assert.True(t, rl.Allow("10.0.0.2"))

	// one token comes back every window/limit
	*now = now.Add(20 * time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl, now := newTestLimiter(t, 5, time.Minute)

	rl.Allow("10.0.0.1")
	*now = now.Add(time.Minute)
	rl.Allow("10.0.0.2")
	assert.Equal(t, 2, rl.Clients())

	*now = now.Add(90 * time.Second)
	rl.cleanup()
	assert.Equal(t, 1, rl.Clients())
	assert.Equal(t, 5, rl.Remaining("10.0.0.1"))
}

func TestRateLimit_Middleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 2, time.Minute)

	router := gin.New()
	router.Use(RateLimit(rl))
	router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "192.168.1.10:5555"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := do()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do().Code)

	w = do()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}
