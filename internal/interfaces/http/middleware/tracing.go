package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// TracingWithConfig returns OpenTelemetry tracing middleware. Spans are
// named after the route pattern by otelgin; TracingAttributeInjector adds
// the request attributes once they are known.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// TracingAttributeInjector tags the current span with the authenticated
// user. Place it after the JWT middleware.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if requestID := GetRequestID(c); requestID != "" {
				span.SetAttributes(attribute.String("request_id", requestID))
			}
			if username := GetJWTUsername(c); username != "" {
				span.SetAttributes(attribute.String("username", username))
			}
			if userID := GetJWTUserID(c); userID != "" {
				span.SetAttributes(attribute.String("user_id", userID))
			}
		}
		c.Next()
	}
}

// SpanErrorMarker marks spans of 4xx and 5xx responses with error status.
// Place it after the tracing middleware.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		statusCode := c.Writer.Status()
		if statusCode < http.StatusBadRequest {
			return
		}
		span.SetStatus(codes.Error, http.StatusText(statusCode))
		span.SetAttributes(attribute.Int("http.status_code", statusCode))
		if cacheStatus := c.Writer.Header().Get(CacheHeader); cacheStatus != "" {
			span.SetAttributes(attribute.String("cache", cacheStatus))
		}
	}
}
