package middleware

import (
	"context"
	"strings"

	"github.com/gestion-compras/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling label keys
const (
	ProfilingLabelMethod     = "method"
	ProfilingLabelRoute      = "route"
	ProfilingLabelController = "controller"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	Enabled          bool
	SkipPaths        []string
	SkipPathPrefixes []string
}

// DefaultProfilingConfig returns default profiling middleware configuration.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:          true,
		SkipPaths:        []string{"/api/health"},
		SkipPathPrefixes: []string{"/swagger", "/uploads"},
	}
}

// ProfilingWithConfig returns middleware that runs each request under pprof
// labels (method, route pattern and controller) so Pyroscope profiles can be
// sliced per endpoint.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		telemetry.WithProfilingLabels(c.Request.Context(), extractProfilingLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func extractProfilingLabels(c *gin.Context) map[string]string {
	route := c.FullPath()
	return map[string]string{
		ProfilingLabelMethod:     c.Request.Method,
		ProfilingLabelRoute:      route,
		ProfilingLabelController: controllerFromRoute(route),
	}
}

// controllerFromRoute derives the resource name of a route pattern.
// "/api/ordenes-trabajo/:id/pdf" gives "ordenes-trabajo".
func controllerFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || strings.HasPrefix(part, ":") || strings.HasPrefix(part, "*") {
			continue
		}
		return part
	}
	return ""
}
