package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gestion-compras/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger checks a backing service. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves the liveness endpoint
type HealthHandler struct {
	BaseHandler
	db        Pinger
	startTime time.Time
	timeout   time.Duration
}

// NewHealthHandler creates a new HealthHandler. db may be nil.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startTime: time.Now(),
		timeout:   2 * time.Second,
	}
}

// HealthResponse is the body of GET /api/health
type HealthResponse struct {
	Success   bool    `json:"success" example:"true"`
	Message   string  `json:"message" example:"API funcionando correctamente"`
	Timestamp string  `json:"timestamp" example:"2026-01-23T12:00:00Z"`
	Uptime    float64 `json:"uptime" example:"3600.5"`
	Database  string  `json:"database" example:"ok"`
}

// Health godoc
// @Summary      Health check
// @Description  Reports uptime and database reachability
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Success:   true,
		Message:   "API funcionando correctamente",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Seconds(),
		Database:  "ok",
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			logger.L(c.Request.Context()).Warn("Health check database ping failed", zap.Error(err))
			resp.Success = false
			resp.Message = "Base de datos no disponible"
			resp.Database = "unavailable"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}
