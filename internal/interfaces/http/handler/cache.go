package handler

import (
	"github.com/gestion-compras/backend/internal/infrastructure/cache"
	"github.com/gestion-compras/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CacheHandler exposes the response cache administration endpoints
type CacheHandler struct {
	BaseHandler
	cache cache.ResponseCache
}

// NewCacheHandler creates a new CacheHandler
func NewCacheHandler(responseCache cache.ResponseCache) *CacheHandler {
	return &CacheHandler{cache: responseCache}
}

// CacheStatsResponse is the body of GET /api/cache/stats
type CacheStatsResponse struct {
	cache.Stats
	Claves []string `json:"claves"`
}

// CacheClearResponse is the body of DELETE /api/cache
type CacheClearResponse struct {
	Eliminadas int    `json:"eliminadas"`
	Patron     string `json:"patron,omitempty"`
}

// Clear godoc
// @Summary      Clear response cache
// @Description  Removes every cached response, or only keys containing the given pattern
// @Tags         cache
// @Produce      json
// @Security     BearerAuth
// @Param        pattern query string false "Substring of the keys to remove"
// @Success      200 {object} dto.Response{data=CacheClearResponse}
// @Router       /cache [delete]
func (h *CacheHandler) Clear(c *gin.Context) {
	ctx := c.Request.Context()
	pattern := c.Query("pattern")

	if pattern != "" {
		removed := h.cache.Invalidate(ctx, pattern)
		logger.L(ctx).Info("Cache invalidated", zap.String("pattern", pattern), zap.Int("removed", removed))
		h.Message(c, "Caché invalidado exitosamente", CacheClearResponse{Eliminadas: removed, Patron: pattern})
		return
	}

	removed := len(h.cache.Keys(ctx))
	h.cache.Clear(ctx)
	logger.L(ctx).Info("Cache cleared", zap.Int("removed", removed))
	h.Message(c, "Caché limpiado exitosamente", CacheClearResponse{Eliminadas: removed})
}

// Stats godoc
// @Summary      Response cache statistics
// @Tags         cache
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response{data=CacheStatsResponse}
// @Router       /cache/stats [get]
func (h *CacheHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	keys := h.cache.Keys(ctx)
	if keys == nil {
		keys = []string{}
	}
	h.Success(c, CacheStatsResponse{
		Stats:  h.cache.Stats(ctx),
		Claves: keys,
	})
}
