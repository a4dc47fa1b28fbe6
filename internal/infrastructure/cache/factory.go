package cache

import (
	"github.com/gestion-compras/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewResponseCache builds the response cache selected by configuration. The
// Redis driver falls back to the in-memory cache when Redis is unreachable.
func NewResponseCache(cfg config.CacheConfig, redisCfg config.RedisConfig, logger *zap.Logger) ResponseCache {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Driver == config.CacheDriverRedis {
		rc, err := NewRedisResponseCache(RedisConfig{
			Addr:      redisCfg.Addr(),
			Password:  redisCfg.Password,
			DB:        redisCfg.DB,
			KeyPrefix: cfg.KeyPrefix,
			TTL:       cfg.TTL,
		}, logger.Named("cache"))
		if err == nil {
			logger.Info("using Redis response cache", zap.String("addr", redisCfg.Addr()))
			return rc
		}
		logger.Warn("Redis unavailable, falling back to in-memory response cache. "+
			"Instances will not share cached responses.",
			zap.Error(err),
		)
	}

	logger.Info("using in-memory response cache",
		zap.Duration("ttl", cfg.TTL),
		zap.Duration("check_period", cfg.CheckPeriod),
	)
	return NewMemoryResponseCache(cfg.TTL, cfg.CheckPeriod)
}
