// Package storage keeps invoice attachments on the local disk or in an
// S3-compatible bucket.
package storage

import (
	"fmt"

	purchasingapp "github.com/gestion-compras/backend/internal/application/purchasing"
	"github.com/gestion-compras/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewAttachmentStorage creates the storage selected by cfg.Driver
func NewAttachmentStorage(cfg *config.StorageConfig, logger *zap.Logger) (purchasingapp.AttachmentStorage, error) {
	switch cfg.Driver {
	case "", config.StorageDriverLocal:
		logger.Info("Using local attachment storage", zap.String("path", cfg.LocalPath))
		return NewLocalAttachmentStorage(cfg.LocalPath, cfg.PublicURL)
	case config.StorageDriverS3:
		s, err := NewS3AttachmentStorage(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		logger.Info("Using S3 attachment storage",
			zap.String("endpoint", s.endpoint),
			zap.String("bucket", s.bucket))
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
