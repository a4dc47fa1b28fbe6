package persistence

import (
	"context"

	"github.com/gestion-compras/backend/internal/domain/inventory"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements inventory.StockMovementRepository
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Append inserts one movement
func (r *GormStockMovementRepository) Append(ctx context.Context, movement *inventory.StockMovement) error {
	if err := r.db.WithContext(ctx).Create(movement).Error; err != nil {
		return shared.NewPersistenceError("record stock movement", err)
	}
	return nil
}

// FindByItem returns the latest movements of an item, newest first
func (r *GormStockMovementRepository) FindByItem(ctx context.Context, itemID uuid.UUID, limit int) ([]inventory.StockMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	var movements []inventory.StockMovement
	err := r.db.WithContext(ctx).
		Where("inventario_id = ?", itemID).
		Order("created_at DESC").
		Limit(limit).
		Find(&movements).Error
	if err != nil {
		return nil, shared.NewPersistenceError("list stock movements", err)
	}
	return movements, nil
}

// Ensure GormStockMovementRepository implements inventory.StockMovementRepository
var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
