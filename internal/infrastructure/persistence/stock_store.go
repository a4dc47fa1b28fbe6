package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/gestion-compras/backend/internal/domain/inventory"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockStore implements inventory.StockStore against the inventario table
type GormStockStore struct {
	db *gorm.DB
}

// NewGormStockStore creates a new GormStockStore
func NewGormStockStore(db *gorm.DB) *GormStockStore {
	return &GormStockStore{db: db}
}

// OnHand reads stock_actual for one item
func (s *GormStockStore) OnHand(ctx context.Context, id uuid.UUID) (int, error) {
	var item inventory.CatalogItem
	err := s.db.WithContext(ctx).
		Select("id", "stock_actual").
		First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, shared.NewNotFoundError("catalog item")
		}
		return 0, shared.NewPersistenceError("read stock", err)
	}
	return item.StockActual, nil
}

// SetOnHand overwrites stock_actual and updated_at
func (s *GormStockStore) SetOnHand(ctx context.Context, id uuid.UUID, qty int) error {
	result := s.db.WithContext(ctx).
		Model(&inventory.CatalogItem{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock_actual": qty,
			"updated_at":   time.Now(),
		})
	return rowsOrNotFound(result, "write stock")
}

// Decrement subtracts n from stock_actual in one UPDATE so concurrent
// decrements never overwrite each other. The result may go negative.
func (s *GormStockStore) Decrement(ctx context.Context, id uuid.UUID, n int) error {
	result := s.db.WithContext(ctx).
		Model(&inventory.CatalogItem{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock_actual": gorm.Expr("stock_actual - ?", n),
			"updated_at":   time.Now(),
		})
	return rowsOrNotFound(result, "decrement stock")
}

func rowsOrNotFound(result *gorm.DB, op string) error {
	if result.Error != nil {
		return shared.NewPersistenceError(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("catalog item")
	}
	return nil
}

// Ensure GormStockStore implements inventory.StockStore
var _ inventory.StockStore = (*GormStockStore)(nil)
