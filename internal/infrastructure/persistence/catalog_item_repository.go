package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gestion-compras/backend/internal/domain/inventory"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCatalogItemRepository implements inventory.CatalogItemRepository using GORM
type GormCatalogItemRepository struct {
	db *gorm.DB
}

// NewGormCatalogItemRepository creates a new GormCatalogItemRepository
func NewGormCatalogItemRepository(db *gorm.DB) *GormCatalogItemRepository {
	return &GormCatalogItemRepository{db: db}
}

// FindByID finds a catalog item by its ID
func (r *GormCatalogItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.CatalogItem, error) {
	var item inventory.CatalogItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.NewPersistenceError("load catalog item", err)
	}
	return &item, nil
}

// FindAll lists catalog items ordered by name unless the filter says otherwise
func (r *GormCatalogItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.CatalogItem, error) {
	query := r.db.WithContext(ctx).Model(&inventory.CatalogItem{})
	query = applySearch(query, filter.Search, "codigo", "nombre", "descripcion")

	for key, value := range filter.Filters {
		switch key {
		case "activo":
			query = query.Where("activo = ?", value)
		case "categoria":
			query = query.Where("categoria = ?", value)
		}
	}

	query = applyOrder(query, filter, CatalogSortFields, "nombre", "ASC")
	query = applyPagination(query, filter)

	var items []inventory.CatalogItem
	if err := query.Find(&items).Error; err != nil {
		return nil, shared.NewPersistenceError("list catalog items", err)
	}
	return items, nil
}

// FindLowStock returns active items at or below their minimum, lowest stock first
func (r *GormCatalogItemRepository) FindLowStock(ctx context.Context) ([]inventory.CatalogItem, error) {
	var items []inventory.CatalogItem
	err := r.db.WithContext(ctx).
		Where("activo = ? AND stock_actual <= stock_minimo", true).
		Order("stock_actual ASC").
		Order("nombre ASC").
		Find(&items).Error
	if err != nil {
		return nil, shared.NewPersistenceError("list low stock items", err)
	}
	return items, nil
}

// ExistsByCode checks whether another item already uses the code
func (r *GormCatalogItemRepository) ExistsByCode(ctx context.Context, codigo string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&inventory.CatalogItem{}).
		Where("LOWER(codigo) = ?", strings.ToLower(strings.TrimSpace(codigo)))
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, shared.NewPersistenceError("check catalog code", err)
	}
	return count > 0, nil
}

// Save creates or updates a catalog item
func (r *GormCatalogItemRepository) Save(ctx context.Context, item *inventory.CatalogItem) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Ya existe un artículo con ese código")
		}
		return shared.NewPersistenceError("save catalog item", err)
	}
	return nil
}

// Update writes the given columns and updated_at. Columns left out keep
// whatever value the row holds.
func (r *GormCatalogItemRepository) Update(ctx context.Context, item *inventory.CatalogItem, columns ...string) error {
	result := r.db.WithContext(ctx).
		Model(item).
		Select(append(columns, "updated_at")).
		Updates(item)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Ya existe un artículo con ese código")
		}
		return shared.NewPersistenceError("update catalog item", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AdjustStock applies delta in one UPDATE inside a transaction that also
// reads the stock before and after.
func (r *GormCatalogItemRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, int, error) {
	var before, after int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item inventory.CatalogItem
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "stock_actual").
			First(&item, "id = ?", id).Error
		if err != nil {
			return err
		}
		before = item.StockActual

		expr := gorm.Expr("stock_actual + ?", delta)
		if delta < 0 {
			expr = gorm.Expr("CASE WHEN stock_actual + ? < 0 THEN 0 ELSE stock_actual + ? END", delta, delta)
		}
		err = tx.Model(&inventory.CatalogItem{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"stock_actual": expr,
				"updated_at":   time.Now(),
			}).Error
		if err != nil {
			return err
		}

		if err := tx.Select("id", "stock_actual").First(&item, "id = ?", id).Error; err != nil {
			return err
		}
		after = item.StockActual
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, shared.ErrNotFound
		}
		return 0, 0, shared.NewPersistenceError("adjust stock", err)
	}
	return before, after, nil
}

// Delete removes a catalog item
func (r *GormCatalogItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&inventory.CatalogItem{}, "id = ?", id)
	if result.Error != nil {
		return shared.NewPersistenceError("delete catalog item", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormCatalogItemRepository implements inventory.CatalogItemRepository
var _ inventory.CatalogItemRepository = (*GormCatalogItemRepository)(nil)
