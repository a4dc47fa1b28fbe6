package persistence

import (
	"context"
	"errors"

	"github.com/gestion-compras/backend/internal/domain/partner"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSupplierRepository implements partner.SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var supplier partner.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.NewPersistenceError("load supplier", err)
	}
	return &supplier, nil
}

// FindAll lists suppliers ordered by business name
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	query := r.db.WithContext(ctx).Model(&partner.Supplier{})
	query = applySearch(query, filter.Search, "nombre_social", "rfc", "contacto", "email")
	if rfc, ok := filter.Filters["rfc"]; ok {
		query = query.Where("rfc = ?", rfc)
	}
	query = applyOrder(query, filter, SupplierSortFields, "nombre_social", "ASC")
	query = applyPagination(query, filter)

	var suppliers []partner.Supplier
	if err := query.Find(&suppliers).Error; err != nil {
		return nil, shared.NewPersistenceError("list suppliers", err)
	}
	return suppliers, nil
}

// Save creates or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	if err := r.db.WithContext(ctx).Save(supplier).Error; err != nil {
		return shared.NewPersistenceError("save supplier", err)
	}
	return nil
}

// Delete removes a supplier. Documents keep their proveedor_id.
func (r *GormSupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&partner.Supplier{}, "id = ?", id)
	if result.Error != nil {
		return shared.NewPersistenceError("delete supplier", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormSupplierRepository implements partner.SupplierRepository
var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)
