package partner

import (
	"context"

	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Supplier, error)
	Save(ctx context.Context, supplier *Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
}
