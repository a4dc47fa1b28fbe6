package inventory

import (
	"context"

	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CatalogItemRepository persists catalog items
type CatalogItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CatalogItem, error)
	// FindAll honours the filters "activo" (bool) and "categoria" plus a free-text Search
	FindAll(ctx context.Context, filter shared.Filter) ([]CatalogItem, error)
	// FindLowStock returns active items whose stock is at or below their minimum
	FindLowStock(ctx context.Context) ([]CatalogItem, error)
	ExistsByCode(ctx context.Context, codigo string, excludeID uuid.UUID) (bool, error)
	Save(ctx context.Context, item *CatalogItem) error
	// Update writes only the named columns of an existing item
	Update(ctx context.Context, item *CatalogItem, columns ...string) error
	// AdjustStock adds delta to stock_actual server-side. A negative delta
	// stops at zero. It returns the stock before and after the change.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (before, after int, err error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// StockStore is the narrow surface the intake decrement loop works against.
type StockStore interface {
	// OnHand reads the current quantity of a catalog item
	OnHand(ctx context.Context, id uuid.UUID) (int, error)
	// SetOnHand overwrites the quantity and the updated timestamp
	SetOnHand(ctx context.Context, id uuid.UUID, qty int) error
	// Decrement subtracts n server-side in a single statement
	Decrement(ctx context.Context, id uuid.UUID, n int) error
}

// StockMovementRepository appends to the stock movement log
type StockMovementRepository interface {
	Append(ctx context.Context, movement *StockMovement) error
	FindByItem(ctx context.Context, itemID uuid.UUID, limit int) ([]StockMovement, error)
}
