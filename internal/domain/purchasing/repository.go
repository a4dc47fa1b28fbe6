package purchasing

import (
	"context"

	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentRepository persists one document kind together with its lines
type DocumentRepository[T Document] interface {
	// CreateWithLines inserts the header, stamps its id onto every line and
	// batch-inserts the lines, all in one transaction.
	CreateWithLines(ctx context.Context, doc T) error
	// FindByID loads the header and its lines in creation order
	FindByID(ctx context.Context, id uuid.UUID) (T, error)
	// FindAll lists headers without lines. Honours the filters "estado" and "proveedor_id".
	FindAll(ctx context.Context, filter shared.Filter) ([]T, error)
	// UpdateHeader saves header fields only; lines are immutable once created
	UpdateHeader(ctx context.Context, doc T) error
	// Delete removes the header and its lines
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repository aliases for the three document kinds
type (
	OrderRepository     = DocumentRepository[*Order]
	InvoiceRepository   = DocumentRepository[*Invoice]
	WorkOrderRepository = DocumentRepository[*WorkOrder]
)
