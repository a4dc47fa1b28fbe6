package persistence

import (
	"context"
	"errors"

	"github.com/gestion-compras/backend/internal/domain/purchasing"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lines are inserted in batches of this size
const lineBatchSize = 100

// searchColumns lists the header columns matched by the free-text search
var searchColumns = map[purchasing.Kind][]string{
	purchasing.KindOrder:     {"numero_orden", "nombre_cliente", "rfc_cliente"},
	purchasing.KindInvoice:   {"numero_factura", "nombre_documento", "proveedor"},
	purchasing.KindWorkOrder: {"nombre_cliente", "no_placas", "marca", "modelo"},
}

// GormDocumentRepository persists one document kind (header table plus its
// line table) using GORM.
type GormDocumentRepository[T purchasing.Document] struct {
	db     *gorm.DB
	kind   purchasing.Kind
	newDoc func() T
}

// NewGormOrderRepository creates the repository for purchase orders
func NewGormOrderRepository(db *gorm.DB) *GormDocumentRepository[*purchasing.Order] {
	return &GormDocumentRepository[*purchasing.Order]{
		db:     db,
		kind:   purchasing.KindOrder,
		newDoc: func() *purchasing.Order { return &purchasing.Order{} },
	}
}

// NewGormInvoiceRepository creates the repository for invoices
func NewGormInvoiceRepository(db *gorm.DB) *GormDocumentRepository[*purchasing.Invoice] {
	return &GormDocumentRepository[*purchasing.Invoice]{
		db:     db,
		kind:   purchasing.KindInvoice,
		newDoc: func() *purchasing.Invoice { return &purchasing.Invoice{} },
	}
}

// NewGormWorkOrderRepository creates the repository for work orders
func NewGormWorkOrderRepository(db *gorm.DB) *GormDocumentRepository[*purchasing.WorkOrder] {
	return &GormDocumentRepository[*purchasing.WorkOrder]{
		db:     db,
		kind:   purchasing.KindWorkOrder,
		newDoc: func() *purchasing.WorkOrder { return &purchasing.WorkOrder{} },
	}
}

// CreateWithLines inserts the header and its lines in one transaction. If any
// line fails to insert the header is rolled back too. A reference to a
// missing supplier or catalog item is reported as not found.
func (r *GormDocumentRepository[T]) CreateWithLines(ctx context.Context, doc T) error {
	lines := purchasing.StampLines(doc)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return shared.NewNotFoundError("supplier")
			}
			return shared.NewPersistenceError("create "+string(r.kind), err)
		}
		if len(lines) == 0 {
			return nil
		}
		if err := tx.Table(r.kind.LinesTable()).CreateInBatches(&lines, lineBatchSize).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return shared.NewNotFoundError("catalog item")
			}
			return shared.NewPersistenceError("create "+r.kind.LinesTable(), err)
		}
		return nil
	})
}

// FindByID loads the header and its lines in creation order
func (r *GormDocumentRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T
	doc := r.newDoc()
	if err := r.db.WithContext(ctx).First(doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, shared.ErrNotFound
		}
		return zero, shared.NewPersistenceError("load "+string(r.kind), err)
	}

	lines, err := r.findLines(ctx, id)
	if err != nil {
		return zero, err
	}
	doc.SetLines(lines)
	return doc, nil
}

func (r *GormDocumentRepository[T]) findLines(ctx context.Context, documentID uuid.UUID) ([]purchasing.LineItem, error) {
	lines := make([]purchasing.LineItem, 0)
	err := r.db.WithContext(ctx).
		Table(r.kind.LinesTable()).
		Where("documento_id = ?", documentID).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, shared.NewPersistenceError("load "+r.kind.LinesTable(), err)
	}
	return lines, nil
}

// FindAll lists headers newest first, without their lines
func (r *GormDocumentRepository[T]) FindAll(ctx context.Context, filter shared.Filter) ([]T, error) {
	query := r.db.WithContext(ctx).Model(r.newDoc())
	query = applySearch(query, filter.Search, searchColumns[r.kind]...)

	for key, value := range filter.Filters {
		switch key {
		case "estado":
			query = query.Where("estado = ?", value)
		case "proveedor_id":
			if r.kind != purchasing.KindWorkOrder {
				query = query.Where("proveedor_id = ?", value)
			}
		}
	}

	query = applyOrder(query, filter, DocumentSortFields, "created_at", "DESC")
	query = applyPagination(query, filter)

	docs := make([]T, 0)
	if err := query.Find(&docs).Error; err != nil {
		return nil, shared.NewPersistenceError("list "+string(r.kind), err)
	}
	return docs, nil
}

// UpdateHeader writes every header column except the creation timestamp
func (r *GormDocumentRepository[T]) UpdateHeader(ctx context.Context, doc T) error {
	result := r.db.WithContext(ctx).
		Model(doc).
		Select("*").
		Omit("id", "created_at").
		Updates(doc)
	if result.Error != nil {
		return shared.NewPersistenceError("update "+string(r.kind), result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the header and its lines
func (r *GormDocumentRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Table(r.kind.LinesTable()).
			Where("documento_id = ?", id).
			Delete(&purchasing.LineItem{}).Error
		if err != nil {
			return shared.NewPersistenceError("delete "+r.kind.LinesTable(), err)
		}

		result := tx.Delete(r.newDoc(), "id = ?", id)
		if result.Error != nil {
			return shared.NewPersistenceError("delete "+string(r.kind), result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Ensure the document repositories implement their domain interfaces
var (
	_ purchasing.OrderRepository     = (*GormDocumentRepository[*purchasing.Order])(nil)
	_ purchasing.InvoiceRepository   = (*GormDocumentRepository[*purchasing.Invoice])(nil)
	_ purchasing.WorkOrderRepository = (*GormDocumentRepository[*purchasing.WorkOrder])(nil)
)
