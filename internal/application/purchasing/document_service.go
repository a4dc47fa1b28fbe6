// Package purchasing serves the read, header-update and delete operations of
// orders, invoices and work orders, plus invoice attachments.
package purchasing

import (
	"context"

	"github.com/gestion-compras/backend/internal/domain/purchasing"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CacheInvalidator drops cached responses of a resource
type CacheInvalidator interface {
	InvalidateResource(ctx context.Context, resource string) int
}

// DeleteHook runs after a document has been deleted
type DeleteHook[T purchasing.Document] func(ctx context.Context, doc T)

// DocumentService handles one document kind
type DocumentService[T purchasing.Document] struct {
	kind        purchasing.Kind
	repo        purchasing.DocumentRepository[T]
	cache       CacheInvalidator
	logger      *zap.Logger
	afterDelete []DeleteHook[T]
}

// Services for the three document kinds
type (
	OrderService     = DocumentService[*purchasing.Order]
	InvoiceService   = DocumentService[*purchasing.Invoice]
	WorkOrderService = DocumentService[*purchasing.WorkOrder]
)

// NewDocumentService creates a document service for kind
func NewDocumentService[T purchasing.Document](
	kind purchasing.Kind,
	repo purchasing.DocumentRepository[T],
	cache CacheInvalidator,
	logger *zap.Logger,
	afterDelete ...DeleteHook[T],
) *DocumentService[T] {
	return &DocumentService[T]{
		kind:        kind,
		repo:        repo,
		cache:       cache,
		logger:      logger.With(zap.String("document_kind", string(kind))),
		afterDelete: afterDelete,
	}
}

// Kind returns the document kind served
func (s *DocumentService[T]) Kind() purchasing.Kind {
	return s.kind
}

// GetByID returns the header with its lines
func (s *DocumentService[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		var zero T
		return zero, s.notFound(err)
	}
	return doc, nil
}

// List returns headers without lines, newest first by default
func (s *DocumentService[T]) List(ctx context.Context, filter DocumentListFilter) ([]T, error) {
	return s.repo.FindAll(ctx, filter.toFilter())
}

// Update applies patch to the header. Lines are never changed.
func (s *DocumentService[T]) Update(ctx context.Context, id uuid.UUID, patch HeaderPatch[T]) (T, error) {
	var zero T
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return zero, s.notFound(err)
	}

	if err := patch.Apply(doc); err != nil {
		return zero, err
	}
	doc.ApplyDefaults()

	if err := s.repo.UpdateHeader(ctx, doc); err != nil {
		return zero, s.notFound(err)
	}
	s.cache.InvalidateResource(ctx, string(s.kind))

	s.logger.Info("Document updated", zap.String("document_id", id.String()))
	return doc, nil
}

// Delete removes the header and its lines. Stock consumed at intake is
// not restored.
func (s *DocumentService[T]) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.notFound(err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.notFound(err)
	}
	s.cache.InvalidateResource(ctx, string(s.kind))

	for _, hook := range s.afterDelete {
		hook(ctx, doc)
	}

	s.logger.Info("Document deleted", zap.String("document_id", id.String()))
	return nil
}

func (s *DocumentService[T]) notFound(err error) error {
	if shared.IsNotFound(err) {
		return shared.NewDomainError(shared.CodeNotFound, s.kind.Label()+" no encontrada")
	}
	return err
}
