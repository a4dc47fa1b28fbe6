// Package intake creates orders, invoices and work orders together with
// their line items, then decrements the stock of every referenced catalog
// item and drops the cached responses the write made stale.
package intake

import (
	"context"
	"strings"

	"github.com/gestion-compras/backend/internal/domain/inventory"
	"github.com/gestion-compras/backend/internal/domain/purchasing"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/gestion-compras/backend/internal/infrastructure/logger"
	"github.com/gestion-compras/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// InventoryResource is the cache partition of catalog responses
const InventoryResource = "inventario"

// CacheInvalidator drops cached responses of a resource
type CacheInvalidator interface {
	InvalidateResource(ctx context.Context, resource string) int
}

// Metrics receives intake counters
type Metrics interface {
	RecordDocumentCreated(ctx context.Context, kind string, lines int)
	RecordStockDecrements(ctx context.Context, kind, mode string, applied, skipped, failed int)
}

type noopMetrics struct{}

func (noopMetrics) RecordDocumentCreated(context.Context, string, int) {}

func (noopMetrics) RecordStockDecrements(context.Context, string, string, int, int, int) {}

// Option configures an IntakeService
type Option func(*IntakeService)

// WithMetrics sets the metrics sink
func WithMetrics(m Metrics) Option {
	return func(s *IntakeService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithCatalog lets intake fill blank line descriptions from the catalog
func WithCatalog(catalog inventory.CatalogItemRepository) Option {
	return func(s *IntakeService) {
		s.catalog = catalog
	}
}

// IntakeService creates documents with their lines
type IntakeService struct {
	orders     purchasing.OrderRepository
	invoices   purchasing.InvoiceRepository
	workOrders purchasing.WorkOrderRepository
	catalog    inventory.CatalogItemRepository
	loop       *DecrementLoop
	cache      CacheInvalidator
	metrics    Metrics
	logger     *zap.Logger
}

// NewIntakeService creates a new intake service
func NewIntakeService(
	orders purchasing.OrderRepository,
	invoices purchasing.InvoiceRepository,
	workOrders purchasing.WorkOrderRepository,
	loop *DecrementLoop,
	cache CacheInvalidator,
	logger *zap.Logger,
	opts ...Option,
) *IntakeService {
	s := &IntakeService{
		orders:     orders,
		invoices:   invoices,
		workOrders: workOrders,
		loop:       loop,
		cache:      cache,
		metrics:    noopMetrics{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder creates a purchase order with its lines
func (s *IntakeService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*purchasing.Order, error) {
	if req.Orden == nil {
		return nil, errIncomplete
	}
	order, err := req.Orden.ToOrder()
	if err != nil {
		return nil, err
	}
	return createDocument(ctx, s, s.orders, order, toLineItems(req.Detalles))
}

// CreateInvoice creates an invoice with its lines
func (s *IntakeService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*purchasing.Invoice, error) {
	if req.Factura == nil {
		return nil, errIncomplete
	}
	invoice, err := req.Factura.ToInvoice()
	if err != nil {
		return nil, err
	}
	return createDocument(ctx, s, s.invoices, invoice, toLineItems(req.Detalles))
}

// CreateWorkOrder creates a work order with its lines
func (s *IntakeService) CreateWorkOrder(ctx context.Context, req CreateWorkOrderRequest) (*purchasing.WorkOrder, error) {
	if req.Orden == nil {
		return nil, errIncomplete
	}
	wo, err := req.Orden.ToWorkOrder()
	if err != nil {
		return nil, err
	}
	return createDocument(ctx, s, s.workOrders, wo, toLineItems(req.Detalles))
}

var errIncomplete = shared.NewValidationError("Datos incompletos. Se requiere información de la orden y al menos un detalle")

// createDocument runs the intake steps shared by all document kinds:
// filter lines, persist header and lines atomically, decrement stock in
// submission order, then invalidate the affected cache partitions.
func createDocument[T purchasing.Document](
	ctx context.Context,
	s *IntakeService,
	repo purchasing.DocumentRepository[T],
	doc T,
	submitted []purchasing.LineItem,
) (T, error) {
	var zero T
	kind := doc.Kind()
	ctx, span := telemetry.StartServiceSpan(ctx, "intake", "create_document",
		telemetry.AttrDocumentKind.String(string(kind)))
	defer span.End()
	log := logger.Enrich(ctx, s.logger).With(zap.String("document_kind", string(kind)))

	s.describeFromCatalog(ctx, submitted)
	lines := purchasing.FilterLines(submitted)
	if len(lines) == 0 {
		return zero, errIncomplete
	}

	if err := purchasing.ValidateLines(lines); err != nil {
		return zero, err
	}

	doc.SetLines(lines)
	doc.ApplyDefaults()

	totals := doc.DocumentTotals()
	if !totals.Reconcile(lines) {
		log.Warn("Submitted subtotal does not match line amounts",
			zap.String("subtotal", totals.Subtotal.String()),
			zap.String("lines_total", purchasing.SumLines(lines).String()))
	}
	// derived totals included
	if err := totals.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return zero, err
	}

	if err := repo.CreateWithLines(ctx, doc); err != nil {
		log.Error("Failed to create document", zap.Error(err))
		telemetry.RecordError(span, err)
		return zero, err
	}

	report := s.loop.Run(ctx, kind, doc.GetID(), doc.Lines())
	span.SetAttributes(
		attribute.String("document_id", doc.GetID().String()),
		attribute.Int("decrements_applied", report.Applied),
		attribute.Int("decrements_skipped", report.Skipped),
		attribute.Int("decrements_failed", report.Failed),
	)

	s.metrics.RecordDocumentCreated(ctx, string(kind), len(lines))
	s.metrics.RecordStockDecrements(ctx, string(kind), s.loop.Mode(), report.Applied, report.Skipped, report.Failed)

	removed := s.cache.InvalidateResource(ctx, string(kind))
	removed += s.cache.InvalidateResource(ctx, InventoryResource)

	fields := []zap.Field{
		zap.String("document_id", doc.GetID().String()),
		zap.Int("lines", len(lines)),
		zap.Int("decrements_applied", report.Applied),
		zap.Int("decrements_skipped", report.Skipped),
		zap.Int("decrements_failed", report.Failed),
		zap.Int("cache_keys_removed", removed),
	}
	if report.Failed > 0 {
		log.Warn("Document created with stock decrement failures", fields...)
	} else {
		log.Info("Document created", fields...)
	}

	return doc, nil
}

// describeFromCatalog fills a blank description on a catalog line with the
// item name, so the line is not dropped as blank.
func (s *IntakeService) describeFromCatalog(ctx context.Context, lines []purchasing.LineItem) {
	if s.catalog == nil {
		return
	}
	for i := range lines {
		line := &lines[i]
		if !line.ReferencesCatalog() || strings.TrimSpace(line.Descripcion) != "" || line.Cantidad <= 0 {
			continue
		}
		item, err := s.catalog.FindByID(ctx, *line.InventarioID)
		if err != nil {
			s.logger.Debug("Catalog lookup for blank line failed",
				zap.String("inventario_id", line.InventarioID.String()),
				zap.Error(err))
			continue
		}
		line.Descripcion = item.Nombre
	}
}
