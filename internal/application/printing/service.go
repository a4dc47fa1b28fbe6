// Package printing renders purchasing documents to PDF.
package printing

import (
	"context"
	"fmt"
	"time"

	"github.com/gestion-compras/backend/internal/domain/partner"
	"github.com/gestion-compras/backend/internal/domain/purchasing"
	"github.com/gestion-compras/backend/internal/domain/shared"
	infra "github.com/gestion-compras/backend/internal/infrastructure/printing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TemplateRenderer turns a view model into HTML
type TemplateRenderer interface {
	Render(ctx context.Context, name string, data any) (string, error)
}

// PrintResult describes a generated PDF
type PrintResult struct {
	Path     string
	FullPath string
	Filename string
	Size     int64
	Pages    int
}

// DocumentPrintService renders orders, invoices and work orders to PDF
type DocumentPrintService struct {
	orders     purchasing.OrderRepository
	invoices   purchasing.InvoiceRepository
	workOrders purchasing.WorkOrderRepository
	suppliers  partner.SupplierRepository
	templates  TemplateRenderer
	renderer   infra.PDFRenderer
	storage    infra.PDFStorage
	company    string
	paperSize  infra.PaperSize
	logger     *zap.Logger
	now        func() time.Time
}

// NewDocumentPrintService creates a new DocumentPrintService
func NewDocumentPrintService(
	orders purchasing.OrderRepository,
	invoices purchasing.InvoiceRepository,
	workOrders purchasing.WorkOrderRepository,
	suppliers partner.SupplierRepository,
	templates TemplateRenderer,
	renderer infra.PDFRenderer,
	storage infra.PDFStorage,
	company string,
	logger *zap.Logger,
) *DocumentPrintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentPrintService{
		orders:     orders,
		invoices:   invoices,
		workOrders: workOrders,
		suppliers:  suppliers,
		templates:  templates,
		renderer:   renderer,
		storage:    storage,
		company:    company,
		paperSize:  infra.PaperSizeLetter,
		logger:     logger,
		now:        time.Now,
	}
}

// Render generates the PDF of one document and stores it. Rendering the same
// document again replaces the earlier file.
func (s *DocumentPrintService) Render(ctx context.Context, kind purchasing.Kind, id uuid.UUID) (*PrintResult, error) {
	doc, data, err := s.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	data.Company = s.company
	data.PrintedAt = s.now()

	html, err := s.templates.Render(ctx, infra.DocumentTemplate, data)
	if err != nil {
		s.logger.Error("Template rendering failed", zap.Error(err), zap.String("document_id", id.String()))
		return nil, fmt.Errorf("failed to render template: %w", err)
	}

	pdf, err := s.renderer.Render(ctx, &infra.RenderRequest{
		HTML:       html,
		PaperSize:  s.paperSize,
		Margins:    infra.DefaultMargins(),
		Title:      fmt.Sprintf("%s %s", data.Title, data.Number),
		FooterHTML: pageFooter,
	})
	if err != nil {
		s.logger.Error("PDF rendering failed", zap.Error(err), zap.String("document_id", id.String()))
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	stored, err := s.storage.Store(ctx, &infra.StoreRequest{
		Kind:       string(kind),
		DocumentID: id,
		CreatedAt:  doc.GetCreatedAt(),
		PDFData:    pdf.PDFData,
	})
	if err != nil {
		s.logger.Error("PDF storage failed", zap.Error(err), zap.String("document_id", id.String()))
		return nil, fmt.Errorf("failed to store PDF: %w", err)
	}

	s.logger.Info("PDF generated",
		zap.String("document_kind", string(kind)),
		zap.String("document_id", id.String()),
		zap.String("path", stored.Path),
		zap.Int("pages", pdf.PageCount))

	return &PrintResult{
		Path:     stored.Path,
		FullPath: stored.FullPath,
		Filename: filename(kind, data.Number, id),
		Size:     stored.Size,
		Pages:    pdf.PageCount,
	}, nil
}

const pageFooter = `<div style="font-size:8px;width:100%;text-align:right;padding-right:10mm;">` +
	`Página <span class="pageNumber"></span> de <span class="totalPages"></span></div>`

// load fetches the document and builds its view model
func (s *DocumentPrintService) load(ctx context.Context, kind purchasing.Kind, id uuid.UUID) (purchasing.Document, *infra.DocumentData, error) {
	switch kind {
	case purchasing.KindOrder:
		order, err := s.orders.FindByID(ctx, id)
		if err != nil {
			return nil, nil, notFound(kind, err)
		}
		return order, s.orderData(ctx, order), nil
	case purchasing.KindInvoice:
		invoice, err := s.invoices.FindByID(ctx, id)
		if err != nil {
			return nil, nil, notFound(kind, err)
		}
		return invoice, invoiceData(invoice), nil
	case purchasing.KindWorkOrder:
		workOrder, err := s.workOrders.FindByID(ctx, id)
		if err != nil {
			return nil, nil, notFound(kind, err)
		}
		return workOrder, workOrderData(workOrder), nil
	default:
		return nil, nil, shared.NewValidationError("tipo de documento desconocido: %s", kind)
	}
}

func notFound(kind purchasing.Kind, err error) error {
	if shared.IsNotFound(err) {
		return shared.NewDomainError(shared.CodeNotFound, kind.Label()+" no encontrada")
	}
	return err
}

// filename is the download name offered to the browser
func filename(kind purchasing.Kind, number string, id uuid.UUID) string {
	if number == "" {
		number = id.String()[:8]
	}
	return fmt.Sprintf("%s-%s.pdf", kind, number)
}
