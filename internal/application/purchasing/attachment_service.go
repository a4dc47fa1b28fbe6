package purchasing

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gestion-compras/backend/internal/domain/purchasing"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxAttachmentSize is the upload limit when none is configured
const DefaultMaxAttachmentSize int64 = 10 << 20

// AllowedAttachmentTypes maps accepted file extensions to the content type
// they are stored with
var AllowedAttachmentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".xml":  "application/xml",
}

// AttachmentStorage stores invoice files.
// This interface is implemented by the infrastructure layer (local disk, S3).
type AttachmentStorage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// UploadInput describes one uploaded file
type UploadInput struct {
	InvoiceID uuid.UUID
	Filename  string
	Size      int64
	Body      io.Reader
}

// AttachmentService manages the file attached to an invoice
type AttachmentService struct {
	invoices purchasing.InvoiceRepository
	storage  AttachmentStorage
	cache    CacheInvalidator
	maxSize  int64
	logger   *zap.Logger
	now      func() time.Time
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(
	invoices purchasing.InvoiceRepository,
	storage AttachmentStorage,
	cache CacheInvalidator,
	maxSize int64,
	logger *zap.Logger,
) *AttachmentService {
	if maxSize <= 0 {
		maxSize = DefaultMaxAttachmentSize
	}
	return &AttachmentService{
		invoices: invoices,
		storage:  storage,
		cache:    cache,
		maxSize:  maxSize,
		logger:   logger,
		now:      time.Now,
	}
}

// MaxSize returns the upload size limit in bytes
func (s *AttachmentService) MaxSize() int64 {
	return s.maxSize
}

// ValidateUpload checks the file extension and size
func (s *AttachmentService) ValidateUpload(filename string, size int64) (ext, contentType string, err error) {
	ext = strings.ToLower(filepath.Ext(filename))
	contentType, ok := AllowedAttachmentTypes[ext]
	if !ok {
		return "", "", shared.NewValidationError("Tipo de archivo no permitido. Solo PDF, JPG, PNG y XML")
	}
	if size <= 0 {
		return "", "", shared.NewValidationError("El archivo está vacío")
	}
	if size > s.maxSize {
		return "", "", shared.NewValidationError("El archivo excede el tamaño máximo de %d MB", s.maxSize>>20)
	}
	return ext, contentType, nil
}

// Upload stores a file for the invoice, replacing and deleting any previous one
func (s *AttachmentService) Upload(ctx context.Context, input UploadInput) (*purchasing.Invoice, error) {
	ext, contentType, err := s.ValidateUpload(input.Filename, input.Size)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoices.FindByID(ctx, input.InvoiceID)
	if err != nil {
		return nil, invoiceNotFound(err)
	}

	key := fmt.Sprintf("factura-%d%s", s.now().UnixNano(), ext)
	if err := s.storage.Put(ctx, key, contentType, input.Body, input.Size); err != nil {
		s.logger.Error("Failed to store invoice attachment", zap.String("key", key), zap.Error(err))
		return nil, shared.NewPersistenceError("store attachment", err)
	}

	previous := invoice.AttachFile(key, s.storage.URL(key))
	if err := s.invoices.UpdateHeader(ctx, invoice); err != nil {
		s.deleteFile(ctx, key)
		return nil, err
	}
	if previous != "" && previous != key {
		s.deleteFile(ctx, previous)
	}
	s.cache.InvalidateResource(ctx, string(purchasing.KindInvoice))

	s.logger.Info("Invoice attachment stored",
		zap.String("factura_id", invoice.ID.String()),
		zap.String("key", key),
		zap.String("replaced", previous))

	return invoice, nil
}

// Remove deletes the invoice's attachment, if any
func (s *AttachmentService) Remove(ctx context.Context, invoiceID uuid.UUID) (*purchasing.Invoice, error) {
	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, invoiceNotFound(err)
	}
	if !invoice.HasAttachment() {
		return invoice, nil
	}

	previous := invoice.AttachFile("", "")
	if err := s.invoices.UpdateHeader(ctx, invoice); err != nil {
		return nil, err
	}
	s.deleteFile(ctx, previous)
	s.cache.InvalidateResource(ctx, string(purchasing.KindInvoice))

	return invoice, nil
}

// OnInvoiceDeleted removes the file of a deleted invoice. It is registered
// as a delete hook of the invoice service.
func (s *AttachmentService) OnInvoiceDeleted(ctx context.Context, invoice *purchasing.Invoice) {
	if invoice.HasAttachment() {
		s.deleteFile(ctx, invoice.ArchivoNombre)
	}
}

// deleteFile removes a stored file; failures are logged only
func (s *AttachmentService) deleteFile(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to delete invoice attachment", zap.String("key", key), zap.Error(err))
	}
}

func invoiceNotFound(err error) error {
	if shared.IsNotFound(err) {
		return shared.NewDomainError(shared.CodeNotFound, "Factura no encontrada")
	}
	return err
}
