package purchasing

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/gestion-compras/backend/internal/domain/purchasing"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/gestion-compras/backend/internal/infrastructure/persistence"
	"github.com/gestion-compras/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MockAttachmentStorage is a mock implementation of AttachmentStorage
type MockAttachmentStorage struct {
	mock.Mock
}

func (m *MockAttachmentStorage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	return m.Called(ctx, key, contentType, body, size).Error(0)
}

func (m *MockAttachmentStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockAttachmentStorage) URL(key string) string {
	return "/uploads/facturas/" + key
}

type attachmentFixture struct {
	svc         *AttachmentService
	invoices    *InvoiceService
	db          *gorm.DB
	storage     *MockAttachmentStorage
	invalidator *MockCacheInvalidator
	clock       time.Time
}

func newAttachmentFixture(t *testing.T) *attachmentFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	repo := persistence.NewGormInvoiceRepository(db)
	f := &attachmentFixture{
		db:          db,
		storage:     new(MockAttachmentStorage),
		invalidator: newInvalidator(string(purchasing.KindInvoice)),
		clock:       time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewAttachmentService(repo, f.storage, f.invalidator, 0, zap.NewNop())
	f.svc.now = func() time.Time {
		f.clock = f.clock.Add(time.Second)
		return f.clock
	}
	f.invoices = NewDocumentService[*purchasing.Invoice](
		purchasing.KindInvoice, repo, f.invalidator, zap.NewNop(), f.svc.OnInvoiceDeleted,
	)
	return f
}

func (f *attachmentFixture) seedInvoice(t *testing.T) *purchasing.Invoice {
	t.Helper()
	invoice := purchasing.NewInvoice()
	invoice.NumeroFactura = "A-1203"
	invoice.ApplyDefaults()
	require.NoError(t, persistence.NewGormInvoiceRepository(f.db).CreateWithLines(context.Background(), invoice))
	return invoice
}

func upload(id uuid.UUID, filename, content string) UploadInput {
	return UploadInput{
		InvoiceID: id,
		Filename:  filename,
		Size:      int64(len(content)),
		Body:      strings.NewReader(content),
	}
}

func TestAttachmentService_ValidateUpload(t *testing.T) {
	svc := NewAttachmentService(nil, nil, nil, 1<<20, zap.NewNop())

	tests := []struct {
		name        string
		filename    string
		size        int64
		contentType string
		wantErr     bool
	}{
		{"pdf", "factura.pdf", 100, "application/pdf", false},
		{"upper case jpg", "FOTO.JPG", 100, "image/jpeg", false},
		{"jpeg", "scan.jpeg", 100, "image/jpeg", false},
		{"png", "scan.png", 100, "image/png", false},
		{"cfdi xml", "cfdi.xml", 100, "application/xml", false},
		{"executable", "virus.exe", 100, "", true},
		{"no extension", "factura", 100, "", true},
		{"empty", "factura.pdf", 0, "", true},
		{"too large", "factura.pdf", 2 << 20, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, contentType, err := svc.ValidateUpload(tt.filename, tt.size)
			if tt.wantErr {
				assert.True(t, shared.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.contentType, contentType)
		})
	}
}

func TestAttachmentService_DefaultMaxSize(t *testing.T) {
	svc := NewAttachmentService(nil, nil, nil, 0, zap.NewNop())
	assert.Equal(t, DefaultMaxAttachmentSize, svc.MaxSize())
}

func TestAttachmentService_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the file under a generated key", func(t *testing.T) {
		f := newAttachmentFixture(t)
		invoice := f.seedInvoice(t)
		f.storage.On("Put", mock.Anything, mock.Anything, "application/pdf", mock.Anything, int64(4)).Return(nil)

		updated, err := f.svc.Upload(ctx, upload(invoice.ID, "A-1203.PDF", "%PDF"))

		require.NoError(t, err)
		assert.Regexp(t, `^factura-\d+\.pdf$`, updated.ArchivoNombre)
		assert.Equal(t, "/uploads/facturas/"+updated.ArchivoNombre, updated.ArchivoURL)
		f.invalidator.AssertNumberOfCalls(t, "InvalidateResource", 1)

		reloaded, err := f.invoices.GetByID(ctx, invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, updated.ArchivoNombre, reloaded.ArchivoNombre)
		f.storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("replacing deletes the previous file", func(t *testing.T) {
		f := newAttachmentFixture(t)
		invoice := f.seedInvoice(t)
		f.storage.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		first, err := f.svc.Upload(ctx, upload(invoice.ID, "a.pdf", "one"))
		require.NoError(t, err)
		firstKey := first.ArchivoNombre

		f.storage.On("Delete", mock.Anything, firstKey).Return(nil).Once()
		second, err := f.svc.Upload(ctx, upload(invoice.ID, "b.xml", "<cfdi/>"))

		require.NoError(t, err)
		assert.NotEqual(t, firstKey, second.ArchivoNombre)
		assert.True(t, strings.HasSuffix(second.ArchivoNombre, ".xml"))
		f.storage.AssertCalled(t, "Delete", mock.Anything, firstKey)
	})

	t.Run("a failed delete of the previous file is tolerated", func(t *testing.T) {
		f := newAttachmentFixture(t)
		invoice := f.seedInvoice(t)
		invoice.AttachFile("factura-1.pdf", "/uploads/facturas/factura-1.pdf")
		require.NoError(t, persistence.NewGormInvoiceRepository(f.db).UpdateHeader(ctx, invoice))

		f.storage.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.storage.On("Delete", mock.Anything, "factura-1.pdf").Return(errors.New("gone"))

		updated, err := f.svc.Upload(ctx, upload(invoice.ID, "c.png", "png"))

		require.NoError(t, err)
		assert.NotEqual(t, "factura-1.pdf", updated.ArchivoNombre)
	})

	t.Run("rejects a disallowed type before touching storage", func(t *testing.T) {
		f := newAttachmentFixture(t)
		invoice := f.seedInvoice(t)

		_, err := f.svc.Upload(ctx, upload(invoice.ID, "macro.docm", "x"))

		assert.True(t, shared.IsValidation(err))
		f.storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown invoice", func(t *testing.T) {
		f := newAttachmentFixture(t)

		_, err := f.svc.Upload(ctx, upload(uuid.New(), "a.pdf", "x"))

		assert.True(t, shared.IsNotFound(err))
		assert.Contains(t, err.Error(), "Factura no encontrada")
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newAttachmentFixture(t)
		invoice := f.seedInvoice(t)
		f.storage.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))

		_, err := f.svc.Upload(ctx, upload(invoice.ID, "a.pdf", "x"))

		assert.True(t, shared.IsPersistence(err))
		f.invalidator.AssertNotCalled(t, "InvalidateResource", mock.Anything, mock.Anything)
	})
}

func TestAttachmentService_RemoveAndDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("remove clears the attachment", func(t *testing.T) {
		f := newAttachmentFixture(t)
		invoice := f.seedInvoice(t)
		f.storage.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.storage.On("Delete", mock.Anything, mock.Anything).Return(nil)

		uploaded, err := f.svc.Upload(ctx, upload(invoice.ID, "a.pdf", "x"))
		require.NoError(t, err)

		removed, err := f.svc.Remove(ctx, invoice.ID)

		require.NoError(t, err)
		assert.False(t, removed.HasAttachment())
		assert.Empty(t, removed.ArchivoURL)
		f.storage.AssertCalled(t, "Delete", mock.Anything, uploaded.ArchivoNombre)
	})

	t.Run("remove without attachment is a no-op", func(t *testing.T) {
		f := newAttachmentFixture(t)
		invoice := f.seedInvoice(t)

		_, err := f.svc.Remove(ctx, invoice.ID)

		require.NoError(t, err)
		f.storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("deleting the invoice deletes its file", func(t *testing.T) {
		f := newAttachmentFixture(t)
		invoice := f.seedInvoice(t)
		f.storage.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.storage.On("Delete", mock.Anything, mock.Anything).Return(nil)

		uploaded, err := f.svc.Upload(ctx, upload(invoice.ID, "a.pdf", "x"))
		require.NoError(t, err)

		require.NoError(t, f.invoices.Delete(ctx, invoice.ID))
		f.storage.AssertCalled(t, "Delete", mock.Anything, uploaded.ArchivoNombre)
	})
}
