package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gestion-compras/backend/internal/application/intake"
	printingapp "github.com/gestion-compras/backend/internal/application/printing"
	purchasingapp "github.com/gestion-compras/backend/internal/application/purchasing"
	"github.com/gestion-compras/backend/internal/domain/purchasing"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/gestion-compras/backend/internal/infrastructure/cache"
	"github.com/gestion-compras/backend/internal/infrastructure/config"
	"github.com/gestion-compras/backend/internal/infrastructure/persistence"
	"github.com/gestion-compras/backend/internal/infrastructure/storage"
	"github.com/gestion-compras/backend/internal/interfaces/http/dto"
	"github.com/gestion-compras/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MockDocumentPrinter is a mock implementation of DocumentPrinter
type MockDocumentPrinter struct {
	mock.Mock
}

func (m *MockDocumentPrinter) Render(ctx context.Context, kind purchasing.Kind, id uuid.UUID) (*printingapp.PrintResult, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printingapp.PrintResult), args.Error(1)
}

type documentFixture struct {
	db         *gorm.DB
	cache      *cache.MemoryResponseCache
	storageDir string
	printer    *MockDocumentPrinter
	router     *gin.Engine
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	log := zap.NewNop()
	responses := cache.NewMemoryResponseCache(time.Minute, 0)
	t.Cleanup(func() { _ = responses.Close() })

	decrementer, err := intake.NewStockDecrementer(config.DecrementModeAtomic, persistence.NewGormStockStore(db))
	require.NoError(t, err)

	orders := persistence.NewGormOrderRepository(db)
	invoices := persistence.NewGormInvoiceRepository(db)
	workOrders := persistence.NewGormWorkOrderRepository(db)
	intakeService := intake.NewIntakeService(orders, invoices, workOrders,
		intake.NewDecrementLoop(decrementer, persistence.NewGormStockMovementRepository(db), log),
		responses, log)

	storageDir := filepath.Join(t.TempDir(), "facturas")
	files, err := storage.NewLocalAttachmentStorage(storageDir, "/uploads/facturas")
	require.NoError(t, err)
	attachments := purchasingapp.NewAttachmentService(invoices, files, responses, 1<<20, log)

	printer := new(MockDocumentPrinter)
	orderHandler := NewOrderHandler(
		purchasingapp.NewDocumentService[*purchasing.Order](purchasing.KindOrder, orders, responses, log),
		intakeService, printer)
	invoiceHandler := NewInvoiceHandler(
		purchasingapp.NewDocumentService[*purchasing.Invoice](purchasing.KindInvoice, invoices, responses, log,
			purchasingapp.DeleteHook[*purchasing.Invoice](attachments.OnInvoiceDeleted)),
		intakeService, attachments, printer)
	workOrderHandler := NewWorkOrderHandler(
		purchasingapp.NewDocumentService[*purchasing.WorkOrder](purchasing.KindWorkOrder, workOrders, responses, log),
		intakeService, nil)

	router := gin.New()
	o := router.Group("/api/ordenes")
	o.GET("", orderHandler.List)
	o.GET("/:id", orderHandler.GetByID)
	o.GET("/:id/pdf", orderHandler.PDF)
	o.POST("", orderHandler.Create)
	o.PUT("/:id", orderHandler.Update)
	o.DELETE("/:id", orderHandler.Delete)

	f := router.Group("/api/facturas")
	f.GET("/:id", invoiceHandler.GetByID)
	f.POST("", invoiceHandler.Create)
	f.DELETE("/:id", invoiceHandler.Delete)
	f.POST("/:id/archivo", invoiceHandler.UploadFile)
	f.DELETE("/:id/archivo", invoiceHandler.DeleteFile)

	w := router.Group("/api/ordenes-trabajo")
	w.GET("", workOrderHandler.List)
	w.POST("", workOrderHandler.Create)
	w.PUT("/:id", workOrderHandler.Update)
	w.GET("/:id/pdf", workOrderHandler.PDF)

	return &documentFixture{db: db, cache: responses, storageDir: storageDir, printer: printer, router: router}
}

func (f *documentFixture) createInvoice(t *testing.T) purchasing.Invoice {
	t.Helper()

	w := performRequest(f.router, http.MethodPost, "/api/facturas", intake.CreateInvoiceRequest{
		Factura:  &intake.InvoiceHeaderRequest{NumeroFactura: "F-100", Proveedor: "Aceros del Norte"},
		Detalles: []intake.LineItemRequest{{Cantidad: 1, Descripcion: "Lámina", PrecioUnitario: decimalPtr("500")}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var invoice purchasing.Invoice
	decodeData(t, w, &invoice)
	return invoice
}

func (f *documentFixture) upload(t *testing.T, invoiceID uuid.UUID, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("archivo", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/facturas/"+invoiceID.String()+"/archivo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func itemID(id uuid.UUID) *uuid.UUID {
	return &id
}

func TestOrderHandler_Create(t *testing.T) {
	f := newDocumentFixture(t)
	item := testutil.SeedCatalogItem(t, f.db, "A-1", 10)

	listKey := cache.Key(string(purchasing.KindOrder), "/api/ordenes")
	stockKey := cache.Key("inventario", "/api/inventario")
	f.cache.Set(t.Context(), listKey, []byte(`[]`), 0)
	f.cache.Set(t.Context(), stockKey, []byte(`[]`), 0)

	w := performRequest(f.router, http.MethodPost, "/api/ordenes", intake.CreateOrderRequest{
		Orden: &intake.OrderHeaderRequest{NombreCliente: "Taller Norte", FechaOrden: "2024-03-01"},
		Detalles: []intake.LineItemRequest{
			{Cantidad: 3, Descripcion: "Filtro", InventarioID: itemID(item.ID), PrecioUnitario: decimalPtr("100")},
			{Cantidad: 1, Descripcion: "Mano de obra", PrecioUnitario: decimalPtr("250")},
			{Cantidad: 0, Descripcion: "Descartada"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order purchasing.Order
	resp := decodeData(t, w, &order)
	assert.Equal(t, "Orden creada exitosamente", resp.Message)
	assert.NotEqual(t, uuid.Nil, order.ID)
	require.Len(t, order.Detalles, 2)
	assert.Equal(t, purchasing.OrderStatePending, order.Estado)
	assert.True(t, decimal.NewFromInt(550).Equal(order.Subtotal), order.Subtotal.String())

	assert.Equal(t, 7, testutil.StockOf(t, f.db, item.ID))

	_, hit := f.cache.Get(t.Context(), listKey)
	assert.False(t, hit, "order list should be invalidated")
	_, hit = f.cache.Get(t.Context(), stockKey)
	assert.False(t, hit, "inventory should be invalidated")
}

func TestOrderHandler_CreateRejectsIncompleteDocuments(t *testing.T) {
	f := newDocumentFixture(t)

	tests := []struct {
		name string
		body any
	}{
		{name: "missing header", body: `{"detalles":[{"cantidad":1,"descripcion":"x"}]}`},
		{name: "no lines", body: intake.CreateOrderRequest{Orden: &intake.OrderHeaderRequest{}}},
		{name: "only blank lines", body: intake.CreateOrderRequest{
			Orden:    &intake.OrderHeaderRequest{},
			Detalles: []intake.LineItemRequest{{Cantidad: 2, Descripcion: "  "}},
		}},
		{name: "line description too long", body: intake.CreateOrderRequest{
			Orden:    &intake.OrderHeaderRequest{},
			Detalles: []intake.LineItemRequest{{Cantidad: 1, Descripcion: strings.Repeat("x", 1001)}},
		}},
		{name: "negative line price", body: intake.CreateOrderRequest{
			Orden:    &intake.OrderHeaderRequest{},
			Detalles: []intake.LineItemRequest{{Cantidad: 1, Descripcion: "Descuento", PrecioUnitario: decimalPtr("-10")}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(f.router, http.MethodPost, "/api/ordenes", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, shared.CodeValidation, decodeResponse(t, w).Error.Code)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&purchasing.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOrderHandler_CreateWithUnknownCatalogItem(t *testing.T) {
	f := newDocumentFixture(t)

	w := performRequest(f.router, http.MethodPost, "/api/ordenes", intake.CreateOrderRequest{
		Orden: &intake.OrderHeaderRequest{NumeroOrden: "OC-404"},
		Detalles: []intake.LineItemRequest{
			{Cantidad: 1, Descripcion: "Filtro", InventarioID: itemID(uuid.New()), PrecioUnitario: decimalPtr("100")},
		},
	})

	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	assert.Equal(t, shared.CodeNotFound, decodeResponse(t, w).Error.Code)
}

func TestOrderHandler_ReadUpdateDelete(t *testing.T) {
	f := newDocumentFixture(t)

	w := performRequest(f.router, http.MethodPost, "/api/ordenes", intake.CreateOrderRequest{
		Orden:    &intake.OrderHeaderRequest{NumeroOrden: "OC-7"},
		Detalles: []intake.LineItemRequest{{Cantidad: 2, Descripcion: "Tornillo", PrecioUnitario: decimalPtr("5")}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created purchasing.Order
	decodeData(t, w, &created)
	path := "/api/ordenes/" + created.ID.String()

	t.Run("list returns headers", func(t *testing.T) {
		w := performRequest(f.router, http.MethodGet, "/api/ordenes", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var orders []purchasing.Order
		resp := decodeData(t, w, &orders)
		require.Len(t, orders, 1)
		assert.Equal(t, 1, *resp.Count)
		assert.Equal(t, "OC-7", orders[0].NumeroOrden)
	})

	t.Run("get returns lines", func(t *testing.T) {
		w := performRequest(f.router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var order purchasing.Order
		decodeData(t, w, &order)
		require.Len(t, order.Detalles, 1)
		assert.Equal(t, "Tornillo", order.Detalles[0].Descripcion)
	})

	t.Run("update changes header only", func(t *testing.T) {
		w := performRequest(f.router, http.MethodPut, path, map[string]any{"estado": "Completada", "notas": "Entregada"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var order purchasing.Order
		resp := decodeData(t, w, &order)
		assert.Equal(t, "Orden actualizada exitosamente", resp.Message)
		assert.Equal(t, "Completada", order.Estado)
		assert.Equal(t, "Entregada", order.Notas)
	})

	t.Run("update rejects unknown state", func(t *testing.T) {
		w := performRequest(f.router, http.MethodPut, path, map[string]any{"estado": "Perdida"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := performRequest(f.router, http.MethodDelete, path, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Orden eliminada exitosamente", decodeResponse(t, w).Message)

		w = performRequest(f.router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Orden no encontrada", decodeResponse(t, w).Message)
	})
}

func TestOrderHandler_PDF(t *testing.T) {
	f := newDocumentFixture(t)
	id := uuid.New()

	t.Run("sends the rendered file", func(t *testing.T) {
		full := filepath.Join(t.TempDir(), "orden-OC-1.pdf")
		require.NoError(t, os.WriteFile(full, []byte("%PDF-1.4 test"), 0o644))
		f.printer.On("Render", mock.Anything, purchasing.KindOrder, id).
			Return(&printingapp.PrintResult{FullPath: full, Filename: "orden-OC-1.pdf"}, nil).Once()

		w := performRequest(f.router, http.MethodGet, "/api/ordenes/"+id.String()+"/pdf", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "orden-OC-1.pdf")
		assert.Equal(t, "%PDF-1.4 test", w.Body.String())
	})

	t.Run("unknown document", func(t *testing.T) {
		missing := uuid.New()
		f.printer.On("Render", mock.Anything, purchasing.KindOrder, missing).
			Return(nil, shared.NewDomainError(shared.CodeNotFound, "Orden no encontrada")).Once()

		w := performRequest(f.router, http.MethodGet, "/api/ordenes/"+missing.String()+"/pdf", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("printing disabled", func(t *testing.T) {
		w := performRequest(f.router, http.MethodGet, "/api/ordenes-trabajo/"+id.String()+"/pdf", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, dto.ErrCodeRenderFailed, decodeResponse(t, w).Error.Code)
	})

	f.printer.AssertExpectations(t)
}

func TestInvoiceHandler_Attachment(t *testing.T) {
	f := newDocumentFixture(t)
	invoice := f.createInvoice(t)

	t.Run("rejects disallowed type", func(t *testing.T) {
		w := f.upload(t, invoice.ID, "virus.exe", []byte("MZ"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, shared.CodeValidation, decodeResponse(t, w).Error.Code)
	})

	t.Run("rejects missing file", func(t *testing.T) {
		w := performRequest(f.router, http.MethodPost, "/api/facturas/"+invoice.ID.String()+"/archivo", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown invoice", func(t *testing.T) {
		w := f.upload(t, uuid.New(), "factura.pdf", []byte("%PDF"))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Factura no encontrada", decodeResponse(t, w).Message)
	})

	var first purchasing.Invoice
	t.Run("stores the file", func(t *testing.T) {
		w := f.upload(t, invoice.ID, "factura.pdf", []byte("%PDF-1.4"))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		decodeData(t, w, &first)
		assert.NotEmpty(t, first.ArchivoNombre)
		assert.Contains(t, first.ArchivoURL, "/uploads/facturas/")
		assert.FileExists(t, filepath.Join(f.storageDir, first.ArchivoNombre))
	})

	t.Run("replacing deletes the previous file", func(t *testing.T) {
		w := f.upload(t, invoice.ID, "factura.xml", []byte("<cfdi/>"))
		require.Equal(t, http.StatusOK, w.Code)
		var second purchasing.Invoice
		decodeData(t, w, &second)
		assert.NotEqual(t, first.ArchivoNombre, second.ArchivoNombre)
		assert.NoFileExists(t, filepath.Join(f.storageDir, first.ArchivoNombre))
		first = second
	})

	t.Run("remove", func(t *testing.T) {
		w := performRequest(f.router, http.MethodDelete, "/api/facturas/"+invoice.ID.String()+"/archivo", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var cleared purchasing.Invoice
		decodeData(t, w, &cleared)
		assert.Empty(t, cleared.ArchivoNombre)
		assert.NoFileExists(t, filepath.Join(f.storageDir, first.ArchivoNombre))
	})
}

func TestInvoiceHandler_DeleteRemovesAttachment(t *testing.T) {
	f := newDocumentFixture(t)
	invoice := f.createInvoice(t)

	w := f.upload(t, invoice.ID, "factura.png", []byte("\x89PNG"))
	require.Equal(t, http.StatusOK, w.Code)
	var stored purchasing.Invoice
	decodeData(t, w, &stored)

	w = performRequest(f.router, http.MethodDelete, "/api/facturas/"+invoice.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Factura eliminada exitosamente", decodeResponse(t, w).Message)
	assert.NoFileExists(t, filepath.Join(f.storageDir, stored.ArchivoNombre))
}

func TestWorkOrderHandler_CreateAndUpdate(t *testing.T) {
	f := newDocumentFixture(t)
	item := testutil.SeedCatalogItem(t, f.db, "ACE-5W30", 2)

	w := performRequest(f.router, http.MethodPost, "/api/ordenes-trabajo", intake.CreateWorkOrderRequest{
		Orden: &intake.WorkOrderHeaderRequest{NombreCliente: "Luis Pérez", NoPlacas: "ABC-123", Anio: 2019},
		Detalles: []intake.LineItemRequest{
			{Cantidad: 5, Descripcion: "Aceite", InventarioID: itemID(item.ID), PrecioUnitario: decimalPtr("120")},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var wo purchasing.WorkOrder
	resp := decodeData(t, w, &wo)
	assert.Equal(t, "Orden de trabajo creada exitosamente", resp.Message)
	assert.Equal(t, "ABC-123", wo.NoPlacas)
	// intake does not clamp
	assert.Equal(t, -3, testutil.StockOf(t, f.db, item.ID))

	w = performRequest(f.router, http.MethodPut, "/api/ordenes-trabajo/"+wo.ID.String(),
		map[string]any{"fecha_salida": "2024-05-02", "kilometraje": 45000})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated purchasing.WorkOrder
	decodeData(t, w, &updated)
	require.NotNil(t, updated.FechaSalida)
	assert.Equal(t, "2024-05-02", updated.FechaSalida.Format("2006-01-02"))
	assert.Equal(t, 45000, updated.Kilometraje)

	w = performRequest(f.router, http.MethodPut, "/api/ordenes-trabajo/"+wo.ID.String(),
		map[string]any{"fecha_salida": "mañana"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
