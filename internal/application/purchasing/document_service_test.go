package purchasing

import (
	"context"
	"testing"

	"github.com/gestion-compras/backend/internal/domain/purchasing"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/gestion-compras/backend/internal/infrastructure/persistence"
	"github.com/gestion-compras/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MockCacheInvalidator is a mock implementation of CacheInvalidator
type MockCacheInvalidator struct {
	mock.Mock
}

func (m *MockCacheInvalidator) InvalidateResource(ctx context.Context, resource string) int {
	args := m.Called(ctx, resource)
	return args.Int(0)
}

func newInvalidator(resource string) *MockCacheInvalidator {
	m := new(MockCacheInvalidator)
	m.On("InvalidateResource", mock.Anything, resource).Return(0)
	return m
}

func seedOrder(t *testing.T, db *gorm.DB, numero string, lines ...purchasing.LineItem) *purchasing.Order {
	t.Helper()
	order := purchasing.NewOrder()
	order.NumeroOrden = numero
	order.NombreCliente = "Taller Hernández"
	order.SetLines(lines)
	order.ApplyDefaults()
	require.NoError(t, persistence.NewGormOrderRepository(db).CreateWithLines(context.Background(), order))
	return order
}

func newOrderService(t *testing.T, hooks ...DeleteHook[*purchasing.Order]) (*OrderService, *gorm.DB, *MockCacheInvalidator) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	invalidator := newInvalidator(string(purchasing.KindOrder))
	svc := NewDocumentService[*purchasing.Order](
		purchasing.KindOrder,
		persistence.NewGormOrderRepository(db),
		invalidator,
		zap.NewNop(),
		hooks...,
	)
	return svc, db, invalidator
}

func TestDocumentService_GetByID(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newOrderService(t)
	order := seedOrder(t, db, "OC-100",
		testutil.ManualLine("Flete", 1),
		testutil.ManualLine("Maniobras", 2),
	)

	got, err := svc.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "OC-100", got.NumeroOrden)
	require.Len(t, got.Detalles, 2)

	_, err = svc.GetByID(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
	assert.Contains(t, err.Error(), "Orden no encontrada")
}

func TestDocumentService_List(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newOrderService(t)
	seedOrder(t, db, "OC-1")
	done := seedOrder(t, db, "OC-2")
	done.Estado = purchasing.OrderStateCompleted
	require.NoError(t, persistence.NewGormOrderRepository(db).UpdateHeader(ctx, done))

	all, err := svc.List(ctx, DocumentListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	completed, err := svc.List(ctx, DocumentListFilter{Estado: purchasing.OrderStateCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, done.ID, completed[0].ID)

	found, err := svc.List(ctx, DocumentListFilter{Buscar: "oc-1"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "OC-1", found[0].NumeroOrden)
}

func TestDocumentService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("patches header fields and keeps lines", func(t *testing.T) {
		svc, db, invalidator := newOrderService(t)
		order := seedOrder(t, db, "OC-10", testutil.ManualLine("Flete", 1))
		total := decimal.NewFromInt(580)

		updated, err := svc.Update(ctx, order.ID, UpdateOrderRequest{
			TotalsPatch:  TotalsPatch{Total: &total},
			RFCCliente:   strPtr(" xaxx010101000 "),
			Estado:       strPtr(purchasing.OrderStateCompleted),
			FechaEntrega: strPtr("2024-03-15"),
		})

		require.NoError(t, err)
		assert.Equal(t, "XAXX010101000", updated.RFCCliente)
		assert.Equal(t, "OC-10", updated.NumeroOrden)
		invalidator.AssertNumberOfCalls(t, "InvalidateResource", 1)

		reloaded, err := svc.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, purchasing.OrderStateCompleted, reloaded.Estado)
		assert.True(t, reloaded.Total.Equal(total))
		require.NotNil(t, reloaded.FechaEntrega)
		assert.Equal(t, 15, reloaded.FechaEntrega.Day())
		assert.Len(t, reloaded.Detalles, 1)
	})

	t.Run("rejects negative totals", func(t *testing.T) {
		svc, db, invalidator := newOrderService(t)
		order := seedOrder(t, db, "OC-11")
		negative := decimal.NewFromInt(-1)

		_, err := svc.Update(ctx, order.ID, UpdateOrderRequest{TotalsPatch: TotalsPatch{IVA: &negative}})

		assert.True(t, shared.IsValidation(err))
		invalidator.AssertNotCalled(t, "InvalidateResource", mock.Anything, mock.Anything)
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		svc, db, _ := newOrderService(t)
		order := seedOrder(t, db, "OC-12")

		_, err := svc.Update(ctx, order.ID, UpdateOrderRequest{FechaOrden: strPtr("15/03/2024")})
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("unknown document", func(t *testing.T) {
		svc, _, _ := newOrderService(t)

		_, err := svc.Update(ctx, uuid.New(), UpdateOrderRequest{Notas: strPtr("x")})
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()

	var hooked []uuid.UUID
	hook := func(_ context.Context, o *purchasing.Order) { hooked = append(hooked, o.ID) }

	svc, db, invalidator := newOrderService(t, hook)
	item := testutil.SeedCatalogItem(t, db, "DEL-DOC", 10)
	order := seedOrder(t, db, "OC-20", testutil.CatalogLine(item.ID, 4))

	require.NoError(t, svc.Delete(ctx, order.ID))

	_, err := svc.GetByID(ctx, order.ID)
	assert.True(t, shared.IsNotFound(err))
	assert.Equal(t, []uuid.UUID{order.ID}, hooked)
	invalidator.AssertNumberOfCalls(t, "InvalidateResource", 1)

	var lines int64
	require.NoError(t, db.Table(purchasing.KindOrder.LinesTable()).Where("documento_id = ?", order.ID).Count(&lines).Error)
	assert.Zero(t, lines)

	// deleting never restores stock
	assert.Equal(t, 10, testutil.StockOf(t, db, item.ID))

	err = svc.Delete(ctx, order.ID)
	assert.True(t, shared.IsNotFound(err))
	assert.Len(t, hooked, 1)
}

func TestDocumentService_WorkOrderAndInvoiceLabels(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)

	workOrders := NewDocumentService[*purchasing.WorkOrder](
		purchasing.KindWorkOrder,
		persistence.NewGormWorkOrderRepository(db),
		newInvalidator(string(purchasing.KindWorkOrder)),
		zap.NewNop(),
	)
	invoices := NewDocumentService[*purchasing.Invoice](
		purchasing.KindInvoice,
		persistence.NewGormInvoiceRepository(db),
		newInvalidator(string(purchasing.KindInvoice)),
		zap.NewNop(),
	)

	_, err := workOrders.GetByID(ctx, uuid.New())
	assert.Contains(t, err.Error(), "Orden de trabajo no encontrada")

	_, err = invoices.GetByID(ctx, uuid.New())
	assert.Contains(t, err.Error(), "Factura no encontrada")

	assert.Equal(t, purchasing.KindWorkOrder, workOrders.Kind())
}

func TestDocumentListFilter_ToFilter(t *testing.T) {
	supplier := uuid.New()

	f := DocumentListFilter{Estado: "Pendiente", ProveedorID: supplier.String(), Buscar: "  taller ", Page: 2}.toFilter()
	assert.Equal(t, "Pendiente", f.Filters["estado"])
	assert.Equal(t, supplier, f.Filters["proveedor_id"])
	assert.Equal(t, "taller", f.Search)
	assert.Equal(t, 2, f.Page)

	f = DocumentListFilter{ProveedorID: "not-a-uuid"}.toFilter()
	assert.NotContains(t, f.Filters, "proveedor_id")
}

func strPtr(v string) *string { return &v }
