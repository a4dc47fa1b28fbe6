package persistence

import (
	"context"
	"testing"

	"github.com/gestion-compras/backend/internal/domain/purchasing"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/gestion-compras/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormDocumentRepository_Orders(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	item := testutil.SeedCatalogItem(t, db, "FIL-001", 10)
	supplier := testutil.SeedSupplier(t, db, "Refacciones del Norte")

	order := purchasing.NewOrder()
	order.NumeroOrden = "OC-2024-001"
	order.ProveedorID = &supplier.ID
	order.ApplyDefaults()
	order.SetLines(purchasing.FilterLines([]purchasing.LineItem{
		testutil.CatalogLine(item.ID, 2),
		testutil.ManualLine("Flete", 1),
	}))

	t.Run("CreateWithLines stamps the header id on every line", func(t *testing.T) {
		require.NoError(t, repo.CreateWithLines(ctx, order))

		var count int64
		require.NoError(t, db.Table("orden_detalles").Where("documento_id = ?", order.ID).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})

	t.Run("FindByID returns lines in creation order", func(t *testing.T) {
		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "OC-2024-001", found.NumeroOrden)
		assert.Equal(t, purchasing.OrderStatePending, found.Estado)
		require.Len(t, found.Detalles, 2)
		assert.Equal(t, "Línea de catálogo", found.Detalles[0].Descripcion)
		assert.Equal(t, "Flete", found.Detalles[1].Descripcion)
		require.NotNil(t, found.Detalles[0].InventarioID)
		assert.Nil(t, found.Detalles[1].InventarioID)
		assert.True(t, found.Detalles[0].Importe.Equal(decimal.NewFromInt(200)))
	})

	t.Run("FindByID unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("FindAll lists headers and filters by supplier", func(t *testing.T) {
		other := purchasing.NewOrder()
		other.NumeroOrden = "OC-2024-002"
		other.ApplyDefaults()
		require.NoError(t, repo.CreateWithLines(ctx, other))

		all, err := repo.FindAll(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Len(t, all, 2)

		bySupplier, err := repo.FindAll(ctx, shared.DefaultFilter().With("proveedor_id", supplier.ID))
		require.NoError(t, err)
		require.Len(t, bySupplier, 1)
		assert.Equal(t, order.ID, bySupplier[0].ID)
		assert.Empty(t, bySupplier[0].Detalles)

		filter := shared.DefaultFilter()
		filter.Search = "2024-002"
		found, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, other.ID, found[0].ID)
	})

	t.Run("UpdateHeader leaves lines untouched", func(t *testing.T) {
		order.Estado = purchasing.OrderStateCompleted
		order.Detalles = nil
		require.NoError(t, repo.UpdateHeader(ctx, order))

		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, purchasing.OrderStateCompleted, found.Estado)
		assert.Len(t, found.Detalles, 2)
	})

	t.Run("UpdateHeader unknown id", func(t *testing.T) {
		ghost := purchasing.NewOrder()
		assert.True(t, shared.IsNotFound(repo.UpdateHeader(ctx, ghost)))
	})

	t.Run("Delete removes header and lines", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, order.ID))

		var count int64
		require.NoError(t, db.Table("orden_detalles").Where("documento_id = ?", order.ID).Count(&count).Error)
		assert.Zero(t, count)
		assert.True(t, shared.IsNotFound(repo.Delete(ctx, order.ID)))
	})
}

func TestGormDocumentRepository_LineFailureRollsBackHeader(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	invoice := purchasing.NewInvoice()
	invoice.NumeroFactura = "F-100"
	invoice.ApplyDefaults()

	lines := purchasing.FilterLines([]purchasing.LineItem{
		testutil.ManualLine("Servicio", 1),
		testutil.ManualLine("Refacción", 1),
	})
	// Same primary key twice makes the second insert fail
	dup := uuid.New()
	lines[0].ID, lines[1].ID = dup, dup
	invoice.SetLines(lines)

	err := repo.CreateWithLines(ctx, invoice)
	require.Error(t, err)
	assert.True(t, shared.IsPersistence(err))

	_, err = repo.FindByID(ctx, invoice.ID)
	assert.True(t, shared.IsNotFound(err), "header must not survive a failed line insert")
}

func TestGormDocumentRepository_UnknownCatalogItem(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	order := purchasing.NewOrder()
	order.ApplyDefaults()
	order.SetLines(purchasing.FilterLines([]purchasing.LineItem{
		testutil.ManualLine("Flete", 1),
		testutil.CatalogLine(uuid.New(), 2),
	}))

	err := repo.CreateWithLines(ctx, order)
	assert.True(t, shared.IsNotFound(err))
	assert.False(t, shared.IsPersistence(err))

	_, err = repo.FindByID(ctx, order.ID)
	assert.True(t, shared.IsNotFound(err))
}

func TestGormDocumentRepository_WorkOrdersAndInvoicesUseTheirOwnLineTables(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	wo := purchasing.NewWorkOrder()
	wo.NombreCliente = "Juan Pérez"
	wo.NoPlacas = "ABC-123"
	wo.ApplyDefaults()
	wo.SetLines(purchasing.FilterLines([]purchasing.LineItem{testutil.ManualLine("Afinación", 1)}))
	require.NoError(t, NewGormWorkOrderRepository(db).CreateWithLines(ctx, wo))

	invoice := purchasing.NewInvoice()
	invoice.ApplyDefaults()
	invoice.SetLines(purchasing.FilterLines([]purchasing.LineItem{testutil.ManualLine("Aceite", 4)}))
	require.NoError(t, NewGormInvoiceRepository(db).CreateWithLines(ctx, invoice))

	counts := map[string]int64{}
	for _, table := range []string{"orden_detalles", "factura_detalles", "orden_trabajo_detalles"} {
		var n int64
		require.NoError(t, db.Table(table).Count(&n).Error)
		counts[table] = n
	}
	assert.Equal(t, map[string]int64{"orden_detalles": 0, "factura_detalles": 1, "orden_trabajo_detalles": 1}, counts)

	found, err := NewGormWorkOrderRepository(db).FindByID(ctx, wo.ID)
	require.NoError(t, err)
	assert.Equal(t, "ABC-123", found.NoPlacas)
	require.Len(t, found.Detalles, 1)
	assert.Equal(t, "Afinación", found.Detalles[0].Descripcion)
}
