package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gestion-compras/backend/internal/domain/inventory"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/gestion-compras/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormStockStore_SQLite(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	store := NewGormStockStore(db)
	ctx := context.Background()
	item := testutil.SeedCatalogItem(t, db, "FIL-001", 10)

	t.Run("OnHand", func(t *testing.T) {
		qty, err := store.OnHand(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, qty)

		_, err = store.OnHand(ctx, uuid.New())
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("SetOnHand overwrites", func(t *testing.T) {
		require.NoError(t, store.SetOnHand(ctx, item.ID, 7))
		assert.Equal(t, 7, testutil.StockOf(t, db, item.ID))
	})

	t.Run("Decrement subtracts and may go negative", func(t *testing.T) {
		require.NoError(t, store.Decrement(ctx, item.ID, 5))
		assert.Equal(t, 2, testutil.StockOf(t, db, item.ID))

		require.NoError(t, store.Decrement(ctx, item.ID, 5))
		assert.Equal(t, -3, testutil.StockOf(t, db, item.ID))
	})

	t.Run("missing item is not found", func(t *testing.T) {
		assert.True(t, shared.IsNotFound(store.Decrement(ctx, uuid.New(), 1)))
		assert.True(t, shared.IsNotFound(store.SetOnHand(ctx, uuid.New(), 1)))
	})
}

func TestGormStockStore_DecrementIsASingleUpdate(t *testing.T) {
	mdb := testutil.NewMockDB(t)
	store := NewGormStockStore(mdb.DB)
	id := uuid.New()

	mdb.Mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE "inventario" SET "stock_actual"=stock_actual - $1,"updated_at"=$2 WHERE id = $3`)).
		WithArgs(4, sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Decrement(context.Background(), id, 4))
	mdb.ExpectationsWereMet(t)
}

func TestGormStockStore_DecrementNotFound(t *testing.T) {
	mdb := testutil.NewMockDB(t)
	store := NewGormStockStore(mdb.DB)

	mdb.Mock.ExpectExec(`UPDATE "inventario" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Decrement(context.Background(), uuid.New(), 1)
	assert.True(t, shared.IsNotFound(err))
	mdb.ExpectationsWereMet(t)
}

func TestGormStockStore_DatabaseError(t *testing.T) {
	mdb := testutil.NewMockDB(t)
	store := NewGormStockStore(mdb.DB)

	mdb.Mock.ExpectExec(`UPDATE "inventario" SET`).
		WillReturnError(assert.AnError)

	err := store.Decrement(context.Background(), uuid.New(), 1)
	assert.True(t, shared.IsPersistence(err))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestGormStockMovementRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormStockMovementRepository(db)
	ctx := context.Background()
	item := testutil.SeedCatalogItem(t, db, "BAL-010", 4)
	docID := uuid.New()

	older := inventory.NewStockMovement(item.ID, inventory.MovementManualAdd, 6)
	older.CreatedAt = older.CreatedAt.Add(-time.Minute)
	require.NoError(t, repo.Append(ctx, older))
	require.NoError(t, repo.Append(ctx,
		inventory.NewStockMovement(item.ID, inventory.MovementDocumentIntake, -2).WithReference("ordenes", docID)))

	movements, err := repo.FindByItem(ctx, item.ID, 10)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, inventory.MovementDocumentIntake, movements[0].Tipo)
	assert.Equal(t, -2, movements[0].Cantidad)
	require.NotNil(t, movements[0].ReferenciaID)
	assert.Equal(t, docID, *movements[0].ReferenciaID)
}
