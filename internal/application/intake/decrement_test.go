package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/gestion-compras/backend/internal/domain/inventory"
	"github.com/gestion-compras/backend/internal/domain/purchasing"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/gestion-compras/backend/internal/infrastructure/config"
	"github.com/gestion-compras/backend/internal/infrastructure/persistence"
	"github.com/gestion-compras/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// MockStockStore is a mock implementation of inventory.StockStore
type MockStockStore struct {
	mock.Mock
}

func (m *MockStockStore) OnHand(ctx context.Context, id uuid.UUID) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockStockStore) SetOnHand(ctx context.Context, id uuid.UUID, qty int) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *MockStockStore) Decrement(ctx context.Context, id uuid.UUID, n int) error {
	args := m.Called(ctx, id, n)
	return args.Error(0)
}

// MockMovementRepository is a mock implementation of inventory.StockMovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Append(ctx context.Context, movement *inventory.StockMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) FindByItem(ctx context.Context, itemID uuid.UUID, limit int) ([]inventory.StockMovement, error) {
	args := m.Called(ctx, itemID, limit)
	return args.Get(0).([]inventory.StockMovement), args.Error(1)
}

func TestNewStockDecrementer(t *testing.T) {
	store := new(MockStockStore)

	d, err := NewStockDecrementer(config.DecrementModeAtomic, store)
	require.NoError(t, err)
	assert.IsType(t, &AtomicDecrementer{}, d)

	d, err = NewStockDecrementer("", store)
	require.NoError(t, err)
	assert.Equal(t, config.DecrementModeAtomic, d.Mode())

	d, err = NewStockDecrementer(config.DecrementModeReadWrite, store)
	require.NoError(t, err)
	assert.IsType(t, &ReadWriteDecrementer{}, d)

	_, err = NewStockDecrementer("optimistic", store)
	assert.Error(t, err)
}

func TestReadWriteDecrementer(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("writes current minus quantity", func(t *testing.T) {
		store := new(MockStockStore)
		store.On("OnHand", ctx, id).Return(10, nil)
		store.On("SetOnHand", ctx, id, 7).Return(nil)

		require.NoError(t, NewReadWriteDecrementer(store).Decrement(ctx, id, 3))
		store.AssertExpectations(t)
	})

	t.Run("does not clamp at zero", func(t *testing.T) {
		store := new(MockStockStore)
		store.On("OnHand", ctx, id).Return(1, nil)
		store.On("SetOnHand", ctx, id, -4).Return(nil)

		require.NoError(t, NewReadWriteDecrementer(store).Decrement(ctx, id, 5))
		store.AssertExpectations(t)
	})

	t.Run("read failure skips the write", func(t *testing.T) {
		store := new(MockStockStore)
		store.On("OnHand", ctx, id).Return(0, shared.NewNotFoundError("catalog item"))

		err := NewReadWriteDecrementer(store).Decrement(ctx, id, 3)
		assert.True(t, shared.IsNotFound(err))
		store.AssertNotCalled(t, "SetOnHand", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDecrementLoop_Run(t *testing.T) {
	ctx := context.Background()
	docID := uuid.New()

	t.Run("skips manual lines and non-positive quantities", func(t *testing.T) {
		store := new(MockStockStore)
		itemA := uuid.New()
		store.On("Decrement", ctx, itemA, 2).Return(nil)

		zero := testutil.CatalogLine(uuid.New(), 0)
		nilRef := testutil.CatalogLine(uuid.Nil, 4)
		lines := []purchasing.LineItem{
			testutil.ManualLine("Mano de obra", 1),
			testutil.CatalogLine(itemA, 2),
			zero,
			nilRef,
		}

		loop := NewDecrementLoop(NewAtomicDecrementer(store), nil, zap.NewNop())
		report := loop.Run(ctx, purchasing.KindOrder, docID, lines)

		assert.Equal(t, 1, report.Applied)
		assert.Equal(t, 3, report.Skipped)
		assert.Equal(t, 0, report.Failed)
		store.AssertNumberOfCalls(t, "Decrement", 1)
	})

	t.Run("a failing line does not stop the loop", func(t *testing.T) {
		store := new(MockStockStore)
		missing, itemB := uuid.New(), uuid.New()
		store.On("Decrement", ctx, missing, 1).Return(shared.NewNotFoundError("catalog item"))
		store.On("Decrement", ctx, itemB, 5).Return(nil)

		core, logs := observer.New(zap.WarnLevel)
		loop := NewDecrementLoop(NewAtomicDecrementer(store), nil, zap.New(core))
		report := loop.Run(ctx, purchasing.KindInvoice, docID, []purchasing.LineItem{
			testutil.CatalogLine(missing, 1),
			testutil.CatalogLine(itemB, 5),
		})

		assert.Equal(t, 1, report.Applied)
		assert.Equal(t, 1, report.Failed)
		require.Len(t, report.Failures, 1)
		assert.Equal(t, missing, report.Failures[0].InventarioID)
		assert.True(t, shared.IsNotFound(report.Failures[0].Err))

		entries := logs.FilterMessage("Stock decrement failed").All()
		require.Len(t, entries, 1)
		assert.Equal(t, missing.String(), entries[0].ContextMap()["inventario_id"])
		assert.Equal(t, "facturas", entries[0].ContextMap()["document_kind"])
		store.AssertExpectations(t)
	})

	t.Run("processes lines in submission order", func(t *testing.T) {
		store := new(MockStockStore)
		first, second, third := uuid.New(), uuid.New(), uuid.New()
		var order []uuid.UUID
		record := func(args mock.Arguments) { order = append(order, args.Get(1).(uuid.UUID)) }
		store.On("Decrement", ctx, mock.Anything, mock.Anything).Run(record).Return(nil)

		loop := NewDecrementLoop(NewAtomicDecrementer(store), nil, zap.NewNop())
		loop.Run(ctx, purchasing.KindWorkOrder, docID, []purchasing.LineItem{
			testutil.CatalogLine(first, 1),
			testutil.CatalogLine(second, 1),
			testutil.CatalogLine(third, 1),
		})

		assert.Equal(t, []uuid.UUID{first, second, third}, order)
	})

	t.Run("records a movement per applied line", func(t *testing.T) {
		store := new(MockStockStore)
		movements := new(MockMovementRepository)
		ok, failing := uuid.New(), uuid.New()
		store.On("Decrement", ctx, ok, 3).Return(nil)
		store.On("Decrement", ctx, failing, 1).Return(errors.New("connection reset"))
		movements.On("Append", ctx, mock.MatchedBy(func(m *inventory.StockMovement) bool {
			return m.InventarioID == ok &&
				m.Cantidad == -3 &&
				m.Tipo == inventory.MovementDocumentIntake &&
				m.Referencia == "ordenes" &&
				*m.ReferenciaID == docID
		})).Return(nil).Once()

		loop := NewDecrementLoop(NewAtomicDecrementer(store), movements, zap.NewNop())
		report := loop.Run(ctx, purchasing.KindOrder, docID, []purchasing.LineItem{
			testutil.CatalogLine(ok, 3),
			testutil.CatalogLine(failing, 1),
		})

		assert.Equal(t, 1, report.Applied)
		movements.AssertExpectations(t)
	})

	t.Run("a movement log failure does not count as a failed decrement", func(t *testing.T) {
		store := new(MockStockStore)
		movements := new(MockMovementRepository)
		item := uuid.New()
		store.On("Decrement", ctx, item, 2).Return(nil)
		movements.On("Append", ctx, mock.Anything).Return(errors.New("disk full"))

		loop := NewDecrementLoop(NewAtomicDecrementer(store), movements, zap.NewNop())
		report := loop.Run(ctx, purchasing.KindOrder, docID, []purchasing.LineItem{testutil.CatalogLine(item, 2)})

		assert.Equal(t, 1, report.Applied)
		assert.Equal(t, 0, report.Failed)
	})
}

func TestDecrementers_AgainstDatabase(t *testing.T) {
	ctx := context.Background()

	for _, mode := range []string{config.DecrementModeAtomic, config.DecrementModeReadWrite} {
		t.Run(mode, func(t *testing.T) {
			db := testutil.NewSQLiteDB(t)
			store := persistence.NewGormStockStore(db)
			d, err := NewStockDecrementer(mode, store)
			require.NoError(t, err)

			t.Run("isolated decrement leaves before minus quantity", func(t *testing.T) {
				item := testutil.SeedCatalogItem(t, db, "ISO-"+mode, 10)
				require.NoError(t, d.Decrement(ctx, item.ID, 3))
				assert.Equal(t, 7, testutil.StockOf(t, db, item.ID))
			})

			t.Run("stock may go negative", func(t *testing.T) {
				item := testutil.SeedCatalogItem(t, db, "NEG-"+mode, 1)
				require.NoError(t, d.Decrement(ctx, item.ID, 4))
				assert.Equal(t, -3, testutil.StockOf(t, db, item.ID))
			})

			t.Run("unknown item", func(t *testing.T) {
				err := d.Decrement(ctx, uuid.New(), 1)
				assert.True(t, shared.IsNotFound(err))
			})
		})
	}
}
