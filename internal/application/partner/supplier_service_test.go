package partner

import (
	"context"
	"errors"
	"testing"

	"github.com/gestion-compras/backend/internal/domain/partner"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockSupplierRepository is a mock implementation of SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCacheInvalidator is a mock implementation of CacheInvalidator
type MockCacheInvalidator struct {
	mock.Mock
}

func (m *MockCacheInvalidator) InvalidateResource(ctx context.Context, resource string) int {
	args := m.Called(ctx, resource)
	return args.Int(0)
}

func newTestSupplier(t *testing.T) *partner.Supplier {
	t.Helper()
	s, err := partner.NewSupplier("Aceros del Norte SA de CV")
	require.NoError(t, err)
	require.NoError(t, s.SetTaxID("ano010101abc"))
	s.SetContact("María López", "8112345678", "ventas@aceros.mx")
	return s
}

func TestSupplierService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and invalidates the supplier partition", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		invalidator := new(MockCacheInvalidator)
		repo.On("Save", ctx, mock.AnythingOfType("*partner.Supplier")).Return(nil)
		invalidator.On("InvalidateResource", ctx, Resource).Return(2)

		svc := NewSupplierService(repo, invalidator, zap.NewNop())
		resp, err := svc.Create(ctx, CreateSupplierRequest{
			NombreSocial: "  Refaccionaria Central ",
			RFC:          "rce990101xyz",
			Email:        "Compras@Central.MX",
		})

		require.NoError(t, err)
		assert.Equal(t, "Refaccionaria Central", resp.NombreSocial)
		assert.Equal(t, "RCE990101XYZ", resp.RFC)
		assert.Equal(t, "compras@central.mx", resp.Email)
		repo.AssertExpectations(t)
		invalidator.AssertExpectations(t)
	})

	t.Run("rejects a blank name", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		invalidator := new(MockCacheInvalidator)

		svc := NewSupplierService(repo, invalidator, zap.NewNop())
		_, err := svc.Create(ctx, CreateSupplierRequest{NombreSocial: "   "})

		assert.True(t, shared.IsValidation(err))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		invalidator.AssertNotCalled(t, "InvalidateResource", mock.Anything, mock.Anything)
	})

	t.Run("a failed save does not invalidate", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		invalidator := new(MockCacheInvalidator)
		repo.On("Save", ctx, mock.Anything).Return(shared.NewPersistenceError("save supplier", errors.New("db down")))

		svc := NewSupplierService(repo, invalidator, zap.NewNop())
		_, err := svc.Create(ctx, CreateSupplierRequest{NombreSocial: "Proveedor"})

		assert.True(t, shared.IsPersistence(err))
		invalidator.AssertNotCalled(t, "InvalidateResource", mock.Anything, mock.Anything)
	})
}

func TestSupplierService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		supplier := newTestSupplier(t)
		repo.On("FindByID", ctx, supplier.ID).Return(supplier, nil)

		svc := NewSupplierService(repo, new(MockCacheInvalidator), zap.NewNop())
		resp, err := svc.GetByID(ctx, supplier.ID)

		require.NoError(t, err)
		assert.Equal(t, "ANO010101ABC", resp.RFC)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		svc := NewSupplierService(repo, new(MockCacheInvalidator), zap.NewNop())
		_, err := svc.GetByID(ctx, id)

		assert.True(t, shared.IsNotFound(err))
		assert.Contains(t, err.Error(), "Proveedor")
	})
}

func TestSupplierService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSupplierRepository)
	supplier := newTestSupplier(t)
	repo.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Search == "aceros" && f.Filters["rfc"] == "ANO010101ABC"
	})).Return([]partner.Supplier{*supplier}, nil)

	svc := NewSupplierService(repo, new(MockCacheInvalidator), zap.NewNop())
	list, err := svc.List(ctx, SupplierListFilter{Buscar: " aceros ", RFC: "ano010101abc"})

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, supplier.ID, list[0].ID)
}

func TestSupplierService_Update(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSupplierRepository)
	invalidator := new(MockCacheInvalidator)
	supplier := newTestSupplier(t)
	repo.On("FindByID", ctx, supplier.ID).Return(supplier, nil)
	repo.On("Save", ctx, supplier).Return(nil)
	invalidator.On("InvalidateResource", ctx, Resource).Return(0)

	telefono := "8100000000"
	svc := NewSupplierService(repo, invalidator, zap.NewNop())
	resp, err := svc.Update(ctx, supplier.ID, UpdateSupplierRequest{Telefono: &telefono})

	require.NoError(t, err)
	assert.Equal(t, "8100000000", resp.Telefono)
	assert.Equal(t, "María López", resp.Contacto)
	assert.Equal(t, "ventas@aceros.mx", resp.Email)
	invalidator.AssertExpectations(t)
}

func TestSupplierService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes and invalidates", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		invalidator := new(MockCacheInvalidator)
		id := uuid.New()
		repo.On("Delete", ctx, id).Return(nil)
		invalidator.On("InvalidateResource", ctx, Resource).Return(1)

		svc := NewSupplierService(repo, invalidator, zap.NewNop())
		require.NoError(t, svc.Delete(ctx, id))
		invalidator.AssertExpectations(t)
	})

	t.Run("unknown supplier", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		id := uuid.New()
		repo.On("Delete", ctx, id).Return(shared.NewNotFoundError("supplier"))

		svc := NewSupplierService(repo, new(MockCacheInvalidator), zap.NewNop())
		err := svc.Delete(ctx, id)
		assert.True(t, shared.IsNotFound(err))
	})
}
