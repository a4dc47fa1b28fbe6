package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gestion-compras/backend/internal/domain/inventory"
	"github.com/gestion-compras/backend/internal/domain/partner"
	"github.com/gestion-compras/backend/internal/domain/purchasing"
)

// SeedCatalogItem inserts a catalog item with the given stock
func SeedCatalogItem(t *testing.T, db *gorm.DB, codigo string, stock int) *inventory.CatalogItem {
	t.Helper()

	item, err := inventory.NewCatalogItem(codigo, "Artículo "+codigo, decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NoError(t, item.SetStockLevels(stock, 0))
	require.NoError(t, db.Create(item).Error)
	return item
}

// StockOf reads the current stock of an item straight from the table
func StockOf(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()

	var item inventory.CatalogItem
	require.NoError(t, db.Select("stock_actual").First(&item, "id = ?", id).Error)
	return item.StockActual
}

// SeedSupplier inserts a supplier
func SeedSupplier(t *testing.T, db *gorm.DB, nombre string) *partner.Supplier {
	t.Helper()

	s, err := partner.NewSupplier(nombre)
	require.NoError(t, err)
	require.NoError(t, db.Create(s).Error)
	return s
}

// CatalogLine builds a line that references a catalog item
func CatalogLine(itemID uuid.UUID, cantidad int) purchasing.LineItem {
	id := itemID
	return purchasing.LineItem{
		Cantidad:       cantidad,
		Descripcion:    "Línea de catálogo",
		InventarioID:   &id,
		PrecioUnitario: decimal.NewFromInt(100),
	}
}

// ManualLine builds a free-text line with no catalog reference
func ManualLine(descripcion string, cantidad int) purchasing.LineItem {
	return purchasing.LineItem{
		Cantidad:       cantidad,
		Descripcion:    descripcion,
		PrecioUnitario: decimal.NewFromInt(50),
	}
}
