package inventory

import (
	"strings"

	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultUnitOfMeasure is used when an item is created without a unit
const DefaultUnitOfMeasure = "PZA"

// StockOperation selects the direction of a manual stock adjustment
type StockOperation string

const (
	StockOperationAdd      StockOperation = "sumar"
	StockOperationSubtract StockOperation = "restar"
)

// IsValid reports whether the operation is known
func (o StockOperation) IsValid() bool {
	return o == StockOperationAdd || o == StockOperationSubtract
}

// CatalogItem is an inventory record with on-hand quantity and pricing.
// StockActual is allowed to go negative: document intake decrements it without clamping.
type CatalogItem struct {
	shared.BaseEntity
	Codigo         string          `json:"codigo" gorm:"type:varchar(50);not null;uniqueIndex"`
	Nombre         string          `json:"nombre" gorm:"type:varchar(200);not null"`
	Descripcion    string          `json:"descripcion" gorm:"type:text"`
	Categoria      string          `json:"categoria" gorm:"type:varchar(100);index"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" gorm:"type:decimal(12,2);not null;default:0"`
	StockActual    int             `json:"stock_actual" gorm:"not null;default:0"`
	StockMinimo    int             `json:"stock_minimo" gorm:"not null;default:0"`
	UnidadMedida   string          `json:"unidad_medida" gorm:"type:varchar(20);not null;default:'PZA'"`
	Activo         bool            `json:"activo" gorm:"not null"`
}

// TableName returns the table name for GORM
func (CatalogItem) TableName() string {
	return "inventario"
}

// NewCatalogItem creates an active catalog item
func NewCatalogItem(codigo, nombre string, precio decimal.Decimal) (*CatalogItem, error) {
	codigo = strings.TrimSpace(codigo)
	nombre = strings.TrimSpace(nombre)
	if codigo == "" {
		return nil, shared.NewValidationError("codigo is required")
	}
	if nombre == "" {
		return nil, shared.NewValidationError("nombre is required")
	}
	if precio.IsNegative() {
		return nil, shared.NewValidationError("precio_unitario cannot be negative")
	}

	return &CatalogItem{
		BaseEntity:     shared.NewBaseEntity(),
		Codigo:         codigo,
		Nombre:         nombre,
		PrecioUnitario: precio,
		UnidadMedida:   DefaultUnitOfMeasure,
		Activo:         true,
	}, nil
}

// SetStockLevels sets the on-hand quantity and the low-stock threshold
func (i *CatalogItem) SetStockLevels(actual, minimo int) error {
	if actual < 0 {
		return shared.NewValidationError("stock_actual cannot be negative")
	}
	if minimo < 0 {
		return shared.NewValidationError("stock_minimo cannot be negative")
	}
	i.StockActual = actual
	i.StockMinimo = minimo
	i.Touch()
	return nil
}

// SetUnitOfMeasure sets the unit, falling back to PZA
func (i *CatalogItem) SetUnitOfMeasure(unit string) {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		unit = DefaultUnitOfMeasure
	}
	i.UnidadMedida = unit
}

// StockDelta validates a manual adjustment and returns its signed quantity
func StockDelta(op StockOperation, cantidad int) (int, error) {
	if !op.IsValid() {
		return 0, shared.NewValidationError("operacion must be 'sumar' or 'restar'")
	}
	if cantidad <= 0 {
		return 0, shared.NewValidationError("cantidad must be greater than zero")
	}
	if op == StockOperationSubtract {
		return -cantidad, nil
	}
	return cantidad, nil
}

// AdjustStock applies a manual adjustment. Unlike the intake decrement,
// subtracting clamps the result at zero.
func (i *CatalogItem) AdjustStock(op StockOperation, cantidad int) error {
	delta, err := StockDelta(op, cantidad)
	if err != nil {
		return err
	}
	if delta < 0 {
		i.StockActual = max(i.StockActual+delta, 0)
	} else {
		i.StockActual += delta
	}
	i.Touch()
	return nil
}

// IsLowStock reports whether on-hand quantity is at or below the threshold
func (i *CatalogItem) IsLowStock() bool {
	return i.StockActual <= i.StockMinimo
}
