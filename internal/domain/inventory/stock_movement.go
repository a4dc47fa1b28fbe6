package inventory

import (
	"time"

	"github.com/google/uuid"
)

// MovementType classifies a stock movement
type MovementType string

const (
	MovementDocumentIntake MovementType = "salida_documento"
	MovementManualAdd      MovementType = "ajuste_entrada"
	MovementManualSubtract MovementType = "ajuste_salida"
)

// StockMovement records one change to a catalog item's on-hand quantity.
// Cantidad is signed: positive adds stock, negative removes it.
type StockMovement struct {
	ID           uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	InventarioID uuid.UUID    `json:"inventario_id" gorm:"type:uuid;not null;index"`
	Tipo         MovementType `json:"tipo" gorm:"type:varchar(30);not null"`
	Cantidad     int          `json:"cantidad" gorm:"not null"`
	ReferenciaID *uuid.UUID   `json:"referencia_id,omitempty" gorm:"type:uuid;index"`
	Referencia   string       `json:"referencia,omitempty" gorm:"type:varchar(50)"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "movimientos_stock"
}

// NewStockMovement creates a movement entry stamped with the current time
func NewStockMovement(itemID uuid.UUID, tipo MovementType, cantidad int) *StockMovement {
	return &StockMovement{
		ID:           uuid.New(),
		InventarioID: itemID,
		Tipo:         tipo,
		Cantidad:     cantidad,
		CreatedAt:    time.Now(),
	}
}

// WithReference links the movement to the document that caused it
func (m *StockMovement) WithReference(kind string, id uuid.UUID) *StockMovement {
	m.Referencia = kind
	m.ReferenciaID = &id
	return m
}
