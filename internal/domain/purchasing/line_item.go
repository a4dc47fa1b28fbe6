package purchasing

import (
	"strings"
	"time"

	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem describes one quantity/price/description unit of a document.
// Manually entered items carry no InventarioID and never touch stock.
type LineItem struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	DocumentoID    uuid.UUID       `json:"documento_id" gorm:"type:uuid;not null;index"`
	Cantidad       int             `json:"cantidad" gorm:"not null"`
	Descripcion    string          `json:"descripcion" gorm:"type:text;not null"`
	InventarioID   *uuid.UUID      `json:"inventario_id,omitempty" gorm:"type:uuid;index"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" gorm:"type:decimal(12,2);not null;default:0"`
	Importe        decimal.Decimal `json:"importe" gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt      time.Time       `json:"created_at" gorm:"not null"`
}

// ReferencesCatalog reports whether the line points at a catalog item
func (l *LineItem) ReferencesCatalog() bool {
	return l.InventarioID != nil && *l.InventarioID != uuid.Nil
}

// ComputeAmount sets Importe to Cantidad x PrecioUnitario
func (l *LineItem) ComputeAmount() {
	l.Importe = l.PrecioUnitario.Mul(decimal.NewFromInt(int64(l.Cantidad)))
}

// IsBlank reports whether the line should be dropped before intake
func (l *LineItem) IsBlank() bool {
	return l.Cantidad <= 0 || strings.TrimSpace(l.Descripcion) == ""
}

// FilterLines drops blank lines and computes amounts for the rest,
// preserving submission order.
func FilterLines(lines []LineItem) []LineItem {
	kept := make([]LineItem, 0, len(lines))
	now := time.Now()
	for i, line := range lines {
		if line.IsBlank() {
			continue
		}
		line.Descripcion = strings.TrimSpace(line.Descripcion)
		line.ComputeAmount()
		// keep creation order stable for readers that sort by created_at
		line.CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
		kept = append(kept, line)
	}
	return kept
}

// ValidateLines rejects kept lines with a negative unit price
func ValidateLines(lines []LineItem) error {
	for i, line := range lines {
		if line.PrecioUnitario.IsNegative() {
			return shared.NewValidationError("detalles[%d].precio_unitario cannot be negative", i)
		}
	}
	return nil
}

// SumLines totals the line amounts
func SumLines(lines []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.Importe)
	}
	return sum
}
