// Package purchasing holds the parent documents (orders, invoices and work
// orders) and the line items attached to them.
package purchasing

import (
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind identifies a document type. Its value doubles as the HTTP resource
// name and the cache partition tag.
type Kind string

const (
	KindOrder     Kind = "ordenes"
	KindInvoice   Kind = "facturas"
	KindWorkOrder Kind = "ordenes-trabajo"
)

// LinesTable returns the table holding the line items of this kind
func (k Kind) LinesTable() string {
	switch k {
	case KindOrder:
		return "orden_detalles"
	case KindInvoice:
		return "factura_detalles"
	case KindWorkOrder:
		return "orden_trabajo_detalles"
	default:
		return ""
	}
}

// Label returns a human readable name used in messages
func (k Kind) Label() string {
	switch k {
	case KindOrder:
		return "Orden"
	case KindInvoice:
		return "Factura"
	case KindWorkOrder:
		return "Orden de trabajo"
	default:
		return string(k)
	}
}

// Document is implemented by every header type
type Document interface {
	shared.Entity
	Kind() Kind
	Lines() []LineItem
	SetLines(lines []LineItem)
	DocumentTotals() *Totals
	// ApplyDefaults fills header fields left empty by the caller
	ApplyDefaults()
}

// Totals are the monetary header fields shared by all documents
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null;default:0"`
	IVA      decimal.Decimal `json:"iva" gorm:"column:iva;type:decimal(12,2);not null;default:0"`
	Total    decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null;default:0"`
}

// Reconcile fills missing totals from the lines and reports whether the stored
// subtotal matches the sum of line amounts. A mismatch is tolerated.
func (t *Totals) Reconcile(lines []LineItem) bool {
	sum := SumLines(lines)
	if t.Subtotal.IsZero() {
		t.Subtotal = sum
	}
	if t.Total.IsZero() {
		t.Total = t.Subtotal.Add(t.IVA)
	}
	return t.Subtotal.Equal(sum)
}

// Validate rejects negative amounts
func (t *Totals) Validate() error {
	if t.Subtotal.IsNegative() || t.IVA.IsNegative() || t.Total.IsNegative() {
		return shared.NewValidationError("totals cannot be negative")
	}
	return nil
}

// StampLines assigns the document id to every line and returns them
func StampLines(doc Document) []LineItem {
	lines := doc.Lines()
	for i := range lines {
		lines[i].DocumentoID = doc.GetID()
		if lines[i].ID == uuid.Nil {
			lines[i].ID = uuid.New()
		}
	}
	doc.SetLines(lines)
	return lines
}
