package purchasing

import (
	"time"

	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceStateInProgress is the state of a freshly loaded invoice
const InvoiceStateInProgress = "En Proceso"

// Invoice is a supplier invoice header (facturas). It may carry one
// uploaded attachment (the scanned or XML invoice).
type Invoice struct {
	shared.BaseEntity
	Totals
	NumeroFactura   string     `json:"numero_factura" gorm:"type:varchar(50);index"`
	NombreDocumento string     `json:"nombre_documento" gorm:"type:varchar(200)"`
	ProveedorID     *uuid.UUID `json:"proveedor_id,omitempty" gorm:"type:uuid;index"`
	Proveedor       string     `json:"proveedor" gorm:"type:varchar(200)"`
	FechaFactura    *time.Time `json:"fecha_factura,omitempty"`
	Estado          string     `json:"estado" gorm:"type:varchar(30);not null;default:'En Proceso'"`
	Notas           string     `json:"notas" gorm:"type:text"`
	ArchivoURL      string     `json:"archivo_url,omitempty" gorm:"column:archivo_url;type:varchar(500)"`
	ArchivoNombre   string     `json:"archivo_nombre,omitempty" gorm:"type:varchar(255)"`

	Detalles []LineItem `json:"detalles" gorm:"-"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "facturas"
}

// NewInvoice creates an empty invoice header with a generated id
func NewInvoice() *Invoice {
	return &Invoice{BaseEntity: shared.NewBaseEntity()}
}

// Kind implements Document
func (f *Invoice) Kind() Kind { return KindInvoice }

// Lines implements Document
func (f *Invoice) Lines() []LineItem { return f.Detalles }

// SetLines implements Document
func (f *Invoice) SetLines(lines []LineItem) { f.Detalles = lines }

// DocumentTotals implements Document
func (f *Invoice) DocumentTotals() *Totals { return &f.Totals }

// ApplyDefaults implements Document
func (f *Invoice) ApplyDefaults() {
	if f.Estado == "" {
		f.Estado = InvoiceStateInProgress
	}
}

// HasAttachment reports whether a file has been uploaded for the invoice
func (f *Invoice) HasAttachment() bool {
	return f.ArchivoNombre != ""
}

// AttachFile records the stored attachment and returns the key it replaces, if any
func (f *Invoice) AttachFile(key, url string) (previous string) {
	previous = f.ArchivoNombre
	f.ArchivoNombre = key
	f.ArchivoURL = url
	f.Touch()
	return previous
}
