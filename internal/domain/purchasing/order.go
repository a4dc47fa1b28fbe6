package purchasing

import (
	"time"

	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Order states
const (
	OrderStatePending   = "Pendiente"
	OrderStateCompleted = "Completada"
	OrderStateCancelled = "Cancelada"
)

// Order is a purchase order header (ordenes_compra)
type Order struct {
	shared.BaseEntity
	Totals
	NumeroOrden     string     `json:"numero_orden" gorm:"type:varchar(50);index"`
	ProveedorID     *uuid.UUID `json:"proveedor_id,omitempty" gorm:"type:uuid;index"`
	NombreCliente   string     `json:"nombre_cliente" gorm:"type:varchar(200)"`
	RFCCliente      string     `json:"rfc_cliente" gorm:"column:rfc_cliente;type:varchar(20)"`
	FechaOrden      *time.Time `json:"fecha_orden,omitempty"`
	FechaEntrega    *time.Time `json:"fecha_entrega,omitempty"`
	MetodoPago      string     `json:"metodo_pago" gorm:"type:varchar(50)"`
	RequiereFactura bool       `json:"requiere_factura" gorm:"not null;default:false"`
	Estado          string     `json:"estado" gorm:"type:varchar(30);not null;default:'Pendiente'"`
	Notas           string     `json:"notas" gorm:"type:text"`

	Detalles []LineItem `json:"detalles" gorm:"-"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "ordenes_compra"
}

// NewOrder creates an empty order header with a generated id
func NewOrder() *Order {
	return &Order{BaseEntity: shared.NewBaseEntity()}
}

// Kind implements Document
func (o *Order) Kind() Kind { return KindOrder }

// Lines implements Document
func (o *Order) Lines() []LineItem { return o.Detalles }

// SetLines implements Document
func (o *Order) SetLines(lines []LineItem) { o.Detalles = lines }

// DocumentTotals implements Document
func (o *Order) DocumentTotals() *Totals { return &o.Totals }

// ApplyDefaults implements Document
func (o *Order) ApplyDefaults() {
	if o.Estado == "" {
		o.Estado = OrderStatePending
	}
	if o.FechaOrden == nil {
		now := time.Now()
		o.FechaOrden = &now
	}
}
