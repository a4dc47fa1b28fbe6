package intake

import (
	"strings"
	"time"

	"github.com/gestion-compras/backend/internal/domain/purchasing"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// dateLayouts are the formats accepted for date-only header fields
var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// LineItemRequest is one submitted line. Lines with a non-positive quantity
// or a blank description are dropped before intake.
type LineItemRequest struct {
	Cantidad       int              `json:"cantidad"`
	Descripcion    string           `json:"descripcion" binding:"max=1000"`
	InventarioID   *uuid.UUID       `json:"inventario_id"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario"`
}

// TotalsRequest carries optional header totals. Missing totals are derived
// from the lines.
type TotalsRequest struct {
	Subtotal *decimal.Decimal `json:"subtotal"`
	IVA      *decimal.Decimal `json:"iva"`
	Total    *decimal.Decimal `json:"total"`
}

// OrderHeaderRequest is the header of a purchase order
type OrderHeaderRequest struct {
	TotalsRequest
	NumeroOrden     string     `json:"numero_orden" binding:"max=50"`
	ProveedorID     *uuid.UUID `json:"proveedor_id"`
	NombreCliente   string     `json:"nombre_cliente" binding:"max=200"`
	RFCCliente      string     `json:"rfc_cliente" binding:"max=20"`
	FechaOrden      string     `json:"fecha_orden"`
	FechaEntrega    string     `json:"fecha_entrega"`
	MetodoPago      string     `json:"metodo_pago" binding:"max=50"`
	RequiereFactura bool       `json:"requiere_factura"`
	Estado          string     `json:"estado" binding:"omitempty,oneof=Pendiente Completada Cancelada"`
	Notas           string     `json:"notas"`
}

// CreateOrderRequest is the body of POST /api/ordenes
type CreateOrderRequest struct {
	Orden    *OrderHeaderRequest `json:"orden"`
	Detalles []LineItemRequest   `json:"detalles" binding:"dive"`
}

// InvoiceHeaderRequest is the header of a supplier invoice
type InvoiceHeaderRequest struct {
	TotalsRequest
	NumeroFactura   string     `json:"numero_factura" binding:"max=50"`
	NombreDocumento string     `json:"nombre_documento" binding:"max=200"`
	ProveedorID     *uuid.UUID `json:"proveedor_id"`
	Proveedor       string     `json:"proveedor" binding:"max=200"`
	FechaFactura    string     `json:"fecha_factura"`
	Estado          string     `json:"estado" binding:"max=30"`
	Notas           string     `json:"notas"`
}

// CreateInvoiceRequest is the body of POST /api/facturas
type CreateInvoiceRequest struct {
	Factura  *InvoiceHeaderRequest `json:"factura"`
	Detalles []LineItemRequest     `json:"detalles" binding:"dive"`
}

// WorkOrderHeaderRequest is the header of a vehicle work order
type WorkOrderHeaderRequest struct {
	TotalsRequest
	NombreCliente       string `json:"nombre_cliente" binding:"max=200"`
	Direccion           string `json:"direccion" binding:"max=300"`
	Telefono            string `json:"telefono" binding:"max=30"`
	NoPlacas            string `json:"no_placas" binding:"max=20"`
	Marca               string `json:"marca" binding:"max=50"`
	Modelo              string `json:"modelo" binding:"max=50"`
	Anio                int    `json:"anio" binding:"omitempty,min=1900,max=2100"`
	Color               string `json:"color" binding:"max=30"`
	Kilometraje         int    `json:"kilometraje" binding:"min=0"`
	DescripcionServicio string `json:"descripcion_servicio"`
	Encargado           string `json:"encargado" binding:"max=100"`
	Ayudante            string `json:"ayudante" binding:"max=100"`
	FechaEntrada        string `json:"fecha_entrada"`
	FechaSalida         string `json:"fecha_salida"`
	Observaciones       string `json:"observaciones"`
	Estado              string `json:"estado" binding:"max=30"`
}

// CreateWorkOrderRequest is the body of POST /api/ordenes-trabajo
type CreateWorkOrderRequest struct {
	Orden    *WorkOrderHeaderRequest `json:"orden"`
	Detalles []LineItemRequest       `json:"detalles" binding:"dive"`
}

// ParseDate parses an optional date field. An empty string yields nil.
func ParseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, shared.NewValidationError("%s must be a date (YYYY-MM-DD)", field)
}

// toTotals copies the submitted totals; absent values stay zero
func (r TotalsRequest) toTotals() purchasing.Totals {
	var t purchasing.Totals
	if r.Subtotal != nil {
		t.Subtotal = *r.Subtotal
	}
	if r.IVA != nil {
		t.IVA = *r.IVA
	}
	if r.Total != nil {
		t.Total = *r.Total
	}
	return t
}

// toLineItems converts submitted lines in order, without filtering
func toLineItems(reqs []LineItemRequest) []purchasing.LineItem {
	lines := make([]purchasing.LineItem, 0, len(reqs))
	for _, r := range reqs {
		line := purchasing.LineItem{
			Cantidad:     r.Cantidad,
			Descripcion:  r.Descripcion,
			InventarioID: r.InventarioID,
		}
		if r.PrecioUnitario != nil {
			line.PrecioUnitario = *r.PrecioUnitario
		}
		lines = append(lines, line)
	}
	return lines
}

// ToOrder builds the order header
func (r *OrderHeaderRequest) ToOrder() (*purchasing.Order, error) {
	fechaOrden, err := ParseDate("fecha_orden", r.FechaOrden)
	if err != nil {
		return nil, err
	}
	fechaEntrega, err := ParseDate("fecha_entrega", r.FechaEntrega)
	if err != nil {
		return nil, err
	}

	order := purchasing.NewOrder()
	order.Totals = r.toTotals()
	order.NumeroOrden = strings.TrimSpace(r.NumeroOrden)
	order.ProveedorID = r.ProveedorID
	order.NombreCliente = strings.TrimSpace(r.NombreCliente)
	order.RFCCliente = strings.ToUpper(strings.TrimSpace(r.RFCCliente))
	order.FechaOrden = fechaOrden
	order.FechaEntrega = fechaEntrega
	order.MetodoPago = strings.TrimSpace(r.MetodoPago)
	order.RequiereFactura = r.RequiereFactura
	order.Estado = r.Estado
	order.Notas = r.Notas
	return order, nil
}

// ToInvoice builds the invoice header
func (r *InvoiceHeaderRequest) ToInvoice() (*purchasing.Invoice, error) {
	fecha, err := ParseDate("fecha_factura", r.FechaFactura)
	if err != nil {
		return nil, err
	}

	invoice := purchasing.NewInvoice()
	invoice.Totals = r.toTotals()
	invoice.NumeroFactura = strings.TrimSpace(r.NumeroFactura)
	invoice.NombreDocumento = strings.TrimSpace(r.NombreDocumento)
	invoice.ProveedorID = r.ProveedorID
	invoice.Proveedor = strings.TrimSpace(r.Proveedor)
	invoice.FechaFactura = fecha
	invoice.Estado = r.Estado
	invoice.Notas = r.Notas
	return invoice, nil
}

// ToWorkOrder builds the work order header
func (r *WorkOrderHeaderRequest) ToWorkOrder() (*purchasing.WorkOrder, error) {
	entrada, err := ParseDate("fecha_entrada", r.FechaEntrada)
	if err != nil {
		return nil, err
	}
	salida, err := ParseDate("fecha_salida", r.FechaSalida)
	if err != nil {
		return nil, err
	}

	wo := purchasing.NewWorkOrder()
	wo.Totals = r.toTotals()
	wo.NombreCliente = strings.TrimSpace(r.NombreCliente)
	wo.Direccion = strings.TrimSpace(r.Direccion)
	wo.Telefono = strings.TrimSpace(r.Telefono)
	wo.NoPlacas = strings.ToUpper(strings.TrimSpace(r.NoPlacas))
	wo.Marca = strings.TrimSpace(r.Marca)
	wo.Modelo = strings.TrimSpace(r.Modelo)
	wo.Anio = r.Anio
	wo.Color = strings.TrimSpace(r.Color)
	wo.Kilometraje = r.Kilometraje
	wo.DescripcionServicio = r.DescripcionServicio
	wo.Encargado = strings.TrimSpace(r.Encargado)
	wo.Ayudante = strings.TrimSpace(r.Ayudante)
	wo.FechaEntrada = entrada
	wo.FechaSalida = salida
	wo.Observaciones = r.Observaciones
	wo.Estado = r.Estado
	return wo, nil
}
