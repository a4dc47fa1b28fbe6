package purchasing

import (
	"strings"

	"github.com/gestion-compras/backend/internal/application/intake"
	"github.com/gestion-compras/backend/internal/domain/purchasing"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HeaderPatch changes header fields of a document of type T
type HeaderPatch[T purchasing.Document] interface {
	Apply(doc T) error
}

// DocumentListFilter holds the query parameters of a document list
type DocumentListFilter struct {
	Estado      string `form:"estado"`
	ProveedorID string `form:"proveedor_id" binding:"omitempty,uuid"`
	Buscar      string `form:"buscar"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=500"`
	OrderBy     string `form:"order_by"`
	OrderDir    string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// toFilter converts the query parameters to a repository filter
func (f DocumentListFilter) toFilter() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   strings.TrimSpace(f.Buscar),
		Filters:  make(map[string]interface{}),
	}
	if f.Estado != "" {
		filter.Filters["estado"] = f.Estado
	}
	if f.ProveedorID != "" {
		if id, err := uuid.Parse(f.ProveedorID); err == nil {
			filter.Filters["proveedor_id"] = id
		}
	}
	return filter
}

// TotalsPatch changes header totals
type TotalsPatch struct {
	Subtotal *decimal.Decimal `json:"subtotal"`
	IVA      *decimal.Decimal `json:"iva"`
	Total    *decimal.Decimal `json:"total"`
}

func (p TotalsPatch) apply(t *purchasing.Totals) error {
	if p.Subtotal != nil {
		t.Subtotal = *p.Subtotal
	}
	if p.IVA != nil {
		t.IVA = *p.IVA
	}
	if p.Total != nil {
		t.Total = *p.Total
	}
	return t.Validate()
}

// UpdateOrderRequest represents a request to update an order header
type UpdateOrderRequest struct {
	TotalsPatch
	NumeroOrden     *string    `json:"numero_orden" binding:"omitempty,max=50"`
	ProveedorID     *uuid.UUID `json:"proveedor_id"`
	NombreCliente   *string    `json:"nombre_cliente" binding:"omitempty,max=200"`
	RFCCliente      *string    `json:"rfc_cliente" binding:"omitempty,max=20"`
	FechaOrden      *string    `json:"fecha_orden"`
	FechaEntrega    *string    `json:"fecha_entrega"`
	MetodoPago      *string    `json:"metodo_pago" binding:"omitempty,max=50"`
	RequiereFactura *bool      `json:"requiere_factura"`
	Estado          *string    `json:"estado" binding:"omitempty,oneof=Pendiente Completada Cancelada"`
	Notas           *string    `json:"notas"`
}

// Apply implements HeaderPatch
func (r UpdateOrderRequest) Apply(o *purchasing.Order) error {
	if err := r.TotalsPatch.apply(&o.Totals); err != nil {
		return err
	}
	if r.FechaOrden != nil {
		t, err := intake.ParseDate("fecha_orden", *r.FechaOrden)
		if err != nil {
			return err
		}
		o.FechaOrden = t
	}
	if r.FechaEntrega != nil {
		t, err := intake.ParseDate("fecha_entrega", *r.FechaEntrega)
		if err != nil {
			return err
		}
		o.FechaEntrega = t
	}
	setString(&o.NumeroOrden, r.NumeroOrden)
	setString(&o.NombreCliente, r.NombreCliente)
	setString(&o.MetodoPago, r.MetodoPago)
	setString(&o.Estado, r.Estado)
	if r.RFCCliente != nil {
		o.RFCCliente = strings.ToUpper(strings.TrimSpace(*r.RFCCliente))
	}
	if r.ProveedorID != nil {
		o.ProveedorID = r.ProveedorID
	}
	if r.RequiereFactura != nil {
		o.RequiereFactura = *r.RequiereFactura
	}
	if r.Notas != nil {
		o.Notas = *r.Notas
	}
	return nil
}

// UpdateInvoiceRequest represents a request to update an invoice header
type UpdateInvoiceRequest struct {
	TotalsPatch
	NumeroFactura   *string    `json:"numero_factura" binding:"omitempty,max=50"`
	NombreDocumento *string    `json:"nombre_documento" binding:"omitempty,max=200"`
	ProveedorID     *uuid.UUID `json:"proveedor_id"`
	Proveedor       *string    `json:"proveedor" binding:"omitempty,max=200"`
	FechaFactura    *string    `json:"fecha_factura"`
	Estado          *string    `json:"estado" binding:"omitempty,max=30"`
	Notas           *string    `json:"notas"`
}

// Apply implements HeaderPatch
func (r UpdateInvoiceRequest) Apply(f *purchasing.Invoice) error {
	if err := r.TotalsPatch.apply(&f.Totals); err != nil {
		return err
	}
	if r.FechaFactura != nil {
		t, err := intake.ParseDate("fecha_factura", *r.FechaFactura)
		if err != nil {
			return err
		}
		f.FechaFactura = t
	}
	setString(&f.NumeroFactura, r.NumeroFactura)
	setString(&f.NombreDocumento, r.NombreDocumento)
	setString(&f.Proveedor, r.Proveedor)
	setString(&f.Estado, r.Estado)
	if r.ProveedorID != nil {
		f.ProveedorID = r.ProveedorID
	}
	if r.Notas != nil {
		f.Notas = *r.Notas
	}
	return nil
}

// UpdateWorkOrderRequest represents a request to update a work order header
type UpdateWorkOrderRequest struct {
	TotalsPatch
	NombreCliente       *string `json:"nombre_cliente" binding:"omitempty,max=200"`
	Direccion           *string `json:"direccion" binding:"omitempty,max=300"`
	Telefono            *string `json:"telefono" binding:"omitempty,max=30"`
	NoPlacas            *string `json:"no_placas" binding:"omitempty,max=20"`
	Marca               *string `json:"marca" binding:"omitempty,max=50"`
	Modelo              *string `json:"modelo" binding:"omitempty,max=50"`
	Anio                *int    `json:"anio" binding:"omitempty,min=1900,max=2100"`
	Color               *string `json:"color" binding:"omitempty,max=30"`
	Kilometraje         *int    `json:"kilometraje" binding:"omitempty,min=0"`
	DescripcionServicio *string `json:"descripcion_servicio"`
	Encargado           *string `json:"encargado" binding:"omitempty,max=100"`
	Ayudante            *string `json:"ayudante" binding:"omitempty,max=100"`
	FechaEntrada        *string `json:"fecha_entrada"`
	FechaSalida         *string `json:"fecha_salida"`
	Observaciones       *string `json:"observaciones"`
	Estado              *string `json:"estado" binding:"omitempty,max=30"`
}

// Apply implements HeaderPatch
func (r UpdateWorkOrderRequest) Apply(w *purchasing.WorkOrder) error {
	if err := r.TotalsPatch.apply(&w.Totals); err != nil {
		return err
	}
	if r.FechaEntrada != nil {
		t, err := intake.ParseDate("fecha_entrada", *r.FechaEntrada)
		if err != nil {
			return err
		}
		w.FechaEntrada = t
	}
	if r.FechaSalida != nil {
		t, err := intake.ParseDate("fecha_salida", *r.FechaSalida)
		if err != nil {
			return err
		}
		w.FechaSalida = t
	}
	setString(&w.NombreCliente, r.NombreCliente)
	setString(&w.Direccion, r.Direccion)
	setString(&w.Telefono, r.Telefono)
	setString(&w.Marca, r.Marca)
	setString(&w.Modelo, r.Modelo)
	setString(&w.Color, r.Color)
	setString(&w.Encargado, r.Encargado)
	setString(&w.Ayudante, r.Ayudante)
	setString(&w.Estado, r.Estado)
	if r.NoPlacas != nil {
		w.NoPlacas = strings.ToUpper(strings.TrimSpace(*r.NoPlacas))
	}
	if r.Anio != nil {
		w.Anio = *r.Anio
	}
	if r.Kilometraje != nil {
		w.Kilometraje = *r.Kilometraje
	}
	if r.DescripcionServicio != nil {
		w.DescripcionServicio = *r.DescripcionServicio
	}
	if r.Observaciones != nil {
		w.Observaciones = *r.Observaciones
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
