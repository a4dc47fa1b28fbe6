package printing

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gestion-compras/backend/internal/domain/purchasing"
	infra "github.com/gestion-compras/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

func baseData(title, number string, date *time.Time, status string, lines []purchasing.LineItem, totals purchasing.Totals) *infra.DocumentData {
	data := &infra.DocumentData{
		Title:    title,
		Number:   number,
		Date:     date,
		Status:   status,
		Lines:    make([]infra.LineData, 0, len(lines)),
		Subtotal: totals.Subtotal,
		IVA:      totals.IVA,
		Total:    totals.Total,
	}
	for _, line := range lines {
		data.Lines = append(data.Lines, infra.LineData{
			Cantidad:       line.Cantidad,
			Descripcion:    line.Descripcion,
			PrecioUnitario: line.PrecioUnitario,
			Importe:        line.Importe,
		})
	}
	return data
}

func (s *DocumentPrintService) orderData(ctx context.Context, o *purchasing.Order) *infra.DocumentData {
	data := baseData("Orden de compra", o.NumeroOrden, o.FechaOrden, o.Estado, o.Lines(), o.Totals)
	data.Notes = o.Notas

	if o.ProveedorID != nil && s.suppliers != nil {
		supplier, err := s.suppliers.FindByID(ctx, *o.ProveedorID)
		if err != nil {
			// the PDF is still useful without the supplier block
			s.logger.Warn("Supplier not available for order PDF",
				zap.String("proveedor_id", o.ProveedorID.String()),
				zap.Error(err))
		} else {
			data.Party = &infra.PartyInfo{
				Label:   "Proveedor",
				Name:    supplier.NombreSocial,
				TaxID:   supplier.RFC,
				Contact: supplier.Contacto,
				Phone:   supplier.Telefono,
				Email:   supplier.Email,
				Address: supplier.Direccion,
			}
		}
	}

	requiereFactura := "No"
	if o.RequiereFactura {
		requiereFactura = "Sí"
	}
	data.Fields = []infra.Field{
		{Label: "Cliente", Value: o.NombreCliente},
		{Label: "RFC cliente", Value: o.RFCCliente},
		{Label: "Fecha de entrega", Value: formatDate(o.FechaEntrega)},
		{Label: "Método de pago", Value: o.MetodoPago},
		{Label: "Requiere factura", Value: requiereFactura},
	}
	return data
}

func invoiceData(f *purchasing.Invoice) *infra.DocumentData {
	data := baseData("Factura", f.NumeroFactura, f.FechaFactura, f.Estado, f.Lines(), f.Totals)
	data.Notes = f.Notas
	data.Party = &infra.PartyInfo{Label: "Proveedor", Name: f.Proveedor}
	if f.NombreDocumento != "" {
		data.Fields = append(data.Fields, infra.Field{Label: "Documento", Value: f.NombreDocumento})
	}
	return data
}

func workOrderData(w *purchasing.WorkOrder) *infra.DocumentData {
	data := baseData("Orden de trabajo", "", w.FechaEntrada, w.Estado, w.Lines(), w.Totals)
	data.Notes = w.Observaciones
	data.Party = &infra.PartyInfo{
		Label:   "Cliente",
		Name:    w.NombreCliente,
		Phone:   w.Telefono,
		Address: w.Direccion,
	}

	anio := ""
	if w.Anio > 0 {
		anio = strconv.Itoa(w.Anio)
	}
	kilometraje := ""
	if w.Kilometraje > 0 {
		kilometraje = strconv.Itoa(w.Kilometraje) + " km"
	}
	data.Fields = []infra.Field{
		{Label: "Placas", Value: w.NoPlacas},
		{Label: "Vehículo", Value: joinNonEmpty(w.Marca, w.Modelo, anio)},
		{Label: "Color", Value: w.Color},
		{Label: "Kilometraje", Value: kilometraje},
		{Label: "Servicio", Value: w.DescripcionServicio},
		{Label: "Encargado", Value: w.Encargado},
		{Label: "Ayudante", Value: w.Ayudante},
		{Label: "Fecha de salida", Value: formatDate(w.FechaSalida)},
	}
	return data
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
