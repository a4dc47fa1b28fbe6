package purchasing

import (
	"time"

	"github.com/gestion-compras/backend/internal/domain/shared"
)

// WorkOrderStateInProgress is the state of a vehicle still in the shop
const WorkOrderStateInProgress = "En Proceso"

// WorkOrder is a vehicle service order header (ordenes_trabajo)
type WorkOrder struct {
	shared.BaseEntity
	Totals
	NombreCliente       string     `json:"nombre_cliente" gorm:"type:varchar(200)"`
	Direccion           string     `json:"direccion" gorm:"type:varchar(300)"`
	Telefono            string     `json:"telefono" gorm:"type:varchar(30)"`
	NoPlacas            string     `json:"no_placas" gorm:"type:varchar(20)"`
	Marca               string     `json:"marca" gorm:"type:varchar(50)"`
	Modelo              string     `json:"modelo" gorm:"type:varchar(50)"`
	Anio                int        `json:"anio"`
	Color               string     `json:"color" gorm:"type:varchar(30)"`
	Kilometraje         int        `json:"kilometraje"`
	DescripcionServicio string     `json:"descripcion_servicio" gorm:"type:text"`
	Encargado           string     `json:"encargado" gorm:"type:varchar(100)"`
	Ayudante            string     `json:"ayudante" gorm:"type:varchar(100)"`
	FechaEntrada        *time.Time `json:"fecha_entrada,omitempty"`
	FechaSalida         *time.Time `json:"fecha_salida,omitempty"`
	Observaciones       string     `json:"observaciones" gorm:"type:text"`
	Estado              string     `json:"estado" gorm:"type:varchar(30);not null;default:'En Proceso'"`

	Detalles []LineItem `json:"detalles" gorm:"-"`
}

// TableName returns the table name for GORM
func (WorkOrder) TableName() string {
	return "ordenes_trabajo"
}

// NewWorkOrder creates an empty work order header with a generated id
func NewWorkOrder() *WorkOrder {
	return &WorkOrder{BaseEntity: shared.NewBaseEntity()}
}

// Kind implements Document
func (w *WorkOrder) Kind() Kind { return KindWorkOrder }

// Lines implements Document
func (w *WorkOrder) Lines() []LineItem { return w.Detalles }

// SetLines implements Document
func (w *WorkOrder) SetLines(lines []LineItem) { w.Detalles = lines }

// DocumentTotals implements Document
func (w *WorkOrder) DocumentTotals() *Totals { return &w.Totals }

// ApplyDefaults implements Document
func (w *WorkOrder) ApplyDefaults() {
	if w.Estado == "" {
		w.Estado = WorkOrderStateInProgress
	}
	if w.FechaEntrada == nil {
		now := time.Now()
		w.FechaEntrada = &now
	}
}
