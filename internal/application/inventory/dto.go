package inventory

import (
	"time"

	"github.com/gestion-compras/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCatalogItemRequest represents a request to create a catalog item
type CreateCatalogItemRequest struct {
	Codigo         string          `json:"codigo" binding:"required,min=1,max=50"`
	Nombre         string          `json:"nombre" binding:"required,min=1,max=200"`
	Descripcion    string          `json:"descripcion"`
	Categoria      string          `json:"categoria" binding:"max=100"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	StockActual    int             `json:"stock_actual" binding:"min=0"`
	StockMinimo    int             `json:"stock_minimo" binding:"min=0"`
	UnidadMedida   string          `json:"unidad_medida" binding:"max=20"`
	Activo         *bool           `json:"activo"`
}

// UpdateCatalogItemRequest represents a request to update a catalog item.
// Nil fields are left unchanged.
type UpdateCatalogItemRequest struct {
	Codigo         *string          `json:"codigo" binding:"omitempty,min=1,max=50"`
	Nombre         *string          `json:"nombre" binding:"omitempty,min=1,max=200"`
	Descripcion    *string          `json:"descripcion"`
	Categoria      *string          `json:"categoria" binding:"omitempty,max=100"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario"`
	StockActual    *int             `json:"stock_actual" binding:"omitempty,min=0"`
	StockMinimo    *int             `json:"stock_minimo" binding:"omitempty,min=0"`
	UnidadMedida   *string          `json:"unidad_medida" binding:"omitempty,max=20"`
	Activo         *bool            `json:"activo"`
}

// AdjustStockRequest is the body of PATCH /api/inventario/:id/stock
type AdjustStockRequest struct {
	Cantidad  int    `json:"cantidad" binding:"required,gt=0"`
	Operacion string `json:"operacion" binding:"required,oneof=sumar restar"`
}

// CatalogListFilter holds the query parameters of the catalog list
type CatalogListFilter struct {
	Activo    *bool  `form:"activo"`
	Categoria string `form:"categoria"`
	Buscar    string `form:"buscar"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=500"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// CatalogItemResponse represents a catalog item in API responses
type CatalogItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	Codigo         string          `json:"codigo"`
	Nombre         string          `json:"nombre"`
	Descripcion    string          `json:"descripcion"`
	Categoria      string          `json:"categoria"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	StockActual    int             `json:"stock_actual"`
	StockMinimo    int             `json:"stock_minimo"`
	UnidadMedida   string          `json:"unidad_medida"`
	Activo         bool            `json:"activo"`
	StockBajo      bool            `json:"stock_bajo"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// StockMovementResponse represents a stock movement in API responses
type StockMovementResponse struct {
	ID           uuid.UUID  `json:"id"`
	Tipo         string     `json:"tipo"`
	Cantidad     int        `json:"cantidad"`
	Referencia   string     `json:"referencia,omitempty"`
	ReferenciaID *uuid.UUID `json:"referencia_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToCatalogItemResponse converts a domain item to its response
func ToCatalogItemResponse(item *inventory.CatalogItem) CatalogItemResponse {
	return CatalogItemResponse{
		ID:             item.ID,
		Codigo:         item.Codigo,
		Nombre:         item.Nombre,
		Descripcion:    item.Descripcion,
		Categoria:      item.Categoria,
		PrecioUnitario: item.PrecioUnitario,
		StockActual:    item.StockActual,
		StockMinimo:    item.StockMinimo,
		UnidadMedida:   item.UnidadMedida,
		Activo:         item.Activo,
		StockBajo:      item.IsLowStock(),
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}

// ToCatalogItemResponses converts a slice of items
func ToCatalogItemResponses(items []inventory.CatalogItem) []CatalogItemResponse {
	responses := make([]CatalogItemResponse, len(items))
	for i := range items {
		responses[i] = ToCatalogItemResponse(&items[i])
	}
	return responses
}

func toStockMovementResponses(movements []inventory.StockMovement) []StockMovementResponse {
	responses := make([]StockMovementResponse, len(movements))
	for i, m := range movements {
		responses[i] = StockMovementResponse{
			ID:           m.ID,
			Tipo:         string(m.Tipo),
			Cantidad:     m.Cantidad,
			Referencia:   m.Referencia,
			ReferenciaID: m.ReferenciaID,
			CreatedAt:    m.CreatedAt,
		}
	}
	return responses
}
