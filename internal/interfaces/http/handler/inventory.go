package handler

import (
	"strconv"

	inventoryapp "github.com/gestion-compras/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// defaultMovementLimit is the page size of the movement history
const defaultMovementLimit = 50

// InventoryHandler handles catalog and stock endpoints
type InventoryHandler struct {
	BaseHandler
	catalogService *inventoryapp.CatalogService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(catalogService *inventoryapp.CatalogService) *InventoryHandler {
	return &InventoryHandler{
		catalogService: catalogService,
	}
}

// List godoc
// @Summary      List catalog items
// @Tags         inventario
// @Produce      json
// @Security     BearerAuth
// @Param        activo    query bool   false "Only active or inactive items"
// @Param        categoria query string false "Category"
// @Param        buscar    query string false "Search in code and name"
// @Success      200 {object} dto.Response{data=[]inventoryapp.CatalogItemResponse}
// @Router       /inventario [get]
func (h *InventoryHandler) List(c *gin.Context) {
	var filter inventoryapp.CatalogListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	items, err := h.catalogService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, items, len(items))
}

// LowStock godoc
// @Summary      List items at or below their minimum stock
// @Tags         inventario
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response{data=[]inventoryapp.CatalogItemResponse}
// @Router       /inventario/stock-bajo [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.catalogService.LowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, items, len(items))
}

// GetByID godoc
// @Summary      Get catalog item
// @Tags         inventario
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Item ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventoryapp.CatalogItemResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /inventario/{id} [get]
func (h *InventoryHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	item, err := h.catalogService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Create godoc
// @Summary      Create catalog item
// @Tags         inventario
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body inventoryapp.CreateCatalogItemRequest true "Item"
// @Success      201 {object} dto.Response{data=inventoryapp.CatalogItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /inventario [post]
func (h *InventoryHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateCatalogItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.catalogService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Item creado exitosamente", item)
}

// Update godoc
// @Summary      Update catalog item
// @Tags         inventario
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                                true "Item ID" format(uuid)
// @Param        request body inventoryapp.UpdateCatalogItemRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=inventoryapp.CatalogItemResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /inventario/{id} [put]
func (h *InventoryHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req inventoryapp.UpdateCatalogItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.catalogService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Item actualizado exitosamente", item)
}

// Delete godoc
// @Summary      Delete catalog item
// @Tags         inventario
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Item ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /inventario/{id} [delete]
func (h *InventoryHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.catalogService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Item eliminado exitosamente", nil)
}

// AdjustStock godoc
// @Summary      Add or remove stock
// @Description  Stock never drops below zero through this endpoint
// @Tags         inventario
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                          true "Item ID" format(uuid)
// @Param        request body inventoryapp.AdjustStockRequest true "Quantity and operation"
// @Success      200 {object} dto.Response{data=inventoryapp.CatalogItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /inventario/{id}/stock [patch]
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req inventoryapp.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.catalogService.AdjustStock(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Stock actualizado exitosamente", item)
}

// Movements godoc
// @Summary      Stock movement history of an item
// @Tags         inventario
// @Produce      json
// @Security     BearerAuth
// @Param        id     path  string true  "Item ID" format(uuid)
// @Param        limite query int    false "Maximum entries (default 50)"
// @Success      200 {object} dto.Response{data=[]inventoryapp.StockMovementResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /inventario/{id}/movimientos [get]
func (h *InventoryHandler) Movements(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	limit := defaultMovementLimit
	if raw := c.Query("limite"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.BadRequest(c, "limite debe ser un entero positivo")
			return
		}
		limit = n
	}

	movements, err := h.catalogService.Movements(c.Request.Context(), id, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, movements, len(movements))
}
