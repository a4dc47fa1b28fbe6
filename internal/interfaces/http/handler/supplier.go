package handler

import (
	partnerapp "github.com/gestion-compras/backend/internal/application/partner"
	"github.com/gin-gonic/gin"
)

// SupplierHandler handles supplier-related API endpoints
type SupplierHandler struct {
	BaseHandler
	supplierService *partnerapp.SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(supplierService *partnerapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{
		supplierService: supplierService,
	}
}

// List godoc
// @Summary      List suppliers
// @Tags         proveedores
// @Produce      json
// @Security     BearerAuth
// @Param        buscar    query string false "Search in name, RFC and contact"
// @Param        rfc       query string false "Exact RFC"
// @Param        page      query int    false "Page number"
// @Param        page_size query int    false "Page size"
// @Success      200 {object} dto.Response{data=[]partnerapp.SupplierResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /proveedores [get]
func (h *SupplierHandler) List(c *gin.Context) {
	var filter partnerapp.SupplierListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	suppliers, err := h.supplierService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, suppliers, len(suppliers))
}

// GetByID godoc
// @Summary      Get supplier
// @Tags         proveedores
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Supplier ID" format(uuid)
// @Success      200 {object} dto.Response{data=partnerapp.SupplierResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /proveedores/{id} [get]
func (h *SupplierHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	supplier, err := h.supplierService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Create godoc
// @Summary      Create supplier
// @Tags         proveedores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body partnerapp.CreateSupplierRequest true "Supplier"
// @Success      201 {object} dto.Response{data=partnerapp.SupplierResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /proveedores [post]
func (h *SupplierHandler) Create(c *gin.Context) {
	var req partnerapp.CreateSupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}

	supplier, err := h.supplierService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Proveedor creado exitosamente", supplier)
}

// Update godoc
// @Summary      Update supplier
// @Tags         proveedores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                           true "Supplier ID" format(uuid)
// @Param        request body partnerapp.UpdateSupplierRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=partnerapp.SupplierResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /proveedores/{id} [put]
func (h *SupplierHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req partnerapp.UpdateSupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}

	supplier, err := h.supplierService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Proveedor actualizado exitosamente", supplier)
}

// Delete godoc
// @Summary      Delete supplier
// @Tags         proveedores
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Supplier ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /proveedores/{id} [delete]
func (h *SupplierHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.supplierService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Proveedor eliminado exitosamente", nil)
}
