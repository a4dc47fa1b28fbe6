package handler

import (
	"context"
	"net/http"

	"github.com/gestion-compras/backend/internal/application/intake"
	printingapp "github.com/gestion-compras/backend/internal/application/printing"
	purchasingapp "github.com/gestion-compras/backend/internal/application/purchasing"
	"github.com/gestion-compras/backend/internal/domain/purchasing"
	"github.com/gestion-compras/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentPrinter renders a stored document to PDF
type DocumentPrinter interface {
	Render(ctx context.Context, kind purchasing.Kind, id uuid.UUID) (*printingapp.PrintResult, error)
}

// documentHandler serves the endpoints shared by orders, invoices and work
// orders. P is the header patch body accepted by PUT.
type documentHandler[T purchasing.Document, P purchasingapp.HeaderPatch[T]] struct {
	BaseHandler
	service *purchasingapp.DocumentService[T]
	printer DocumentPrinter
}

func (h *documentHandler[T, P]) kind() purchasing.Kind {
	return h.service.Kind()
}

// List returns document headers matching the query filter
func (h *documentHandler[T, P]) List(c *gin.Context) {
	var filter purchasingapp.DocumentListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	docs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, docs, len(docs))
}

// GetByID returns a document with its lines
func (h *documentHandler[T, P]) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Update changes header fields. Lines are left untouched.
func (h *documentHandler[T, P]) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var patch P
	if !h.bindJSON(c, &patch) {
		return
	}

	doc, err := h.service.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, h.kind().Label()+" actualizada exitosamente", doc)
}

// Delete removes a document and its lines
func (h *documentHandler[T, P]) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, h.kind().Label()+" eliminada exitosamente", nil)
}

// PDF renders the document and sends the file as an attachment
func (h *documentHandler[T, P]) PDF(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if h.printer == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeRenderFailed, "Generación de PDF no disponible")
		return
	}

	result, err := h.printer.Render(c.Request.Context(), h.kind(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.FileAttachment(result.FullPath, result.Filename)
}

// OrderHandler handles purchase order endpoints
type OrderHandler struct {
	documentHandler[*purchasing.Order, purchasingapp.UpdateOrderRequest]
	intake *intake.IntakeService
}

// NewOrderHandler creates a new OrderHandler. printer may be nil.
func NewOrderHandler(service *purchasingapp.OrderService, intakeService *intake.IntakeService, printer DocumentPrinter) *OrderHandler {
	return &OrderHandler{
		documentHandler: documentHandler[*purchasing.Order, purchasingapp.UpdateOrderRequest]{
			service: service,
			printer: printer,
		},
		intake: intakeService,
	}
}

// Create godoc
// @Summary      Create purchase order
// @Description  Stores the order with its lines and decrements stock of the catalog items referenced
// @Tags         ordenes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body intake.CreateOrderRequest true "Order with lines"
// @Success      201 {object} dto.Response{data=purchasing.Order}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ordenes [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req intake.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.intake.CreateOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, h.kind().Label()+" creada exitosamente", order)
}

// InvoiceHandler handles invoice endpoints, including the attached file
type InvoiceHandler struct {
	documentHandler[*purchasing.Invoice, purchasingapp.UpdateInvoiceRequest]
	intake      *intake.IntakeService
	attachments *purchasingapp.AttachmentService
}

// NewInvoiceHandler creates a new InvoiceHandler. printer may be nil.
func NewInvoiceHandler(
	service *purchasingapp.InvoiceService,
	intakeService *intake.IntakeService,
	attachments *purchasingapp.AttachmentService,
	printer DocumentPrinter,
) *InvoiceHandler {
	return &InvoiceHandler{
		documentHandler: documentHandler[*purchasing.Invoice, purchasingapp.UpdateInvoiceRequest]{
			service: service,
			printer: printer,
		},
		intake:      intakeService,
		attachments: attachments,
	}
}

// Create godoc
// @Summary      Create invoice
// @Tags         facturas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body intake.CreateInvoiceRequest true "Invoice with lines"
// @Success      201 {object} dto.Response{data=purchasing.Invoice}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /facturas [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req intake.CreateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.intake.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, h.kind().Label()+" creada exitosamente", invoice)
}

// UploadFile godoc
// @Summary      Attach file to invoice
// @Description  Accepts PDF, JPG, PNG or XML in the "archivo" form field. A previous file is replaced.
// @Tags         facturas
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id      path     string true "Invoice ID" format(uuid)
// @Param        archivo formData file   true "File"
// @Success      200 {object} dto.Response{data=purchasing.Invoice}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /facturas/{id}/archivo [post]
func (h *InvoiceHandler) UploadFile(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("archivo")
	if err != nil {
		h.BadRequest(c, "No se proporcionó ningún archivo")
		return
	}
	if _, _, err := h.attachments.ValidateUpload(fileHeader.Filename, fileHeader.Size); err != nil {
		h.HandleError(c, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "No se pudo leer el archivo")
		return
	}
	defer file.Close()

	invoice, err := h.attachments.Upload(c.Request.Context(), purchasingapp.UploadInput{
		InvoiceID: id,
		Filename:  fileHeader.Filename,
		Size:      fileHeader.Size,
		Body:      file,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Archivo cargado exitosamente", invoice)
}

// DeleteFile godoc
// @Summary      Remove invoice file
// @Tags         facturas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=purchasing.Invoice}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /facturas/{id}/archivo [delete]
func (h *InvoiceHandler) DeleteFile(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	invoice, err := h.attachments.Remove(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Archivo eliminado exitosamente", invoice)
}

// WorkOrderHandler handles vehicle work order endpoints
type WorkOrderHandler struct {
	documentHandler[*purchasing.WorkOrder, purchasingapp.UpdateWorkOrderRequest]
	intake *intake.IntakeService
}

// NewWorkOrderHandler creates a new WorkOrderHandler. printer may be nil.
func NewWorkOrderHandler(service *purchasingapp.WorkOrderService, intakeService *intake.IntakeService, printer DocumentPrinter) *WorkOrderHandler {
	return &WorkOrderHandler{
		documentHandler: documentHandler[*purchasing.WorkOrder, purchasingapp.UpdateWorkOrderRequest]{
			service: service,
			printer: printer,
		},
		intake: intakeService,
	}
}

// Create godoc
// @Summary      Create work order
// @Tags         ordenes-trabajo
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body intake.CreateWorkOrderRequest true "Work order with lines"
// @Success      201 {object} dto.Response{data=purchasing.WorkOrder}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ordenes-trabajo [post]
func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req intake.CreateWorkOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	wo, err := h.intake.CreateWorkOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, h.kind().Label()+" creada exitosamente", wo)
}
