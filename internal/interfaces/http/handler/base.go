package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/gestion-compras/backend/internal/infrastructure/logger"
	"github.com/gestion-compras/backend/internal/interfaces/http/dto"
	"github.com/gestion-compras/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgInternalError = "Error interno del servidor"
	msgInvalidID     = "ID inválido"
	msgInvalidJSON   = "Cuerpo de la solicitud inválido"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	return middleware.GetRequestID(c)
}

// Success sends a 200 response with data
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessList sends a 200 response with data and its item count
func (h *BaseHandler) SuccessList(c *gin.Context, data any, count int) {
	c.JSON(http.StatusOK, dto.NewListResponse(data, count))
}

// Created sends a 201 response with a message and the created resource
func (h *BaseHandler) Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, dto.NewMessageResponse(message, data))
}

// Message sends a 200 response with a message and optional data
func (h *BaseHandler) Message(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, dto.NewMessageResponse(message, data))
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, msgInternalError)
}

// HandleError converts an error to an HTTP response. Domain errors keep
// their code and message; persistence and unknown errors are logged and
// answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && domainErr.Code != shared.CodePersistence {
		h.Error(c, dto.GetHTTPStatus(domainErr.Code), domainErr.Code, domainErr.Message)
		return
	}

	logger.L(c.Request.Context()).Error("Request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	h.InternalError(c)
}

// bindJSON binds the request body into req, answering 400 on failure.
// It returns false when the response has been written.
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		middleware.HandleValidationError(c, err)
		return false
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge,
			"El cuerpo de la solicitud excede el tamaño permitido")
		return false
	}
	if errors.Is(err, io.EOF) {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Cuerpo de la solicitud vacío")
		return false
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, msgInvalidJSON)
	return false
}

// bindQuery binds query parameters into req, answering 400 on failure
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			middleware.HandleValidationError(c, err)
			return false
		}
		h.BadRequest(c, "Parámetros de consulta inválidos")
		return false
	}
	return true
}

// parseID parses the :id path parameter, answering 400 when it is not a UUID
func (h *BaseHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, msgInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
