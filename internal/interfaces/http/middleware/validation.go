package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gestion-compras/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ValidationFailedMessage is the top-level message of a 400 validation response
const ValidationFailedMessage = "Datos de entrada inválidos"

// SetupValidator makes validation errors report JSON (or form) field names
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse(ValidationFailedMessage, requestID, details)
}

// HandleValidationError answers 400 with the rejected fields
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Campo requerido"
	case "email":
		return "Formato de correo inválido"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Debe tener al menos " + e.Param() + " caracteres"
		}
		if e.Type().Kind() == reflect.Slice {
			return "Debe contener al menos " + e.Param() + " elementos"
		}
		return "Debe ser al menos " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Debe tener como máximo " + e.Param() + " caracteres"
		}
		return "Debe ser como máximo " + e.Param()
	case "uuid":
		return "UUID inválido"
	case "oneof":
		return "Debe ser uno de: " + e.Param()
	case "gte":
		return "Debe ser mayor o igual a " + e.Param()
	case "lte":
		return "Debe ser menor o igual a " + e.Param()
	case "gt":
		return "Debe ser mayor que " + e.Param()
	case "lt":
		return "Debe ser menor que " + e.Param()
	case "dive":
		return "Elemento inválido"
	default:
		return "Valor inválido"
	}
}
