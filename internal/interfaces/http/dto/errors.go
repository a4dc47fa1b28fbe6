package dto

import (
	"net/http"

	"github.com/gestion-compras/backend/internal/domain/shared"
)

// Error codes returned in error.code. Domain codes are passed through
// unchanged so clients see the same value the service produced.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInvalidJSON  = "INVALID_JSON"
	ErrCodeValidation   = shared.CodeValidation
	ErrCodeInvalidInput = shared.CodeInvalidInput
	ErrCodeNotFound     = shared.CodeNotFound
	ErrCodeRouteMissing = "ROUTE_NOT_FOUND"
	ErrCodeConflict     = shared.CodeAlreadyExists
	ErrCodePersistence  = shared.CodePersistence

	ErrCodeUnauthorized = shared.CodeUnauthorized
	ErrCodeUserInactive = "USER_INACTIVE"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "INVALID_TOKEN"

	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRenderFailed    = "RENDER_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodePersistence:  http.StatusInternalServerError,
	ErrCodeRenderFailed: http.StatusInternalServerError,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeUserInactive: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeRouteMissing: http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
