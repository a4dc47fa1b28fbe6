package handler

import (
	"time"

	appidentity "github.com/gestion-compras/backend/internal/application/identity"
)

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=128"`
}

// ChangePasswordRequest represents the request body for password change
type ChangePasswordRequest struct {
	PasswordActual string `json:"passwordActual" binding:"required"`
	PasswordNueva  string `json:"passwordNueva" binding:"required,min=6,max=128"`
}

// LoginResponse is the body of a successful login. Token and user sit at
// the top level, as existing clients expect.
type LoginResponse struct {
	Success   bool                 `json:"success" example:"true"`
	Message   string               `json:"message" example:"Login exitoso"`
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expires_at"`
	TokenType string               `json:"token_type" example:"Bearer"`
	Usuario   appidentity.UserInfo `json:"usuario"`
}

// VerifyResponse is the body of a successful token check
type VerifyResponse struct {
	Success bool                 `json:"success" example:"true"`
	Usuario appidentity.UserInfo `json:"usuario"`
}
