package handler

import (
	"errors"
	"net/http"

	appidentity "github.com/gestion-compras/backend/internal/application/identity"
	"github.com/gestion-compras/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *appidentity.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *appidentity.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login godoc
// @Summary      User login
// @Description  Authenticate with username and password and receive a JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), appidentity.LoginInput{
		Username: req.Username,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Success:   true,
		Message:   "Login exitoso",
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		TokenType: result.TokenType,
		Usuario:   result.User,
	})
}

// Verify godoc
// @Summary      Verify token
// @Description  Check the bearer token and return the user it belongs to
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} VerifyResponse
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/verificar [get]
func (h *AuthHandler) Verify(c *gin.Context) {
	token, _ := middleware.BearerToken(c)

	user, err := h.authService.Verify(c.Request.Context(), token)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, VerifyResponse{Success: true, Usuario: *user})
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Change the password of the authenticated user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ChangePasswordRequest true "Current and new password"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/cambiar-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		h.Unauthorized(c, "Token inválido")
		return
	}

	var req ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), appidentity.ChangePasswordInput{
		UserID:      userID,
		OldPassword: req.PasswordActual,
		NewPassword: req.PasswordNueva,
	}); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Message(c, "Contraseña actualizada exitosamente", nil)
}

// currentUserID returns the user id of the JWT claims
func currentUserID(c *gin.Context) (uuid.UUID, error) {
	raw := middleware.GetJWTUserID(c)
	if raw == "" {
		return uuid.Nil, errors.New("user id not found in context")
	}
	return uuid.Parse(raw)
}
