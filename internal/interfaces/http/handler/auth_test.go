package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appidentity "github.com/gestion-compras/backend/internal/application/identity"
	"github.com/gestion-compras/backend/internal/domain/identity"
	"github.com/gestion-compras/backend/internal/infrastructure/auth"
	"github.com/gestion-compras/backend/internal/infrastructure/config"
	"github.com/gestion-compras/backend/internal/infrastructure/persistence"
	"github.com/gestion-compras/backend/internal/interfaces/http/dto"
	"github.com/gestion-compras/backend/internal/interfaces/http/middleware"
	"github.com/gestion-compras/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type authFixture struct {
	db     *gorm.DB
	jwt    *auth.JWTService
	router *gin.Engine
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-with-at-least-32-characters",
		Expiration: time.Hour,
		Issuer:     "gestion-compras-test",
	})
	svc := appidentity.NewAuthService(persistence.NewGormUserRepository(db), jwtService, zap.NewNop())
	h := NewAuthHandler(svc)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.POST("/api/auth/login", h.Login)
	router.GET("/api/auth/verificar", h.Verify)
	protected := router.Group("/api/auth", middleware.JWTAuthMiddleware(jwtService))
	protected.POST("/cambiar-password", h.ChangePassword)

	return &authFixture{db: db, jwt: jwtService, router: router}
}

func (f *authFixture) seedUser(t *testing.T, username, password string, active bool) *identity.User {
	t.Helper()

	user, err := identity.NewUser(username, password, identity.RoleAdmin)
	require.NoError(t, err)
	user.NombreCompleto = "Administrador"
	require.NoError(t, f.db.Create(user).Error)
	if !active {
		require.NoError(t, f.db.Model(user).Update("activo", false).Error)
	}
	return user
}

func (f *authFixture) login(t *testing.T, username, password string) LoginResponse {
	t.Helper()

	w := performRequest(f.router, http.MethodPost, "/api/auth/login", LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginResponse
	require.NoError(t, jsonUnmarshal(w, &resp))
	return resp
}

func (f *authFixture) withToken(method, path, token string, body any) *httptest.ResponseRecorder {
	req := newJSONRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Login(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "admin", "secreto123", true)
	f.seedUser(t, "baja", "secreto123", false)

	t.Run("success returns token and user", func(t *testing.T) {
		resp := f.login(t, "admin", "secreto123")

		assert.True(t, resp.Success)
		assert.Equal(t, "Login exitoso", resp.Message)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, user.ID, resp.Usuario.ID)
		assert.Equal(t, "admin", resp.Usuario.Username)
		assert.Equal(t, identity.RoleAdmin, resp.Usuario.Rol)

		claims, err := f.jwt.ValidateToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := performRequest(f.router, http.MethodPost, "/api/auth/login",
			LoginRequest{Username: "admin", Password: "otra-clave"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
		assert.Equal(t, "Usuario o contraseña incorrectos", resp.Message)
	})

	t.Run("unknown user gets the same answer", func(t *testing.T) {
		w := performRequest(f.router, http.MethodPost, "/api/auth/login",
			LoginRequest{Username: "nadie", Password: "secreto123"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Usuario o contraseña incorrectos", decodeResponse(t, w).Message)
	})

	t.Run("deactivated user", func(t *testing.T) {
		w := performRequest(f.router, http.MethodPost, "/api/auth/login",
			LoginRequest{Username: "baja", Password: "secreto123"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeUserInactive, decodeResponse(t, w).Error.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := performRequest(f.router, http.MethodPost, "/api/auth/login", `{"username":"admin"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
	})
}

func TestAuthHandler_Verify(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "admin", "secreto123", true)
	token := f.login(t, "admin", "secreto123").Token

	t.Run("valid token", func(t *testing.T) {
		w := f.withToken(http.MethodGet, "/api/auth/verificar", token, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp VerifyResponse
		require.NoError(t, jsonUnmarshal(w, &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "admin", resp.Usuario.Username)
	})

	t.Run("missing token", func(t *testing.T) {
		w := performRequest(f.router, http.MethodGet, "/api/auth/verificar", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Token no proporcionado", decodeResponse(t, w).Message)
	})

	t.Run("tampered token", func(t *testing.T) {
		w := f.withToken(http.MethodGet, "/api/auth/verificar", token+"x", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Token inválido o expirado", decodeResponse(t, w).Message)
	})
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "admin", "secreto123", true)
	token := f.login(t, "admin", "secreto123").Token

	t.Run("wrong current password", func(t *testing.T) {
		w := f.withToken(http.MethodPost, "/api/auth/cambiar-password", token,
			ChangePasswordRequest{PasswordActual: "equivocada", PasswordNueva: "nueva-clave"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Contraseña actual incorrecta", decodeResponse(t, w).Message)
	})

	t.Run("new password too short", func(t *testing.T) {
		w := f.withToken(http.MethodPost, "/api/auth/cambiar-password", token,
			ChangePasswordRequest{PasswordActual: "secreto123", PasswordNueva: "abc"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("success allows login with the new password", func(t *testing.T) {
		w := f.withToken(http.MethodPost, "/api/auth/cambiar-password", token,
			ChangePasswordRequest{PasswordActual: "secreto123", PasswordNueva: "nueva-clave"})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Contraseña actualizada exitosamente", decodeResponse(t, w).Message)

		assert.NotEmpty(t, f.login(t, "admin", "nueva-clave").Token)
	})

	t.Run("requires a token", func(t *testing.T) {
		w := performRequest(f.router, http.MethodPost, "/api/auth/cambiar-password",
			ChangePasswordRequest{PasswordActual: "x", PasswordNueva: "yyyyyy"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
