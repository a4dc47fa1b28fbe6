package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gestion-compras/backend/internal/infrastructure/auth"
	"github.com/gestion-compras/backend/internal/infrastructure/logger"
	"github.com/gestion-compras/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTUsernameKey = "username"
	JWTRoleKey     = "jwt_rol"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// TokenValidator validates bearer tokens
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	Validator TokenValidator
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	Logger           *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(validator TokenValidator) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		Validator: validator,
		SkipPaths: []string{
			"/api/health",
			"/api/auth/login",
			"/api/auth/verificar",
		},
		SkipPathPrefixes: []string{
			"/swagger",
			"/uploads",
		},
	}
}

// JWTAuthMiddleware creates JWT authentication middleware
func JWTAuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(validator))
}

// JWTAuthMiddlewareWithConfig creates JWT authentication middleware with custom config
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || skipAuth(c.Request.URL.Path, cfg) {
			c.Next()
			return
		}

		tokenString, ok := BearerToken(c)
		if !ok {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, dto.ErrCodeUnauthorized, "Token no proporcionado")
			return
		}

		claims, err := cfg.Validator.ValidateToken(tokenString)
		if err != nil {
			code, message := authErrorResponse(err)
			abortUnauthorized(c, cfg, err, code, message)
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTUsernameKey, claims.Username)
		c.Set(JWTRoleKey, claims.Rol)

		ctx, reqLogger := logger.WithUsername(c.Request.Context(), logger.FromContext(c.Request.Context()), claims.Username)
		c.Request = c.Request.WithContext(ctx)
		c.Set("logger", reqLogger)

		c.Next()
	}
}

func skipAuth(path string, cfg JWTMiddlewareConfig) bool {
	for _, p := range cfg.SkipPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range cfg.SkipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// BearerToken extracts the token of an "Authorization: Bearer" header
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

// authErrorResponse maps a validation error to an error code and message
func authErrorResponse(err error) (string, string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "Token expirado"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		return dto.ErrCodeTokenInvalid, "Token aún no válido"
	default:
		return dto.ErrCodeTokenInvalid, "Token inválido"
	}
}

func abortUnauthorized(c *gin.Context, cfg JWTMiddlewareConfig, err error, code, message string) {
	cfg.Logger.Debug("JWT authentication failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", GetRequestID(c)),
	)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTUserID retrieves the user ID from JWT claims in context
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetJWTUsername retrieves the username from JWT claims in context
func GetJWTUsername(c *gin.Context) string {
	return c.GetString(JWTUsernameKey)
}
