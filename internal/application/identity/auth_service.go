package identity

import (
	"context"

	"github.com/gestion-compras/backend/internal/domain/identity"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/gestion-compras/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// ErrInvalidToken is returned by Verify for any unusable token
var ErrInvalidToken = shared.NewDomainError(shared.CodeUnauthorized, "Token inválido o expirado")

// AuthService handles authentication operations
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login authenticates a user and returns a signed token
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if input.Username == "" || input.Password == "" {
		return nil, shared.NewValidationError("Usuario y contraseña son requeridos")
	}

	s.logger.Info("Login attempt", zap.String("username", input.Username), zap.String("ip", input.IP))

	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if !shared.IsNotFound(err) {
			s.logger.Error("Failed to look up user during login", zap.Error(err))
			return nil, err
		}
		s.logger.Warn("User not found during login", zap.String("username", input.Username))
		return nil, identity.ErrInvalidCredentials
	}

	if !user.Activo {
		s.logger.Warn("Login attempt for deactivated account", zap.String("username", input.Username))
		return nil, identity.ErrUserInactive
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("username", input.Username))
		return nil, identity.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(auth.GenerateTokenInput{
		UserID:   user.ID,
		Username: user.Username,
		Rol:      user.Rol,
	})
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}

	user.RecordLogin()
	if err := s.userRepo.Save(ctx, user); err != nil {
		// Don't fail the login - just log the error
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in successfully",
		zap.String("username", user.Username),
		zap.String("user_id", user.ID.String()))

	return &LoginResult{
		Token:     token.AccessToken,
		ExpiresAt: token.ExpiresAt,
		TokenType: token.TokenType,
		User:      toUserInfo(user),
	}, nil
}

// Verify validates a token and checks that its user still exists and is active
func (s *AuthService) Verify(ctx context.Context, tokenString string) (*UserInfo, error) {
	if tokenString == "" {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "Token no proporcionado")
	}

	claims, err := s.jwtService.ValidateToken(tokenString)
	if err != nil {
		s.logger.Debug("Token validation failed", zap.Error(err))
		return nil, ErrInvalidToken
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.Activo {
		return nil, ErrInvalidToken
	}

	info := toUserInfo(user)
	return &info, nil
}

// ChangePassword changes a user's password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	if input.OldPassword == "" || input.NewPassword == "" {
		return shared.NewValidationError("Contraseña actual y nueva son requeridas")
	}

	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		if shared.IsNotFound(err) {
			return shared.NewDomainError(shared.CodeNotFound, "Usuario no encontrado")
		}
		return err
	}

	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to update user after password change", zap.Error(err))
		return err
	}

	s.logger.Info("User password changed", zap.String("user_id", input.UserID.String()))

	return nil
}
