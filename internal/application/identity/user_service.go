package identity

import (
	"context"
	"strings"

	"github.com/gestion-compras/backend/internal/domain/identity"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService handles user management operations run by administrators
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Create creates a new active user
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserInfo, error) {
	s.logger.Info("Creating new user", zap.String("username", input.Username))

	user, err := identity.NewUser(input.Username, input.Password, input.Rol)
	if err != nil {
		return nil, err
	}
	user.NombreCompleto = strings.TrimSpace(input.NombreCompleto)
	user.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	info := toUserInfo(user)
	return &info, nil
}

// ResetPassword sets a new password without checking the old one
func (s *UserService) ResetPassword(ctx context.Context, username, newPassword string) error {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if shared.IsNotFound(err) {
			return shared.NewDomainError(shared.CodeNotFound, "Usuario no encontrado")
		}
		return err
	}

	if err := user.SetPassword(newPassword); err != nil {
		return err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to reset password", zap.Error(err))
		return err
	}

	s.logger.Info("User password reset", zap.String("user_id", user.ID.String()))

	return nil
}

// Deactivate blocks a user from logging in
func (s *UserService) Deactivate(ctx context.Context, username string) error {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if shared.IsNotFound(err) {
			return shared.NewDomainError(shared.CodeNotFound, "Usuario no encontrado")
		}
		return err
	}

	user.Deactivate()
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to deactivate user", zap.Error(err))
		return err
	}

	s.logger.Info("User deactivated", zap.String("user_id", user.ID.String()))

	return nil
}
