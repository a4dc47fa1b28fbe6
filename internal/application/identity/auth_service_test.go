package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gestion-compras/backend/internal/domain/identity"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/gestion-compras/backend/internal/infrastructure/auth"
	"github.com/gestion-compras/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars",
		Expiration: 24 * time.Hour,
		Issuer:     "gestion-compras",
	})
}

func newTestUser(t *testing.T, password string) *identity.User {
	t.Helper()
	user, err := identity.NewUser("operador", password, identity.RoleUser)
	require.NoError(t, err)
	user.NombreCompleto = "Operador de Compras"
	return user
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a token and the user on valid credentials", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, "secreto1")
		repo.On("FindByUsername", ctx, "operador").Return(user, nil)
		repo.On("Save", ctx, user).Return(nil)

		svc := NewAuthService(repo, newTestJWTService(), zap.NewNop())
		result, err := svc.Login(ctx, LoginInput{Username: "operador", Password: "secreto1"})

		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "Bearer", result.TokenType)
		assert.Equal(t, user.ID, result.User.ID)
		assert.Equal(t, "Operador de Compras", result.User.NombreCompleto)
		assert.NotNil(t, user.LastLoginAt)
		repo.AssertExpectations(t)
	})

	t.Run("rejects a wrong password with the generic message", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByUsername", ctx, "operador").Return(newTestUser(t, "secreto1"), nil)

		svc := NewAuthService(repo, newTestJWTService(), zap.NewNop())
		_, err := svc.Login(ctx, LoginInput{Username: "operador", Password: "otra"})

		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects an unknown user with the same message", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByUsername", ctx, "nadie").Return(nil, shared.ErrNotFound)

		svc := NewAuthService(repo, newTestJWTService(), zap.NewNop())
		_, err := svc.Login(ctx, LoginInput{Username: "nadie", Password: "secreto1"})

		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	})

	t.Run("rejects inactive users", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, "secreto1")
		user.Deactivate()
		repo.On("FindByUsername", ctx, "operador").Return(user, nil)

		svc := NewAuthService(repo, newTestJWTService(), zap.NewNop())
		_, err := svc.Login(ctx, LoginInput{Username: "operador", Password: "secreto1"})

		assert.ErrorIs(t, err, identity.ErrUserInactive)
	})

	t.Run("requires username and password", func(t *testing.T) {
		svc := NewAuthService(new(MockUserRepository), newTestJWTService(), zap.NewNop())
		_, err := svc.Login(ctx, LoginInput{Username: "operador"})

		assert.True(t, shared.IsValidation(err))
	})

	t.Run("does not hide repository failures", func(t *testing.T) {
		repo := new(MockUserRepository)
		dbErr := shared.NewPersistenceError("find user", errors.New("connection refused"))
		repo.On("FindByUsername", ctx, "operador").Return(nil, dbErr)

		svc := NewAuthService(repo, newTestJWTService(), zap.NewNop())
		_, err := svc.Login(ctx, LoginInput{Username: "operador", Password: "secreto1"})

		assert.True(t, shared.IsPersistence(err))
	})

	t.Run("a failed login stamp does not fail the login", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, "secreto1")
		repo.On("FindByUsername", ctx, "operador").Return(user, nil)
		repo.On("Save", ctx, user).Return(errors.New("write failed"))

		svc := NewAuthService(repo, newTestJWTService(), zap.NewNop())
		result, err := svc.Login(ctx, LoginInput{Username: "operador", Password: "secreto1"})

		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
	})
}

func TestAuthService_Verify(t *testing.T) {
	ctx := context.Background()
	jwtService := newTestJWTService()

	issue := func(t *testing.T, user *identity.User) string {
		token, err := jwtService.GenerateToken(auth.GenerateTokenInput{
			UserID: user.ID, Username: user.Username, Rol: user.Rol,
		})
		require.NoError(t, err)
		return token.AccessToken
	}

	t.Run("returns the user for a valid token", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, "secreto1")
		repo.On("FindByID", ctx, user.ID).Return(user, nil)

		svc := NewAuthService(repo, jwtService, zap.NewNop())
		info, err := svc.Verify(ctx, issue(t, user))

		require.NoError(t, err)
		assert.Equal(t, user.Username, info.Username)
		assert.Equal(t, identity.RoleUser, info.Rol)
	})

	t.Run("rejects tokens of deleted users", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, "secreto1")
		repo.On("FindByID", ctx, user.ID).Return(nil, shared.ErrNotFound)

		svc := NewAuthService(repo, jwtService, zap.NewNop())
		_, err := svc.Verify(ctx, issue(t, user))

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects tokens of deactivated users", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, "secreto1")
		token := issue(t, user)
		user.Deactivate()
		repo.On("FindByID", ctx, user.ID).Return(user, nil)

		svc := NewAuthService(repo, jwtService, zap.NewNop())
		_, err := svc.Verify(ctx, token)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects garbage and missing tokens", func(t *testing.T) {
		svc := NewAuthService(new(MockUserRepository), jwtService, zap.NewNop())

		_, err := svc.Verify(ctx, "garbage")
		assert.ErrorIs(t, err, ErrInvalidToken)

		_, err = svc.Verify(ctx, "")
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("changes the password", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, "secreto1")
		repo.On("FindByID", ctx, user.ID).Return(user, nil)
		repo.On("Save", ctx, user).Return(nil)

		svc := NewAuthService(repo, newTestJWTService(), zap.NewNop())
		err := svc.ChangePassword(ctx, ChangePasswordInput{
			UserID: user.ID, OldPassword: "secreto1", NewPassword: "nueva-clave",
		})

		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("nueva-clave"))
		repo.AssertExpectations(t)
	})

	t.Run("rejects a wrong current password", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, "secreto1")
		repo.On("FindByID", ctx, user.ID).Return(user, nil)

		svc := NewAuthService(repo, newTestJWTService(), zap.NewNop())
		err := svc.ChangePassword(ctx, ChangePasswordInput{
			UserID: user.ID, OldPassword: "incorrecta", NewPassword: "nueva-clave",
		})

		assert.ErrorIs(t, err, shared.ErrUnauthorized)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects a short new password", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, "secreto1")
		repo.On("FindByID", ctx, user.ID).Return(user, nil)

		svc := NewAuthService(repo, newTestJWTService(), zap.NewNop())
		err := svc.ChangePassword(ctx, ChangePasswordInput{
			UserID: user.ID, OldPassword: "secreto1", NewPassword: "abc",
		})

		assert.True(t, shared.IsValidation(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(MockUserRepository)
		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		svc := NewAuthService(repo, newTestJWTService(), zap.NewNop())
		err := svc.ChangePassword(ctx, ChangePasswordInput{
			UserID: id, OldPassword: "secreto1", NewPassword: "nueva-clave",
		})

		assert.True(t, shared.IsNotFound(err))
	})
}

func TestUserService(t *testing.T) {
	ctx := context.Background()

	t.Run("create hashes the password", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		svc := NewUserService(repo, zap.NewNop())
		info, err := svc.Create(ctx, CreateUserInput{
			Username: "Compras", Password: "secreto1", Rol: identity.RoleAdmin, Email: "Compras@Example.com",
		})

		require.NoError(t, err)
		assert.Equal(t, "compras", info.Username)
		assert.Equal(t, "compras@example.com", info.Email)
		saved := repo.Calls[0].Arguments.Get(1).(*identity.User)
		assert.True(t, saved.VerifyPassword("secreto1"))
	})

	t.Run("reset password", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, "secreto1")
		repo.On("FindByUsername", ctx, "operador").Return(user, nil)
		repo.On("Save", ctx, user).Return(nil)

		svc := NewUserService(repo, zap.NewNop())
		require.NoError(t, svc.ResetPassword(ctx, "operador", "otra-clave"))
		assert.True(t, user.VerifyPassword("otra-clave"))
	})

	t.Run("deactivate", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, "secreto1")
		repo.On("FindByUsername", ctx, "operador").Return(user, nil)
		repo.On("Save", ctx, user).Return(nil)

		svc := NewUserService(repo, zap.NewNop())
		require.NoError(t, svc.Deactivate(ctx, "operador"))
		assert.False(t, user.Activo)
	})

	t.Run("reset password of unknown user", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByUsername", ctx, "nadie").Return(nil, shared.ErrNotFound)

		svc := NewUserService(repo, zap.NewNop())
		err := svc.ResetPassword(ctx, "nadie", "otra-clave")
		assert.True(t, shared.IsNotFound(err))
	})
}
