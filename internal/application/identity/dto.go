package identity

import (
	"time"

	"github.com/gestion-compras/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Username string
	Password string
	IP       string // Client IP for login tracking
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	TokenType string
	User      UserInfo
}

// UserInfo is the public view of a user returned by login and verify
type UserInfo struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	NombreCompleto string    `json:"nombre_completo"`
	Email          string    `json:"email"`
	Rol            string    `json:"rol"`
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// CreateUserInput contains input for creating a user
type CreateUserInput struct {
	Username       string
	Password       string
	NombreCompleto string
	Email          string
	Rol            string
}

// toUserInfo converts a user to its public view
func toUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:             u.ID,
		Username:       u.Username,
		NombreCompleto: u.NombreCompleto,
		Email:          u.Email,
		Rol:            u.Rol,
	}
}
