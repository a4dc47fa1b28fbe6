package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/gestion-compras/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Roles
const (
	RoleAdmin = "admin"
	RoleUser  = "usuario"
)

// Password cost for bcrypt
const bcryptCost = 10

const minPasswordLength = 6

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)

// ErrInvalidCredentials is returned for an unknown user or a wrong password
var ErrInvalidCredentials = shared.NewDomainError(shared.CodeUnauthorized, "Usuario o contraseña incorrectos")

// ErrUserInactive is returned when a deactivated user tries to log in
var ErrUserInactive = shared.NewDomainError("USER_INACTIVE", "Usuario desactivado. Contacte al administrador")

// User is a back-office operator (usuarios)
type User struct {
	shared.BaseEntity
	Username       string     `json:"username" gorm:"type:varchar(100);not null;uniqueIndex"`
	PasswordHash   string     `json:"-" gorm:"type:varchar(255);not null"`
	NombreCompleto string     `json:"nombre_completo" gorm:"type:varchar(200)"`
	Email          string     `json:"email" gorm:"type:varchar(200)"`
	Rol            string     `json:"rol" gorm:"type:varchar(20);not null;default:'usuario'"`
	Activo         bool       `json:"activo" gorm:"not null"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "usuarios"
}

// NewUser creates an active user with a hashed password
func NewUser(username, password, rol string) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if rol == "" {
		rol = RoleUser
	}
	if rol != RoleAdmin && rol != RoleUser {
		return nil, shared.NewValidationError("rol must be '%s' or '%s'", RoleAdmin, RoleUser)
	}

	user := &User{
		BaseEntity: shared.NewBaseEntity(),
		Username:   username,
		Rol:        rol,
		Activo:     true,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword changes the user's password after checking the current one
func (u *User) ChangePassword(current, next string) error {
	if !u.VerifyPassword(current) {
		return shared.NewDomainError(shared.CodeUnauthorized, "Contraseña actual incorrecta")
	}
	return u.SetPassword(next)
}

// SetPassword sets a new password (admin reset, no old password check)
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = string(hash)
	u.Touch()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// RecordLogin stamps the last successful login
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
}

// Deactivate blocks further logins
func (u *User) Deactivate() {
	u.Activo = false
	u.Touch()
}

func validateUsername(username string) error {
	if len(username) < 3 {
		return shared.NewValidationError("username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.NewValidationError("username cannot exceed 100 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewValidationError("username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return shared.NewValidationError("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > 72 {
		return shared.NewValidationError("password cannot exceed 72 characters")
	}
	return nil
}
