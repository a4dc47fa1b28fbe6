package partner

import (
	"time"

	"github.com/gestion-compras/backend/internal/domain/partner"
	"github.com/google/uuid"
)

// CreateSupplierRequest represents a request to create a new supplier
type CreateSupplierRequest struct {
	NombreSocial string `json:"nombre_social" binding:"required,min=1,max=200"`
	RFC          string `json:"rfc" binding:"max=13"`
	Contacto     string `json:"contacto" binding:"max=100"`
	Telefono     string `json:"telefono" binding:"max=30"`
	Email        string `json:"email" binding:"omitempty,email,max=200"`
	Direccion    string `json:"direccion" binding:"max=300"`
	Notas        string `json:"notas"`
}

// UpdateSupplierRequest represents a request to update a supplier
type UpdateSupplierRequest struct {
	NombreSocial *string `json:"nombre_social" binding:"omitempty,min=1,max=200"`
	RFC          *string `json:"rfc" binding:"omitempty,max=13"`
	Contacto     *string `json:"contacto" binding:"omitempty,max=100"`
	Telefono     *string `json:"telefono" binding:"omitempty,max=30"`
	Email        *string `json:"email" binding:"omitempty,max=200"`
	Direccion    *string `json:"direccion" binding:"omitempty,max=300"`
	Notas        *string `json:"notas"`
}

// SupplierListFilter holds the query parameters of the supplier list
type SupplierListFilter struct {
	Buscar   string `form:"buscar"`
	RFC      string `form:"rfc"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=500"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID           uuid.UUID `json:"id"`
	NombreSocial string    `json:"nombre_social"`
	RFC          string    `json:"rfc"`
	Contacto     string    `json:"contacto"`
	Telefono     string    `json:"telefono"`
	Email        string    `json:"email"`
	Direccion    string    `json:"direccion"`
	Notas        string    `json:"notas"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToSupplierResponse converts a domain supplier to its response
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:           s.ID,
		NombreSocial: s.NombreSocial,
		RFC:          s.RFC,
		Contacto:     s.Contacto,
		Telefono:     s.Telefono,
		Email:        s.Email,
		Direccion:    s.Direccion,
		Notas:        s.Notas,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
