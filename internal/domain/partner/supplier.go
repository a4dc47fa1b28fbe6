package partner

import (
	"strings"

	"github.com/gestion-compras/backend/internal/domain/shared"
)

// Supplier is a vendor that purchase orders and invoices refer to (proveedores)
type Supplier struct {
	shared.BaseEntity
	NombreSocial string `json:"nombre_social" gorm:"type:varchar(200);not null"`
	RFC          string `json:"rfc" gorm:"column:rfc;type:varchar(20);index"`
	Contacto     string `json:"contacto" gorm:"type:varchar(100)"`
	Telefono     string `json:"telefono" gorm:"type:varchar(30)"`
	Email        string `json:"email" gorm:"type:varchar(200)"`
	Direccion    string `json:"direccion" gorm:"type:varchar(300)"`
	Notas        string `json:"notas" gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "proveedores"
}

// NewSupplier creates a supplier with the required business name
func NewSupplier(nombreSocial string) (*Supplier, error) {
	s := &Supplier{BaseEntity: shared.NewBaseEntity()}
	if err := s.Rename(nombreSocial); err != nil {
		return nil, err
	}
	return s, nil
}

// Rename changes the business name
func (s *Supplier) Rename(nombreSocial string) error {
	nombreSocial = strings.TrimSpace(nombreSocial)
	if nombreSocial == "" {
		return shared.NewValidationError("nombre_social is required")
	}
	if len(nombreSocial) > 200 {
		return shared.NewValidationError("nombre_social cannot exceed 200 characters")
	}
	s.NombreSocial = nombreSocial
	s.Touch()
	return nil
}

// SetTaxID stores the RFC in upper case
func (s *Supplier) SetTaxID(rfc string) error {
	rfc = strings.ToUpper(strings.TrimSpace(rfc))
	if len(rfc) > 13 {
		return shared.NewValidationError("rfc cannot exceed 13 characters")
	}
	s.RFC = rfc
	return nil
}

// SetContact updates contact data
func (s *Supplier) SetContact(contacto, telefono, email string) {
	s.Contacto = strings.TrimSpace(contacto)
	s.Telefono = strings.TrimSpace(telefono)
	s.Email = strings.ToLower(strings.TrimSpace(email))
}
