package partner

import (
	"context"
	"strings"

	"github.com/gestion-compras/backend/internal/domain/partner"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Resource is the cache partition of supplier responses
const Resource = "proveedores"

// CacheInvalidator drops cached responses of a resource
type CacheInvalidator interface {
	InvalidateResource(ctx context.Context, resource string) int
}

// SupplierService handles supplier-related business operations
type SupplierService struct {
	supplierRepo partner.SupplierRepository
	cache        CacheInvalidator
	logger       *zap.Logger
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository, cache CacheInvalidator, logger *zap.Logger) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
		cache:        cache,
		logger:       logger,
	}
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := partner.NewSupplier(req.NombreSocial)
	if err != nil {
		return nil, err
	}
	if err := supplier.SetTaxID(req.RFC); err != nil {
		return nil, err
	}
	supplier.SetContact(req.Contacto, req.Telefono, req.Email)
	supplier.Direccion = strings.TrimSpace(req.Direccion)
	supplier.Notas = req.Notas

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	s.cache.InvalidateResource(ctx, Resource)

	s.logger.Info("Supplier created",
		zap.String("proveedor_id", supplier.ID.String()),
		zap.String("nombre_social", supplier.NombreSocial))

	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, supplierNotFound(err)
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// List retrieves suppliers ordered by business name
func (s *SupplierService) List(ctx context.Context, filter SupplierListFilter) ([]SupplierResponse, error) {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   strings.TrimSpace(filter.Buscar),
		Filters:  make(map[string]interface{}),
	}
	if filter.RFC != "" {
		f.Filters["rfc"] = strings.ToUpper(strings.TrimSpace(filter.RFC))
	}

	suppliers, err := s.supplierRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}

	responses := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		responses[i] = ToSupplierResponse(&suppliers[i])
	}
	return responses, nil
}

// Update updates the fields present in the request
func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, supplierNotFound(err)
	}

	if req.NombreSocial != nil {
		if err := supplier.Rename(*req.NombreSocial); err != nil {
			return nil, err
		}
	}
	if req.RFC != nil {
		if err := supplier.SetTaxID(*req.RFC); err != nil {
			return nil, err
		}
	}
	if req.Contacto != nil || req.Telefono != nil || req.Email != nil {
		contacto, telefono, email := supplier.Contacto, supplier.Telefono, supplier.Email
		if req.Contacto != nil {
			contacto = *req.Contacto
		}
		if req.Telefono != nil {
			telefono = *req.Telefono
		}
		if req.Email != nil {
			email = *req.Email
		}
		supplier.SetContact(contacto, telefono, email)
	}
	if req.Direccion != nil {
		supplier.Direccion = strings.TrimSpace(*req.Direccion)
	}
	if req.Notas != nil {
		supplier.Notas = *req.Notas
	}
	supplier.Touch()

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	s.cache.InvalidateResource(ctx, Resource)

	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Delete deletes a supplier
func (s *SupplierService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.supplierRepo.Delete(ctx, id); err != nil {
		return supplierNotFound(err)
	}
	s.cache.InvalidateResource(ctx, Resource)

	s.logger.Info("Supplier deleted", zap.String("proveedor_id", id.String()))
	return nil
}

func supplierNotFound(err error) error {
	if shared.IsNotFound(err) {
		return shared.NewDomainError(shared.CodeNotFound, "Proveedor no encontrado")
	}
	return err
}
