package inventory

import (
	"context"
	"strings"

	"github.com/gestion-compras/backend/internal/domain/inventory"
	"github.com/gestion-compras/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Resource is the cache partition of catalog responses
const Resource = "inventario"

// CacheInvalidator drops cached responses of a resource
type CacheInvalidator interface {
	InvalidateResource(ctx context.Context, resource string) int
}

var errDuplicateCode = shared.NewDomainError(shared.CodeAlreadyExists, "Ya existe un artículo con ese código")

// CatalogService handles catalog item operations
type CatalogService struct {
	repo      inventory.CatalogItemRepository
	movements inventory.StockMovementRepository
	cache     CacheInvalidator
	logger    *zap.Logger
}

// NewCatalogService creates a new CatalogService. movements may be nil.
func NewCatalogService(
	repo inventory.CatalogItemRepository,
	movements inventory.StockMovementRepository,
	cache CacheInvalidator,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		repo:      repo,
		movements: movements,
		cache:     cache,
		logger:    logger,
	}
}

// List returns catalog items ordered by name
func (s *CatalogService) List(ctx context.Context, filter CatalogListFilter) ([]CatalogItemResponse, error) {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   strings.TrimSpace(filter.Buscar),
		Filters:  make(map[string]interface{}),
	}
	if filter.Activo != nil {
		f.Filters["activo"] = *filter.Activo
	}
	if filter.Categoria != "" {
		f.Filters["categoria"] = filter.Categoria
	}

	items, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	return ToCatalogItemResponses(items), nil
}

// GetByID returns one catalog item
func (s *CatalogService) GetByID(ctx context.Context, id uuid.UUID) (*CatalogItemResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, itemNotFound(err)
	}
	resp := ToCatalogItemResponse(item)
	return &resp, nil
}

// LowStock returns active items at or below their minimum
func (s *CatalogService) LowStock(ctx context.Context) ([]CatalogItemResponse, error) {
	items, err := s.repo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}
	return ToCatalogItemResponses(items), nil
}

// Create creates a new catalog item with a unique code
func (s *CatalogService) Create(ctx context.Context, req CreateCatalogItemRequest) (*CatalogItemResponse, error) {
	item, err := inventory.NewCatalogItem(req.Codigo, req.Nombre, req.PrecioUnitario)
	if err != nil {
		return nil, err
	}
	if err := item.SetStockLevels(req.StockActual, req.StockMinimo); err != nil {
		return nil, err
	}
	item.Descripcion = req.Descripcion
	item.Categoria = strings.TrimSpace(req.Categoria)
	item.SetUnitOfMeasure(req.UnidadMedida)
	if req.Activo != nil {
		item.Activo = *req.Activo
	}

	exists, err := s.repo.ExistsByCode(ctx, item.Codigo, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errDuplicateCode
	}

	if err := s.repo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	s.logger.Info("Catalog item created",
		zap.String("inventario_id", item.ID.String()),
		zap.String("codigo", item.Codigo))

	resp := ToCatalogItemResponse(item)
	return &resp, nil
}

// Update changes the fields present in the request. Only those columns are
// written, so a concurrent stock decrement is never overwritten.
func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, req UpdateCatalogItemRequest) (*CatalogItemResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, itemNotFound(err)
	}

	var columns []string
	if req.Codigo != nil {
		codigo := strings.TrimSpace(*req.Codigo)
		if codigo == "" {
			return nil, shared.NewValidationError("codigo is required")
		}
		if !strings.EqualFold(codigo, item.Codigo) {
			exists, err := s.repo.ExistsByCode(ctx, codigo, item.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, errDuplicateCode
			}
		}
		item.Codigo = codigo
		columns = append(columns, "codigo")
	}
	if req.Nombre != nil {
		nombre := strings.TrimSpace(*req.Nombre)
		if nombre == "" {
			return nil, shared.NewValidationError("nombre is required")
		}
		item.Nombre = nombre
		columns = append(columns, "nombre")
	}
	if req.Descripcion != nil {
		item.Descripcion = *req.Descripcion
		columns = append(columns, "descripcion")
	}
	if req.Categoria != nil {
		item.Categoria = strings.TrimSpace(*req.Categoria)
		columns = append(columns, "categoria")
	}
	if req.PrecioUnitario != nil {
		if req.PrecioUnitario.IsNegative() {
			return nil, shared.NewValidationError("precio_unitario cannot be negative")
		}
		item.PrecioUnitario = *req.PrecioUnitario
		columns = append(columns, "precio_unitario")
	}
	if req.StockActual != nil {
		if *req.StockActual < 0 {
			return nil, shared.NewValidationError("stock_actual cannot be negative")
		}
		item.StockActual = *req.StockActual
		columns = append(columns, "stock_actual")
	}
	if req.StockMinimo != nil {
		if *req.StockMinimo < 0 {
			return nil, shared.NewValidationError("stock_minimo cannot be negative")
		}
		item.StockMinimo = *req.StockMinimo
		columns = append(columns, "stock_minimo")
	}
	if req.UnidadMedida != nil {
		item.SetUnitOfMeasure(*req.UnidadMedida)
		columns = append(columns, "unidad_medida")
	}
	if req.Activo != nil {
		item.Activo = *req.Activo
		columns = append(columns, "activo")
	}
	item.Touch()

	if err := s.repo.Update(ctx, item, columns...); err != nil {
		return nil, itemNotFound(err)
	}
	s.invalidate(ctx)

	// re-read so the response carries stock written by others meanwhile
	return s.GetByID(ctx, id)
}

// Delete removes a catalog item
func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return itemNotFound(err)
	}
	s.invalidate(ctx)

	s.logger.Info("Catalog item deleted", zap.String("inventario_id", id.String()))
	return nil
}

// AdjustStock applies a manual stock adjustment in a single statement.
// Subtracting below zero leaves the item at zero.
func (s *CatalogService) AdjustStock(ctx context.Context, id uuid.UUID, req AdjustStockRequest) (*CatalogItemResponse, error) {
	delta, err := inventory.StockDelta(inventory.StockOperation(req.Operacion), req.Cantidad)
	if err != nil {
		return nil, err
	}

	before, after, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, itemNotFound(err)
	}
	s.invalidate(ctx)
	s.recordAdjustment(ctx, id, after-before)

	s.logger.Info("Stock adjusted",
		zap.String("inventario_id", id.String()),
		zap.String("operacion", req.Operacion),
		zap.Int("cantidad", req.Cantidad),
		zap.Int("stock_anterior", before),
		zap.Int("stock_actual", after))

	return s.GetByID(ctx, id)
}

// Movements returns the latest stock movements of an item
func (s *CatalogService) Movements(ctx context.Context, id uuid.UUID, limit int) ([]StockMovementResponse, error) {
	if s.movements == nil {
		return []StockMovementResponse{}, nil
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, itemNotFound(err)
	}
	movements, err := s.movements.FindByItem(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	return toStockMovementResponses(movements), nil
}

func (s *CatalogService) recordAdjustment(ctx context.Context, itemID uuid.UUID, delta int) {
	if s.movements == nil || delta == 0 {
		return
	}
	tipo := inventory.MovementManualAdd
	if delta < 0 {
		tipo = inventory.MovementManualSubtract
	}
	if err := s.movements.Append(ctx, inventory.NewStockMovement(itemID, tipo, delta)); err != nil {
		s.logger.Warn("Failed to record stock movement",
			zap.String("inventario_id", itemID.String()),
			zap.Error(err))
	}
}

func (s *CatalogService) invalidate(ctx context.Context) {
	s.cache.InvalidateResource(ctx, Resource)
}

// itemNotFound gives not-found errors the user-facing message
func itemNotFound(err error) error {
	if shared.IsNotFound(err) {
		return shared.NewDomainError(shared.CodeNotFound, "Item no encontrado")
	}
	return err
}
