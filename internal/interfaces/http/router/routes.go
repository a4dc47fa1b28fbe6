package router

import (
	"net/http"
	"time"

	inventoryapp "github.com/gestion-compras/backend/internal/application/inventory"
	partnerapp "github.com/gestion-compras/backend/internal/application/partner"
	"github.com/gestion-compras/backend/internal/domain/purchasing"
	"github.com/gestion-compras/backend/internal/infrastructure/cache"
	"github.com/gestion-compras/backend/internal/interfaces/http/dto"
	"github.com/gestion-compras/backend/internal/interfaces/http/handler"
	"github.com/gestion-compras/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Response cache TTLs per resource
const (
	DocumentCacheTTL = 180 * time.Second
	CatalogCacheTTL  = 300 * time.Second
	LowStockCacheTTL = 60 * time.Second
)

// Handlers groups the HTTP handlers of the API. Cache and Health may be nil.
type Handlers struct {
	Auth      *handler.AuthHandler
	Supplier  *handler.SupplierHandler
	Inventory *handler.InventoryHandler
	Order     *handler.OrderHandler
	Invoice   *handler.InvoiceHandler
	WorkOrder *handler.WorkOrderHandler
	Cache     *handler.CacheHandler
	Health    *handler.HealthHandler
}

// CacheSettings configures the response cache of GET routes. A nil Store
// disables caching.
type CacheSettings struct {
	Store    cache.ResponseCache
	Recorder middleware.CacheLookupRecorder
}

func (s CacheSettings) middleware(resource string, ttl time.Duration) gin.HandlerFunc {
	return middleware.CacheResponse(s.Store, resource, ttl, s.Recorder)
}

// APIRoutes builds the route groups of the purchasing API
func APIRoutes(h Handlers, cs CacheSettings) []RouteRegistrar {
	groups := make([]RouteRegistrar, 0, 8)

	if h.Health != nil {
		health := NewDomainGroup("health", "/health")
		health.GET("", h.Health.Health)
		groups = append(groups, health)
	}

	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", h.Auth.Login)
	authRoutes.GET("/verificar", h.Auth.Verify)
	authRoutes.POST("/cambiar-password", h.Auth.ChangePassword)
	groups = append(groups, authRoutes)

	suppliers := NewDomainGroup("proveedores", "/proveedores")
	supplierCache := cs.middleware(partnerapp.Resource, CatalogCacheTTL)
	suppliers.GET("", supplierCache, h.Supplier.List)
	suppliers.GET("/:id", supplierCache, h.Supplier.GetByID)
	suppliers.POST("", h.Supplier.Create)
	suppliers.PUT("/:id", h.Supplier.Update)
	suppliers.DELETE("/:id", h.Supplier.Delete)
	groups = append(groups, suppliers)

	inventory := NewDomainGroup("inventario", "/inventario")
	inventoryCache := cs.middleware(inventoryapp.Resource, CatalogCacheTTL)
	inventory.GET("", inventoryCache, h.Inventory.List)
	inventory.GET("/stock-bajo", cs.middleware(inventoryapp.Resource, LowStockCacheTTL), h.Inventory.LowStock)
	inventory.GET("/:id", inventoryCache, h.Inventory.GetByID)
	inventory.GET("/:id/movimientos", h.Inventory.Movements)
	inventory.POST("", h.Inventory.Create)
	inventory.PUT("/:id", h.Inventory.Update)
	inventory.PATCH("/:id/stock", h.Inventory.AdjustStock)
	inventory.DELETE("/:id", h.Inventory.Delete)
	groups = append(groups, inventory)

	orders := NewDomainGroup("ordenes", "/"+string(purchasing.KindOrder))
	orderCache := cs.middleware(string(purchasing.KindOrder), DocumentCacheTTL)
	orders.GET("", orderCache, h.Order.List)
	orders.GET("/:id", orderCache, h.Order.GetByID)
	orders.GET("/:id/pdf", h.Order.PDF)
	orders.POST("", h.Order.Create)
	orders.PUT("/:id", h.Order.Update)
	orders.DELETE("/:id", h.Order.Delete)
	groups = append(groups, orders)

	invoices := NewDomainGroup("facturas", "/"+string(purchasing.KindInvoice))
	invoiceCache := cs.middleware(string(purchasing.KindInvoice), DocumentCacheTTL)
	invoices.GET("", invoiceCache, h.Invoice.List)
	invoices.GET("/:id", invoiceCache, h.Invoice.GetByID)
	invoices.GET("/:id/pdf", h.Invoice.PDF)
	invoices.POST("", h.Invoice.Create)
	invoices.PUT("/:id", h.Invoice.Update)
	invoices.DELETE("/:id", h.Invoice.Delete)
	invoices.POST("/:id/archivo", h.Invoice.UploadFile)
	invoices.DELETE("/:id/archivo", h.Invoice.DeleteFile)
	groups = append(groups, invoices)

	workOrders := NewDomainGroup("ordenes-trabajo", "/"+string(purchasing.KindWorkOrder))
	workOrderCache := cs.middleware(string(purchasing.KindWorkOrder), DocumentCacheTTL)
	workOrders.GET("", workOrderCache, h.WorkOrder.List)
	workOrders.GET("/:id", workOrderCache, h.WorkOrder.GetByID)
	workOrders.GET("/:id/pdf", h.WorkOrder.PDF)
	workOrders.POST("", h.WorkOrder.Create)
	workOrders.PUT("/:id", h.WorkOrder.Update)
	workOrders.DELETE("/:id", h.WorkOrder.Delete)
	groups = append(groups, workOrders)

	if h.Cache != nil {
		cacheRoutes := NewDomainGroup("cache", "/cache")
		cacheRoutes.DELETE("", h.Cache.Clear)
		cacheRoutes.GET("/stats", h.Cache.Stats)
		groups = append(groups, cacheRoutes)
	}

	return groups
}

// NotFound answers unknown routes with the JSON error envelope
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeRouteMissing, "Ruta no encontrada", middleware.GetRequestID(c)))
}
