package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appidentity "github.com/gestion-compras/backend/internal/application/identity"
	"github.com/gestion-compras/backend/internal/application/intake"
	inventoryapp "github.com/gestion-compras/backend/internal/application/inventory"
	partnerapp "github.com/gestion-compras/backend/internal/application/partner"
	printingapp "github.com/gestion-compras/backend/internal/application/printing"
	purchasingapp "github.com/gestion-compras/backend/internal/application/purchasing"
	"github.com/gestion-compras/backend/internal/domain/inventory"
	"github.com/gestion-compras/backend/internal/domain/partner"
	"github.com/gestion-compras/backend/internal/domain/purchasing"
	"github.com/gestion-compras/backend/internal/infrastructure/auth"
	"github.com/gestion-compras/backend/internal/infrastructure/cache"
	"github.com/gestion-compras/backend/internal/infrastructure/config"
	"github.com/gestion-compras/backend/internal/infrastructure/logger"
	"github.com/gestion-compras/backend/internal/infrastructure/persistence"
	"github.com/gestion-compras/backend/internal/infrastructure/printing"
	"github.com/gestion-compras/backend/internal/infrastructure/scheduler"
	"github.com/gestion-compras/backend/internal/infrastructure/storage"
	"github.com/gestion-compras/backend/internal/infrastructure/telemetry"
	"github.com/gestion-compras/backend/internal/interfaces/http/handler"
	"github.com/gestion-compras/backend/internal/interfaces/http/middleware"
	"github.com/gestion-compras/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/gestion-compras/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Gestión de Compras API
//	@version		1.0
//	@description	Backend de compras, inventario y facturación: proveedores, órdenes, facturas y órdenes de trabajo con descuento de stock.

//	@host		localhost:3000
//	@BasePath	/api

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const meterName = "gestion-compras"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// Telemetry starts before anything that emits spans or metrics
	tel, err := telemetry.Setup(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if tel.Logs.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, tel.Logs, logger.ParseLevel(cfg.Log.Level))
		log, err = logger.New(logCfg, otelCore)
		if err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = log.Sync()
	}()
	meter := tel.Meter.Meter(meterName)

	log.Info("Starting Gestión de Compras backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("decrement_mode", cfg.Inventory.DecrementMode),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if _, err := telemetry.InstrumentGorm(db.DB, telemetry.GormConfig{
		Tracing: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:  cfg.Database.DBName,
	}, meter, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get sql.DB", zap.Error(err))
	}

	responseCache := cache.NewResponseCache(cfg.Cache, cfg.Redis, log)
	defer func() {
		if err := responseCache.Close(); err != nil {
			log.Error("Error closing response cache", zap.Error(err))
		}
	}()

	attachmentStorage, err := storage.NewAttachmentStorage(&cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize attachment storage", zap.Error(err))
	}
	if s3, ok := attachmentStorage.(*storage.S3AttachmentStorage); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := s3.EnsureBucket(ctx)
		cancel()
		if err != nil {
			log.Fatal("Failed to prepare attachment bucket", zap.Error(err))
		}
	}

	// Initialize repositories
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	catalogRepo := persistence.NewGormCatalogItemRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	workOrderRepo := persistence.NewGormWorkOrderRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	purchasingMetrics, err := telemetry.NewPurchasingMetrics(meter, catalogRepo, log)
	if err != nil {
		log.Fatal("Failed to initialize purchasing metrics", zap.Error(err))
	}

	// Stock decrement loop
	decrementer, err := intake.NewStockDecrementer(cfg.Inventory.DecrementMode, persistence.NewGormStockStore(db.DB))
	if err != nil {
		log.Fatal("Invalid decrement mode", zap.Error(err))
	}
	var movementLog inventory.StockMovementRepository
	if cfg.Inventory.MovementLog {
		movementLog = movementRepo
	}
	decrementLoop := intake.NewDecrementLoop(decrementer, movementLog, log)

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := appidentity.NewAuthService(userRepo, jwtService, log)
	supplierService := partnerapp.NewSupplierService(supplierRepo, responseCache, log)
	catalogService := inventoryapp.NewCatalogService(catalogRepo, movementRepo, responseCache, log)
	attachmentService := purchasingapp.NewAttachmentService(invoiceRepo, attachmentStorage, responseCache, cfg.Storage.MaxUploadSize, log)
	orderService := purchasingapp.NewDocumentService[*purchasing.Order](purchasing.KindOrder, orderRepo, responseCache, log)
	invoiceService := purchasingapp.NewDocumentService[*purchasing.Invoice](purchasing.KindInvoice, invoiceRepo, responseCache, log,
		attachmentService.OnInvoiceDeleted)
	workOrderService := purchasingapp.NewDocumentService[*purchasing.WorkOrder](purchasing.KindWorkOrder, workOrderRepo, responseCache, log)
	intakeService := intake.NewIntakeService(orderRepo, invoiceRepo, workOrderRepo, decrementLoop, responseCache, log,
		intake.WithMetrics(purchasingMetrics),
		intake.WithCatalog(catalogRepo),
	)

	printer, pdfStorage, closePrinter := newDocumentPrinter(cfg, orderRepo, invoiceRepo, workOrderRepo, supplierRepo, log)
	defer closePrinter()

	stopMaintenance := startMaintenance(cfg.Maintenance, catalogRepo, pdfStorage, log)

	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Supplier:  handler.NewSupplierHandler(supplierService),
		Inventory: handler.NewInventoryHandler(catalogService),
		Order:     handler.NewOrderHandler(orderService, intakeService, printer),
		Invoice:   handler.NewInvoiceHandler(invoiceService, intakeService, attachmentService, printer),
		WorkOrder: handler.NewWorkOrderHandler(workOrderService, intakeService, printer),
		Cache:     handler.NewCacheHandler(responseCache),
		Health:    handler.NewHealthHandler(sqlDB),
	}
	cacheSettings := router.CacheSettings{Recorder: purchasingMetrics}
	if cfg.Cache.Enabled {
		cacheSettings.Store = responseCache
	}

	// Gin binding reports JSON field names
	middleware.SetupValidator()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log
	profilingConfig := middleware.DefaultProfilingConfig()
	profilingConfig.Enabled = tel.Profiler.IsEnabled()

	r := router.NewRouter(engine)
	r.Use(
		middleware.JWTAuthMiddlewareWithConfig(jwtConfig),
		middleware.TracingAttributeInjector(),
		middleware.ProfilingWithConfig(profilingConfig),
		middleware.HTTPMetrics(meter, log),
	)
	for _, g := range router.APIRoutes(handlers, cacheSettings) {
		r.Register(g)
	}
	r.Setup()

	// Local invoice attachments are served as static files
	if cfg.Storage.Driver == "" || cfg.Storage.Driver == config.StorageDriverLocal {
		engine.Static(cfg.Storage.PublicURL, cfg.Storage.LocalPath)
	}

	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(middleware.SwaggerConfig{
				Enabled:    cfg.Swagger.Enabled,
				AllowedIPs: cfg.Swagger.AllowedIPs,
			}),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		)
		log.Info("Swagger UI enabled", zap.String("path", "/swagger/index.html"))
	}

	engine.NoRoute(router.NotFound)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stopMaintenance(ctx)
	if err := tel.Shutdown(ctx); err != nil {
		log.Warn("Telemetry shutdown incomplete", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newDocumentPrinter wires the PDF pipeline. PDF endpoints answer 503 when
// it cannot be built, the rest of the API keeps working.
func newDocumentPrinter(
	cfg *config.Config,
	orders purchasing.OrderRepository,
	invoices purchasing.InvoiceRepository,
	workOrders purchasing.WorkOrderRepository,
	suppliers partner.SupplierRepository,
	log *zap.Logger,
) (handler.DocumentPrinter, *printing.FileSystemStorage, func()) {
	noop := func() {}

	templates, err := printing.NewTemplateEngine()
	if err != nil {
		log.Error("PDF generation disabled: templates", zap.Error(err))
		return nil, nil, noop
	}
	renderer, err := printing.NewChromedpRenderer(&printing.ChromeConfig{
		Timeout:   cfg.Printing.Timeout,
		RemoteURL: cfg.Printing.ChromeRemoteURL,
		NoSandbox: cfg.Printing.NoSandbox,
		Logger:    log.Named("chromedp"),
	})
	if err != nil {
		log.Error("PDF generation disabled: renderer", zap.Error(err))
		return nil, nil, noop
	}
	pdfStorage, err := printing.NewFileSystemStorage(&printing.FileSystemStorageConfig{
		BasePath: cfg.Printing.OutputDir,
		Logger:   log,
	})
	if err != nil {
		_ = renderer.Close()
		log.Error("PDF generation disabled: storage", zap.Error(err))
		return nil, nil, noop
	}

	svc := printingapp.NewDocumentPrintService(orders, invoices, workOrders, suppliers,
		templates, renderer, pdfStorage, cfg.Printing.CompanyName, log)
	return svc, pdfStorage, func() {
		if err := renderer.Close(); err != nil {
			log.Warn("Error closing PDF renderer", zap.Error(err))
		}
	}
}

// startMaintenance runs the background tasks and returns the function that stops them
func startMaintenance(
	cfg config.MaintenanceConfig,
	catalog inventory.CatalogItemRepository,
	pdfs *printing.FileSystemStorage,
	log *zap.Logger,
) func(context.Context) {
	noop := func(context.Context) {}
	if !cfg.Enabled {
		return noop
	}
	log = log.Named("maintenance")

	tasks := []scheduler.Task{scheduler.NewLowStockSweepTask(catalog, log)}
	if pdfs != nil && cfg.PDFRetention > 0 {
		tasks = append(tasks, scheduler.NewPrunePDFsTask(pdfs, cfg.PDFRetention))
	}

	sched, err := scheduler.NewScheduler(scheduler.Config{
		Workers:       cfg.Workers,
		JobTimeout:    cfg.JobTimeout,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
	}, log, tasks...)
	if err != nil {
		log.Error("Maintenance disabled", zap.Error(err))
		return noop
	}
	trigger := scheduler.NewIntervalTrigger(cfg.Interval, true, sched, log)

	ctx := context.Background()
	if err := sched.Start(ctx); err != nil {
		log.Error("Maintenance disabled", zap.Error(err))
		return noop
	}
	if err := trigger.Start(ctx); err != nil {
		log.Error("Maintenance trigger not started", zap.Error(err))
	}

	return func(ctx context.Context) {
		if err := trigger.Stop(ctx); err != nil {
			log.Warn("Maintenance trigger stop incomplete", zap.Error(err))
		}
		if err := sched.Stop(ctx); err != nil {
			log.Warn("Maintenance scheduler stop incomplete", zap.Error(err))
		}
	}
}
