package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/mizan-erp/backend/internal/application/catalog"
	inventoryapp "github.com/mizan-erp/backend/internal/application/inventory"
	"github.com/mizan-erp/backend/internal/infrastructure/cache"
	"github.com/mizan-erp/backend/internal/infrastructure/config"
	"github.com/mizan-erp/backend/internal/infrastructure/event"
	"github.com/mizan-erp/backend/internal/infrastructure/logger"
	"github.com/mizan-erp/backend/internal/infrastructure/persistence"
	"github.com/mizan-erp/backend/internal/interfaces/http/handler"
	"github.com/mizan-erp/backend/internal/interfaces/http/middleware"
	"github.com/mizan-erp/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Mizan Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	itemRepo := persistence.NewGormItemRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	balanceRepo := persistence.NewGormStockBalanceRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	countRepo := persistence.NewGormStockCountRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)

	// Transaction scope shared by the write-side services
	scope := persistence.NewGormTransactionScope(db.DB)

	// Initialize application services
	itemService := catalogapp.NewItemService(itemRepo, balanceRepo)
	warehouseService := catalogapp.NewWarehouseService(warehouseRepo, balanceRepo)
	movementService := inventoryapp.NewMovementService(scope, movementRepo, balanceRepo, itemRepo, warehouseRepo)
	countService := inventoryapp.NewCountService(scope, countRepo, balanceRepo, itemRepo, warehouseRepo, movementService)

	// Report cache: Redis when configured, in-memory otherwise
	var reportCache inventoryapp.ReportCache
	if cfg.Report.CacheEnabled {
		if cfg.Redis.Host != "" {
			redisCache, err := cache.NewRedisReportCache(cache.RedisConfig{
				Host:     cfg.Redis.Host,
				Port:     cfg.Redis.Port,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err != nil {
				log.Fatal("Failed to connect to Redis", zap.Error(err))
			}
			defer func() {
				if err := redisCache.Close(); err != nil {
					log.Error("Error closing Redis connection", zap.Error(err))
				}
			}()
			reportCache = redisCache
			log.Info("Report cache enabled",
				zap.String("backend", "redis"),
				zap.String("host", cfg.Redis.Host),
				zap.Duration("ttl", cfg.Report.CacheTTL),
			)
		} else {
			memCache := cache.NewInMemoryReportCache(log)
			defer func() {
				_ = memCache.Close()
			}()
			reportCache = memCache
			log.Info("Report cache enabled",
				zap.String("backend", "memory"),
				zap.Duration("ttl", cfg.Report.CacheTTL),
			)
		}
	}

	reportService := inventoryapp.NewReportService(reportRepo, balanceRepo, itemRepo, reportCache, cfg.Report.CacheTTL, log)
	reportService.SetInactiveDays(cfg.Report.InactiveDays)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log, cfg.Event.BufferSize, cfg.Event.HandlerWorkers)

	// Low stock events -> replenishment alerts
	lowStockHandler := inventoryapp.NewLowStockAlertHandler(log).
		WithNotifier(inventoryapp.NewLoggingStockAlertNotifier(log))
	eventBus.Subscribe(lowStockHandler)

	// Ledger writes -> report cache invalidation
	cacheInvalidator := inventoryapp.NewReportCacheInvalidator(reportService)
	eventBus.Subscribe(cacheInvalidator)

	log.Info("Event handlers registered",
		zap.Strings("low_stock_events", lowStockHandler.EventTypes()),
		zap.Strings("cache_invalidation_events", cacheInvalidator.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	movementService.SetEventPublisher(eventBus)
	countService.SetEventPublisher(eventBus)

	// Initialize HTTP handlers
	itemHandler := handler.NewItemHandler(itemService)
	warehouseHandler := handler.NewWarehouseHandler(warehouseService)
	movementHandler := handler.NewMovementHandler(movementService)
	countHandler := handler.NewCountHandler(countService)
	reportHandler := handler.NewReportHandler(reportService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Catalog domain (items, warehouses)
	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "catalog service ready"})
	})
	// Item routes
	catalogRoutes.POST("/items", itemHandler.Create)
	catalogRoutes.GET("/items", itemHandler.List)
	catalogRoutes.GET("/items/sku/:sku", itemHandler.GetBySKU)
	catalogRoutes.GET("/items/:id", itemHandler.GetByID)
	catalogRoutes.PUT("/items/:id", itemHandler.Update)
	catalogRoutes.PUT("/items/:id/prices", itemHandler.UpdatePrices)
	catalogRoutes.PUT("/items/:id/stock-levels", itemHandler.UpdateStockLevels)
	catalogRoutes.POST("/items/:id/activate", itemHandler.Activate)
	catalogRoutes.POST("/items/:id/deactivate", itemHandler.Deactivate)
	catalogRoutes.DELETE("/items/:id", itemHandler.Delete)

	// Warehouse routes
	catalogRoutes.POST("/warehouses", warehouseHandler.Create)
	catalogRoutes.GET("/warehouses", warehouseHandler.List)
	catalogRoutes.GET("/warehouses/code/:code", warehouseHandler.GetByCode)
	catalogRoutes.GET("/warehouses/:id", warehouseHandler.GetByID)
	catalogRoutes.PUT("/warehouses/:id", warehouseHandler.Update)
	catalogRoutes.POST("/warehouses/:id/activate", warehouseHandler.Activate)
	catalogRoutes.POST("/warehouses/:id/deactivate", warehouseHandler.Deactivate)
	catalogRoutes.DELETE("/warehouses/:id", warehouseHandler.Delete)

	// Inventory domain (movements, counts, balances)
	inventoryRoutes := router.NewDomainGroup("inventory", "/inventory")
	inventoryRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "inventory service ready"})
	})

	// Movement routes
	inventoryRoutes.POST("/movements/inbound", movementHandler.CreateInbound)
	inventoryRoutes.POST("/movements/outbound", movementHandler.CreateOutbound)
	inventoryRoutes.POST("/movements/adjustments", movementHandler.CreateAdjustment)
	inventoryRoutes.POST("/movements/transfers", movementHandler.CreateTransfer)
	inventoryRoutes.POST("/movements/reservations", movementHandler.Reserve)
	inventoryRoutes.POST("/movements/reservations/release", movementHandler.ReleaseReservation)
	inventoryRoutes.GET("/movements", movementHandler.List)
	inventoryRoutes.GET("/movements/number/:number", movementHandler.GetByNumber)
	inventoryRoutes.GET("/movements/:id", movementHandler.GetByID)
	inventoryRoutes.POST("/movements/:id/cancel", movementHandler.Cancel)

	// Stock count routes
	inventoryRoutes.POST("/counts", countHandler.Create)
	inventoryRoutes.GET("/counts", countHandler.List)
	inventoryRoutes.GET("/counts/number/:number", countHandler.GetByNumber)
	inventoryRoutes.GET("/counts/:id", countHandler.GetByID)
	inventoryRoutes.POST("/counts/:id/records", countHandler.RecordCounts)
	inventoryRoutes.GET("/counts/:id/differences", countHandler.Differences)
	inventoryRoutes.POST("/counts/:id/complete", countHandler.Complete)
	inventoryRoutes.POST("/counts/:id/cancel", countHandler.Cancel)
	inventoryRoutes.GET("/counts/:id/report", countHandler.Report)

	// Balance routes
	inventoryRoutes.GET("/balances", reportHandler.ListBalances)
	inventoryRoutes.GET("/balances/lookup", reportHandler.GetBalance)

	// Report domain
	reportRoutes := router.NewDomainGroup("report", "/reports")
	reportRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "report service ready"})
	})
	reportRoutes.GET("/movement-summary", reportHandler.MovementSummary)
	reportRoutes.GET("/low-stock", reportHandler.LowStock)
	reportRoutes.GET("/inactive-items", reportHandler.InactiveItems)
	reportRoutes.GET("/valuation", reportHandler.Valuation)

	// Register all domain groups
	r.Register(catalogRoutes).
		Register(inventoryRoutes).
		Register(reportRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
