package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/bakehouse-api/internal/application/service"
	"github.com/sangkips/bakehouse-api/internal/config"
	"github.com/sangkips/bakehouse-api/internal/infrastructure/cache"
	"github.com/sangkips/bakehouse-api/internal/infrastructure/database"
	"github.com/sangkips/bakehouse-api/internal/infrastructure/repository"
	"github.com/sangkips/bakehouse-api/internal/presentation/http/handler"
	"github.com/sangkips/bakehouse-api/internal/presentation/http/routes"
	"github.com/sangkips/bakehouse-api/pkg/printer"
	"github.com/sangkips/bakehouse-api/pkg/sms"
	"github.com/sangkips/bakehouse-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default data
	if err := database.SeedDefaultData(db); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize cache (Redis in production, in-process noop otherwise)
	var appCache cache.Cache
	if cfg.Redis.Enabled {
		appCache = cache.NewRedisCache(cfg.Redis)
	} else {
		appCache = cache.NewNoopCache()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	stockRepo := repository.NewStockEntryRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	taxProfileRepo := repository.NewTaxProfileRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	// Initialize SMS notifier
	notifier, err := sms.NewNotifierFromConfig(
		cfg.SMS.Provider,
		cfg.SMS.Endpoint,
		cfg.SMS.APIKey,
		cfg.SMS.Sender,
	)
	if err != nil {
		log.Printf("Warning: Failed to initialize SMS notifier: %v", err)
		notifier = sms.NewNullNotifier()
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, roleRepo, jwtManager)
	tenantService := service.NewTenantService(tenantRepo, userRepo)
	taxService := service.NewTaxService(taxProfileRepo, appCache, cfg.GST)
	productService := service.NewProductService(productRepo, categoryRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	customerService := service.NewCustomerService(customerRepo)
	saleService := service.NewSaleService(saleRepo, productRepo, customerRepo, taxService, notifier)
	stockService := service.NewStockService(stockRepo, productRepo)
	bookingService := service.NewBookingService(bookingRepo, productRepo, customerRepo, saleService)
	dashboardService := service.NewDashboardService(analyticsRepo, productRepo, customerRepo, bookingRepo, appCache)
	userService := service.NewUserService(userRepo, roleRepo)

	// Initialize thermal printer
	thermalPrinter, err := printer.NewPrinterFromConfig(
		cfg.Printer.Type,
		cfg.Printer.USBPath,
		cfg.Printer.Address,
	)
	if err != nil {
		log.Printf("Warning: Failed to initialize printer: %v", err)
		thermalPrinter = printer.NewNullPrinter()
	}
	printerService := service.NewPrinterService(thermalPrinter, saleRepo, tenantRepo, taxService, cfg.Printer.Type)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService, tenantService),
		Tenant:    handler.NewTenantHandler(tenantService),
		Product:   handler.NewProductHandler(productService),
		Category:  handler.NewCategoryHandler(categoryService),
		Sale:      handler.NewSaleHandler(saleService),
		Stock:     handler.NewStockHandler(stockService),
		Booking:   handler.NewBookingHandler(bookingService),
		Customer:  handler.NewCustomerHandler(customerService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Settings:  handler.NewSettingsHandler(taxService),
		User:      handler.NewUserHandler(userService),
		Printer:   handler.NewPrinterHandler(printerService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		TenantRepo:      tenantRepo,
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
