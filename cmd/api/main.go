package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bakery_storefront/internal/cache"
	"github.com/GTDGit/bakery_storefront/internal/cart"
	"github.com/GTDGit/bakery_storefront/internal/config"
	"github.com/GTDGit/bakery_storefront/internal/database"
	"github.com/GTDGit/bakery_storefront/internal/handler"
	"github.com/GTDGit/bakery_storefront/internal/middleware"
	"github.com/GTDGit/bakery_storefront/internal/repository"
	"github.com/GTDGit/bakery_storefront/internal/service"
	"github.com/GTDGit/bakery_storefront/internal/sse"
	"github.com/GTDGit/bakery_storefront/internal/utils"
	"github.com/GTDGit/bakery_storefront/internal/worker"
	"github.com/GTDGit/bakery_storefront/pkg/bakeryapi"
)

// main is the application entrypoint for the bakery storefront service.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("cart_storage", cfg.Cart.Storage).Msg("starting bakery storefront")

	// 3. Connect database
	connectCtx, connectCancel := context.WithTimeout(context.Background(), time.Minute)
	db, err := database.Connect(connectCtx, &cfg.DB)
	connectCancel()
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis. Only Redis-backed carts need it; otherwise the
	// catalog runs uncached when Redis is down.
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		if cfg.Cart.Storage == config.CartStorageRedis {
			log.Error().Err(err).Msg("redis connection failed")
			fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
			os.Exit(1)
		}
		log.Warn().Err(err).Msg("redis unavailable - catalog cache disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("redis connected successfully")
	}

	// 4. Bakery API client
	bakery := bakeryapi.NewClient(cfg.BakeryAPI.BaseURL, cfg.BakeryAPI.Timeout)

	// 5. Repositories and cart storage
	receiptRepo := repository.NewReceiptRepository(db)
	snapshotRepo := repository.NewCartSnapshotRepository(db)

	var cartStorage cart.Storage
	var pruner worker.SnapshotPruner
	switch cfg.Cart.Storage {
	case config.CartStorageRedis:
		cartStorage = cache.NewCartCache(redisClient, cfg.Cart.TTL)
	case config.CartStoragePostgres:
		cartStorage = snapshotRepo
		pruner = snapshotRepo
	default:
		log.Warn().Msg("carts are kept in process memory and lost on restart")
		cartStorage = cart.NewMemoryStorage()
	}

	var catalogCache service.CatalogCache
	var healthRedis handler.Pinger
	if redisClient != nil {
		catalogCache = cache.NewCatalogCache(redisClient, cfg.Catalog.CacheTTL)
		healthRedis = redisClient
	}

	// 6. Initialize services
	hub := sse.NewHub()
	notifier := sse.NewHubNotifier(hub)

	catalogSvc := service.NewCatalogService(bakery, catalogCache)
	cartSvc := service.NewCartService(cartStorage, catalogSvc, notifier, cfg.Cart.IdleTTL)
	mailSvc := service.NewMailService(cfg.SMTP)
	if !mailSvc.Enabled() {
		log.Warn().Msg("SMTP not configured - order confirmation mails disabled")
	}
	checkoutSvc := service.NewCheckoutService(cartSvc, bakery, receiptRepo, mailSvc, notifier, cfg.Checkout)
	contactSvc := service.NewContactService(bakery)
	authSvc := service.NewAuthService(bakery, cfg.JWTSecret, cfg.JWTTTL)
	adminSvc := service.NewAdminService(bakery, catalogSvc)
	dashboardSvc := service.NewDashboardService(bakery)

	assetSvc, err := service.NewAssetService(cfg.Assets)
	if err != nil {
		log.Warn().Err(err).Msg("Asset service initialization failed - uploads will be disabled")
		assetSvc, _ = service.NewAssetService(config.AssetsConfig{})
	}
	if assetSvc.Enabled() {
		bucketCtx, bucketCancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := assetSvc.EnsureBucket(bucketCtx); err != nil {
			log.Warn().Err(err).Msg("Asset bucket check failed")
		}
		bucketCancel()
	}

	// 7. Initialize middleware
	authLimiter := middleware.NewInvalidAuthRateLimiter(10, 15*time.Minute)
	jwtMw := middleware.NewJWTMiddleware(cfg.JWTSecret, authLimiter)

	// 8. Initialize handlers
	handlers := &Handlers{
		Health:     handler.NewHealthHandler(bakery, healthRedis, hub),
		Catalog:    handler.NewCatalogHandler(catalogSvc),
		Cart:       handler.NewCartHandler(cartSvc),
		Checkout:   handler.NewCheckoutHandler(checkoutSvc, assetSvc),
		Contact:    handler.NewContactHandler(contactSvc),
		Auth:       handler.NewAuthHandler(authSvc, authLimiter),
		AdminCakes: handler.NewAdminCakeHandler(adminSvc, assetSvc),
		AdminOrder: handler.NewAdminOrderHandler(adminSvc),
		AdminUsers: handler.NewAdminUserHandler(adminSvc, dashboardSvc),
		SSE:        handler.NewSSEHandler(hub, cartSvc, cfg.JWTSecret),
	}

	// 9. Setup router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	utils.RegisterBindingFieldNames()
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))
	router.Use(middleware.LoggingMiddleware())
	router.MaxMultipartMemory = service.MaxUploadSize
	sessionMw := middleware.SessionMiddleware(int(cfg.Cart.TTL.Seconds()), cfg.IsProduction())
	setupRoutes(router, handlers, sessionMw, jwtMw)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start workers
	go authLimiter.Run(ctx)
	go worker.NewCatalogSyncWorker(catalogSvc, cfg.Worker.CatalogSyncInterval).Start(ctx)
	go worker.NewCartEvictionWorker(cartSvc, pruner, cfg.Cart.TTL, cfg.Worker.CartEvictInterval).Start(ctx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers and SSE streams
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health     *handler.HealthHandler
	Catalog    *handler.CatalogHandler
	Cart       *handler.CartHandler
	Checkout   *handler.CheckoutHandler
	Contact    *handler.ContactHandler
	Auth       *handler.AuthHandler
	AdminCakes *handler.AdminCakeHandler
	AdminOrder *handler.AdminOrderHandler
	AdminUsers *handler.AdminUserHandler
	SSE        *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, sessionMiddleware gin.HandlerFunc, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	// Public catalog
	router.GET("/v1/cakes", handlers.Catalog.ListCakes)
	router.GET("/v1/cakes/:id", handlers.Catalog.GetCake)
	router.GET("/v1/cakes/:id/quote", handlers.Catalog.Quote)
	router.GET("/v1/categories", handlers.Catalog.Categories)
	router.POST("/v1/contact", handlers.Contact.Submit)

	// Cart session routes
	shop := router.Group("/v1")
	shop.Use(sessionMiddleware)
	{
		shop.GET("/cart", handlers.Cart.GetCart)
		shop.DELETE("/cart", handlers.Cart.ClearCart)
		shop.GET("/cart/events", handlers.SSE.CartStream)
		shop.POST("/cart/items", handlers.Cart.AddItem)
		shop.DELETE("/cart/items", handlers.Cart.RemoveItem)
		shop.POST("/cart/items/increase", handlers.Cart.Increase)
		shop.POST("/cart/items/decrease", handlers.Cart.Decrease)
		shop.PUT("/cart/items/variant", handlers.Cart.ChangeVariant)

		shop.GET("/checkout/summary", handlers.Checkout.Summary)
		shop.POST("/checkout", handlers.Checkout.Checkout)
		shop.POST("/uploads/photo", handlers.Checkout.UploadPhoto)
		shop.GET("/orders", handlers.Checkout.ListOrders)
		shop.GET("/orders/:id", handlers.Checkout.TrackOrder)
	}

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.POST("/auth/login", handlers.Auth.Login)
	admin.GET("/sse", handlers.SSE.AdminStream)
	admin.Use(jwtMiddleware.Handle())
	{
		admin.GET("/auth/me", handlers.Auth.Me)
		admin.GET("/dashboard", handlers.AdminUsers.Dashboard)

		// Cake Management
		admin.GET("/cakes", handlers.AdminCakes.ListCakes)
		admin.POST("/cakes", handlers.AdminCakes.CreateCake)
		admin.POST("/cakes/image", handlers.AdminCakes.UploadImage)
		admin.GET("/cakes/:id", handlers.AdminCakes.GetCake)
		admin.PUT("/cakes/:id", handlers.AdminCakes.UpdateCake)
		admin.DELETE("/cakes/:id", handlers.AdminCakes.DeleteCake)

		// Order Management
		admin.GET("/orders", handlers.AdminOrder.ListOrders)
		admin.GET("/orders/:id", handlers.AdminOrder.GetOrder)
		admin.PATCH("/orders/:id/status", handlers.AdminOrder.UpdateStatus)
		admin.PATCH("/orders/:id/payment-status", handlers.AdminOrder.UpdatePaymentStatus)
		admin.DELETE("/orders/:id", handlers.AdminOrder.DeleteOrder)

		// Users and contact messages
		admin.GET("/users", handlers.AdminUsers.ListUsers)
		admin.GET("/users/:id", handlers.AdminUsers.GetUser)
		admin.DELETE("/users/:id", handlers.AdminUsers.DeleteUser)
		admin.GET("/contacts", handlers.AdminUsers.ListContacts)
		admin.DELETE("/contacts/:id", handlers.AdminUsers.DeleteContact)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
