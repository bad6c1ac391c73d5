package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/discount"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/shopify"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Str("environment", cfg.App.Environment).Msg("starting storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	m := metrics.New()

	shopifyClient := shopify.NewClient(shopify.Config{
		StoreDomain: cfg.Shopify.StoreDomain,
		AccessToken: cfg.Shopify.AccessToken,
		APIVersion:  cfg.Shopify.APIVersion,
		Timeout:     cfg.Shopify.Timeout,
		Endpoint:    cfg.Shopify.Endpoint,
	}, logger)

	// Initialize discount engine
	catalog, err := newCatalogSource(ctx, cfg.Catalog, shopifyClient, m, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize discount catalog: %w", err)
	}

	rules, err := loadRulePack(cfg.Catalog.RulesPath)
	if err != nil {
		return fmt.Errorf("failed to load combination rules: %w", err)
	}
	combiner, err := discount.NewCombiner(rules, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize combination rules: %w", err)
	}
	verifier := discount.NewVerifier(catalog, combiner, logger)

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool, logger)
	sessionRepo := repository.NewSessionRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	wishlistRepo := repository.NewWishlistRepository(pool, logger)
	addressRepo := repository.NewAddressRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Initialize services
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(userRepo, sessionRepo, tokens, cfg.Auth.BcryptCost, logger)
	cartService := service.NewCartService(cartRepo, shopifyClient, logger)
	wishlistService := service.NewWishlistService(wishlistRepo, shopifyClient, logger)
	addressService := service.NewAddressService(addressRepo, logger)
	discountService := service.NewDiscountService(verifier, catalog, m, logger)
	orderService := service.NewOrderService(orderRepo, cartRepo, addressRepo, userRepo, shopifyClient, shopifyClient, cfg.Orders, logger)
	catalogService := service.NewCatalogService(shopifyClient, logger)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(authService, logger),
		Cart:     handler.NewCartHandler(cartService, wishlistService, logger),
		Address:  handler.NewAddressHandler(addressService, logger),
		Discount: handler.NewDiscountHandler(discountService, cfg.App.IsDevelopment(), logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Catalog:  handler.NewCatalogHandler(catalogService, logger),
	}

	// Idle client buckets are swept until shutdown
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst).WithIdleTTL(cfg.RateLimit.IdleTTL)
	go limiter.Run(ctx, logger)

	// Initialize router
	mux := router.New(handlers, router.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Tokens:         tokens,
		AuthLimiter:    limiter,
		Observer:       m,
		MetricsHandler: m.Handler(),
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newCatalogSource builds the configured discount catalog source. Every
// source reports its fetches to m. When a local snapshot is configured it
// backs the Shopify and S3 sources.
func newCatalogSource(
	ctx context.Context,
	cfg config.CatalogConfig,
	client *shopify.Client,
	m *metrics.Metrics,
	logger zerolog.Logger,
) (discount.CatalogSource, error) {
	var fileSource discount.CatalogSource
	if cfg.FilePath != "" {
		fileSource = discount.Observe(config.CatalogSourceFile, discount.NewFileSource(cfg.FilePath, logger), m.ObserveCatalogFetch)
	}

	var primary discount.CatalogSource
	switch cfg.Source {
	case config.CatalogSourceFile:
		logger.Info().Str("path", cfg.FilePath).Msg("using local discount snapshot")
		return fileSource, nil

	case config.CatalogSourceS3:
		s3Source, err := discount.NewS3Source(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Key, logger)
		if err != nil {
			if fileSource == nil {
				return nil, err
			}
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 source, falling back to local snapshot only")
			return fileSource, nil
		}
		primary = discount.Observe(config.CatalogSourceS3, s3Source, m.ObserveCatalogFetch)

	default:
		primary = discount.Observe(config.CatalogSourceShopify, shopify.NewCatalogSource(client), m.ObserveCatalogFetch)
	}

	if fileSource == nil {
		logger.Info().Str("source", cfg.Source).Msg("discount catalog configured")
		return primary, nil
	}

	logger.Info().
		Str("source", cfg.Source).
		Str("fallback", cfg.FilePath).
		Msg("discount catalog configured with local fallback")
	return discount.NewFallbackSource(primary, fileSource, logger), nil
}

func loadRulePack(path string) (*discount.RulePack, error) {
	if path == "" {
		return discount.DefaultRulePack()
	}
	return discount.LoadRulePack(path)
}
