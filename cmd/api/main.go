package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/notify"
	"storefront/internal/otp"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
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
	logger := config.NewLogger(cfg.Logger, "storefront-api")
	logger.Info().Msg("starting storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	vendorRepo := repository.NewVendorRepository(pool, logger)

	// Initialize side-effect plumbing
	m := metrics.New("storefront")
	mailer, err := notify.NewMailer(cfg.Notify, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}
	notifier := notify.NewNotifier(mailer, logger)
	dispatcher := notify.NewDispatcher(cfg.Notify.DispatchTimeout, logger, m.DispatchFailed)
	publisher := events.NewPublisher(cfg.Kafka, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()
	generator := otp.NewNumeric(cfg.Order.OTPDigits)

	// Initialize services
	catalogService := service.NewCatalogService(productRepo, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	orderService := service.NewOrderService(service.OrderDependencies{
		Orders:     orderRepo,
		Products:   productRepo,
		Carts:      cartRepo,
		Vendors:    vendorRepo,
		OTP:        generator,
		Notifier:   notifier,
		Publisher:  publisher,
		Dispatcher: dispatcher,
		Metrics:    m,
		Config:     cfg.Order,
	}, logger)
	vendorService := service.NewVendorService(vendorRepo, generator, notifier, dispatcher, cfg.Order, nil, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Health:  handler.NewHealthHandler(pool, logger),
		Product: handler.NewProductHandler(catalogService, logger),
		Cart:    handler.NewCartHandler(cartService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
		Vendor:  handler.NewVendorHandler(vendorService, logger),
	}, cfg.Auth, cfg.Server.RequestTimeout, m, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		// Let in-flight notifications and events finish before the
		// publisher and pool close.
		if err := dispatcher.Wait(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("background dispatches still running at shutdown")
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
