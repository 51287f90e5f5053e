package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	files := flag.String("files", "", "comma separated seed files (defaults to CATALOG_SEED_FILES)")
	concurrency := flag.Int("concurrency", 8, "parallel product upserts")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger, "storefront-seed")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	// Initialize seed loader with S3 and local fallback
	var s3Loader catalog.Loader
	if cfg.S3.Enabled {
		s3Loader, err = catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		}
	} else {
		logger.Info().Msg("using local file system for seed files (S3 disabled)")
	}
	loader := catalog.NewFallbackLoader(s3Loader, catalog.NewFileLoader(logger), cfg.S3.Prefix, logger)

	seedFiles := cfg.Catalog.SeedFiles
	if *files != "" {
		seedFiles = strings.Split(*files, ",")
	}

	importer := catalog.NewImporter(loader, repository.NewProductRepository(pool, logger), *concurrency, logger)
	res, err := importer.Import(ctx, seedFiles)
	if err != nil {
		return fmt.Errorf("catalog import failed: %w", err)
	}

	logger.Info().
		Int("files", res.Files).
		Int("products", res.Products).
		Msg("catalog seeded")

	return nil
}
