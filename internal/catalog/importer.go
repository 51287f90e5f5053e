package catalog

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Store persists catalogue records.
type Store interface {
	Upsert(ctx context.Context, product *model.Product) error
}

// Result summarises an import run.
type Result struct {
	Files    int
	Products int
}

// Importer loads seed files and upserts their products.
type Importer struct {
	loader      Loader
	store       Store
	concurrency int
	logger      zerolog.Logger
}

// NewImporter creates an importer writing with at most concurrency
// parallel upserts.
func NewImporter(loader Loader, store Store, concurrency int, logger zerolog.Logger) *Importer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Importer{
		loader:      loader,
		store:       store,
		concurrency: concurrency,
		logger:      logger.With().Str("component", "catalog-importer").Logger(),
	}
}

// Import loads every file concurrently, then upserts the merged products.
// When an ID appears more than once, the record from the later file (or
// later line) wins. Nothing is written if any file fails to load.
func (i *Importer) Import(ctx context.Context, files []string) (Result, error) {
	loaded := make([][]model.Product, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for idx, path := range files {
		g.Go(func() error {
			products, err := i.loader.Load(gctx, path)
			if err != nil {
				return fmt.Errorf("failed to load seed file %s: %w", path, err)
			}
			loaded[idx] = products
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	merged := make(map[string]model.Product)
	var order []string
	for _, products := range loaded {
		for _, p := range products {
			if _, seen := merged[p.ID]; !seen {
				order = append(order, p.ID)
			}
			merged[p.ID] = p
		}
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(i.concurrency)
	for _, id := range order {
		p := merged[id]
		g.Go(func() error {
			if err := i.store.Upsert(gctx, &p); err != nil {
				return fmt.Errorf("failed to upsert product %s: %w", p.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{Files: len(files), Products: len(order)}
	i.logger.Info().
		Int("files", res.Files).
		Int("products", res.Products).
		Msg("catalog import completed")

	return res, nil
}
