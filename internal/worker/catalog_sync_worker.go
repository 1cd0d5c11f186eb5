package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bakery_storefront/internal/models"
)

// CatalogRefresher reloads the catalog from the bakery API.
type CatalogRefresher interface {
	Refresh(ctx context.Context) ([]models.Product, error)
}

// CatalogSyncWorker periodically refreshes the cached catalog.
type CatalogSyncWorker struct {
	catalog  CatalogRefresher
	interval time.Duration
}

// NewCatalogSyncWorker constructs a CatalogSyncWorker.
func NewCatalogSyncWorker(catalog CatalogRefresher, interval time.Duration) *CatalogSyncWorker {
	return &CatalogSyncWorker{
		catalog:  catalog,
		interval: interval,
	}
}

// Start begins the periodic sync loop and listens for context cancellation.
func (w *CatalogSyncWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting catalog sync worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Catalog sync worker stopped")
			return
		}
	}
}

func (w *CatalogSyncWorker) run(ctx context.Context) {
	start := time.Now()
	cakes, err := w.catalog.Refresh(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sync catalog")
		return
	}

	log.Info().Int("cakes", len(cakes)).Dur("duration", time.Since(start)).Msg("Catalog sync completed")
}
