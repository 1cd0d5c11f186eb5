package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// CartEvicter frees in-memory carts that have gone idle.
type CartEvicter interface {
	EvictIdle() int
	OpenCount() int
}

// SnapshotPruner deletes stored carts not written since cutoff.
type SnapshotPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CartEvictionWorker drops idle cart stores and, when carts live in
// PostgreSQL, prunes records older than the cart TTL.
type CartEvictionWorker struct {
	carts     CartEvicter
	pruner    SnapshotPruner
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

// NewCartEvictionWorker constructs a CartEvictionWorker. pruner may be nil.
func NewCartEvictionWorker(carts CartEvicter, pruner SnapshotPruner, retention, interval time.Duration) *CartEvictionWorker {
	return &CartEvictionWorker{
		carts:     carts,
		pruner:    pruner,
		retention: retention,
		interval:  interval,
		now:       time.Now,
	}
}

// Start begins the eviction loop and listens for context cancellation.
func (w *CartEvictionWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting cart eviction worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Cart eviction worker stopped")
			return
		}
	}
}

func (w *CartEvictionWorker) run(ctx context.Context) {
	if n := w.carts.EvictIdle(); n > 0 {
		log.Debug().Int("evicted", n).Int("open", w.carts.OpenCount()).Msg("Idle carts evicted")
	}

	if w.pruner == nil || w.retention <= 0 {
		return
	}
	removed, err := w.pruner.DeleteOlderThan(ctx, w.now().Add(-w.retention))
	if err != nil {
		log.Error().Err(err).Msg("Failed to prune stored carts")
		return
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Msg("Expired carts pruned")
	}
}
