package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// FilterRefresher periodically re-seeds the loader's bloom filter so links
// created since the last seed stop reading as nonexistent. The refresh
// interval bounds how long a brand-new link can 404.
type FilterRefresher struct {
	logger   *zap.Logger
	loader   *LinkLoader
	interval time.Duration
	stopChan chan struct{}
}

// NewFilterRefresher creates a refresher for the given loader.
func NewFilterRefresher(logger *zap.Logger, loader *LinkLoader, interval time.Duration) *FilterRefresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &FilterRefresher{
		logger:   logger,
		loader:   loader,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start seeds the filter once synchronously, then keeps it fresh in the
// background. A failed initial seed is not fatal; the loader simply skips
// the filter until a later refresh succeeds.
func (r *FilterRefresher) Start(ctx context.Context) {
	r.refresh(ctx)
	go r.run()
}

// Stop halts the background refresh loop.
func (r *FilterRefresher) Stop() {
	close(r.stopChan)
}

func (r *FilterRefresher) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.refresh(context.Background())
		case <-r.stopChan:
			r.logger.Info("bloom filter refresher stopped")
			return
		}
	}
}

func (r *FilterRefresher) refresh(ctx context.Context) {
	count, err := r.loader.SeedFilter(ctx)
	if err != nil {
		r.logger.Error("failed to seed link bloom filter", zap.Error(err))
		return
	}
	r.logger.Debug("link bloom filter seeded", zap.Int("codes", count))
}
