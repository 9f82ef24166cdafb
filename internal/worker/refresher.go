package worker

import (
	"context"
	"time"

	"commerce-console/internal/orchestrator"
	"commerce-console/internal/util"

	"go.uber.org/zap"
)

// Refresher periodically reloads the cached collections so out-of-band
// backend mutations show up without a user action. Mutations still trigger
// their own targeted refreshes; this only bounds staleness.
type Refresher struct {
	console  *orchestrator.Console
	interval time.Duration
	logger   *zap.Logger
	stop     chan struct{}
}

// NewRefresher creates a refresher. An interval of zero disables it.
func NewRefresher(console *orchestrator.Console, interval time.Duration) *Refresher {
	return &Refresher{
		console:  console,
		interval: interval,
		logger:   util.GetLogger(),
		stop:     make(chan struct{}),
	}
}

// Start runs the refresh loop until the context is cancelled or Stop is
// called.
func (r *Refresher) Start(ctx context.Context) error {
	if r.interval <= 0 {
		r.logger.Info("Cache refresher disabled")
		return nil
	}

	r.logger.Info("Starting cache refresher", zap.Duration("interval", r.interval))
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.stop:
			return nil
		case <-ticker.C:
			if err := r.console.LoadAll(ctx); err != nil {
				r.logger.Warn("Periodic cache refresh incomplete", zap.Error(err))
			}
		}
	}
}

// Stop stops the refresher.
func (r *Refresher) Stop() {
	close(r.stop)
}
