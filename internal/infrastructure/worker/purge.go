package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"shipquotes-service/internal/application"
)

var _ application.Worker = (*PurgeWorker)(nil)

// Purger deletes quotes whose expiry has passed.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// PurgeWorker sweeps expired quotes on a fixed interval. Safe to run next to
// reconciliation: an upsert refreshes expires_at, which moves the row out of
// the expired set before the sweep can see it.
type PurgeWorker struct {
	Quotes    Purger
	PollEvery time.Duration
	Log       *zap.Logger
}

func (w *PurgeWorker) Start(ctx context.Context) {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	if w.PollEvery <= 0 {
		w.PollEvery = time.Minute
	}

	t := time.NewTicker(w.PollEvery)
	defer t.Stop()

	log.Info("purge_worker_started", zap.Duration("poll_every", w.PollEvery))
	for {
		select {
		case <-ctx.Done():
			log.Info("purge_worker_stopped")
			return
		case <-t.C:
			w.tick(ctx, log)
		}
	}
}

func (w *PurgeWorker) tick(ctx context.Context, log *zap.Logger) {
	n, err := w.Quotes.PurgeExpired(ctx, time.Now().UTC())
	if err != nil {
		log.Warn("purge_failed", zap.Error(err))
		return
	}
	if n > 0 {
		log.Info("purge_done", zap.Int64("removed", n))
	}
}
