package worker

import (
	"context"
	"log/slog"
	"time"
)

// RateRefresher fetches and stores the central-bank rates of a date.
type RateRefresher interface {
	Refresh(ctx context.Context, date time.Time) error
}

// RateWorker keeps today's central-bank rates in the cache so report runs do not wait on the bank.
type RateWorker struct {
	refresher RateRefresher
	interval  time.Duration
	now       func() time.Time
}

// NewRateWorker creates a new RateWorker.
func NewRateWorker(refresher RateRefresher, interval time.Duration) *RateWorker {
	return &RateWorker{
		refresher: refresher,
		interval:  interval,
		now:       time.Now,
	}
}

// Run starts the rate worker loop. It blocks until the context is cancelled.
func (w *RateWorker) Run(ctx context.Context) {
	slog.Info("RateWorker: starting")

	w.refresh(ctx, "initial refresh")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("RateWorker: shutting down")
			return
		case <-ticker.C:
			w.refresh(ctx, "refresh")
		}
	}
}

func (w *RateWorker) refresh(ctx context.Context, what string) {
	date := w.now()
	if err := w.refresher.Refresh(ctx, date); err != nil {
		slog.Error("RateWorker: "+what+" failed", "date", date.Format(time.DateOnly), "error", err)
		return
	}
	slog.Info("RateWorker: " + what + " completed")
}
