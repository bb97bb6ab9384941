package worker

import (
	"context"
	"log/slog"
	"time"

	"news-engine/internal/usecase"
)

const (
	refreshTimeout = 5 * time.Minute
	initialBackoff = 1 * time.Minute
	maxBackoff     = 30 * time.Minute
)

// ProfileWorker periodically rebuilds preference profiles for every active
// user, so recommendations served between refreshes see a warm snapshot even
// when the on-demand rebuild fails.
type ProfileWorker struct {
	rebuilder usecase.RebuildProfileUsecase
	interval  time.Duration
	logger    *slog.Logger
	stopChan  chan struct{}
	backoff   time.Duration
}

func NewProfileWorker(rebuilder usecase.RebuildProfileUsecase, interval time.Duration, logger *slog.Logger) *ProfileWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ProfileWorker{
		rebuilder: rebuilder,
		interval:  interval,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

func (w *ProfileWorker) Start() {
	w.logger.Info("profile_worker_started", slog.Duration("interval", w.interval))
	go w.run()
}

func (w *ProfileWorker) Stop() {
	w.logger.Info("profile_worker_stopping")
	close(w.stopChan)
}

func (w *ProfileWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.refreshAll()
			if w.backoff > 0 {
				ticker.Reset(w.backoff)
			} else {
				ticker.Reset(w.interval)
			}
		}
	}
}

func (w *ProfileWorker) refreshAll() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	start := time.Now()
	rebuilt, err := w.rebuilder.RebuildActive(ctx)
	if err != nil {
		w.backoff = w.nextBackoff(w.backoff)
		w.logger.Warn("profile_refresh_failed",
			slog.String("error", err.Error()),
			slog.Duration("backoff", w.backoff))
		return
	}

	w.backoff = 0
	w.logger.Info("profile_refresh_completed",
		slog.Int("rebuilt", rebuilt),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
}

func (w *ProfileWorker) nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return initialBackoff
	}
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
