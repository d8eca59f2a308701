package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

// Sweeper completes confirmed reservations whose slot has ended.  Pending
// reservations are left for the restaurant to decide.  A reservation that
// fails to complete sits out the next pass, so a batch full of failures
// cannot hold back the ones behind it.
type Sweeper struct {
	Service  *ReservationService
	Store    ReservationStore
	Interval time.Duration
	Batch    int
	Logger   *slog.Logger

	mu     sync.Mutex
	failed map[string]bool // ids that failed in the previous pass
}

// Run sweeps once immediately and then every Interval until ctx is done.
func (w *Sweeper) Run(ctx context.Context) error {
	t := time.NewTicker(w.Interval)
	defer t.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *Sweeper) tick(ctx context.Context) {
	n, err := w.Sweep(ctx)
	if err != nil {
		w.logger().Error("sweep failed", "err", err)
		return
	}
	if n > 0 {
		w.logger().Info("sweep completed reservations", "count", n)
	}
}

// Sweep completes one batch of elapsed reservations and returns how many
// moved.  A reservation that changed state concurrently is skipped.
func (w *Sweeper) Sweep(ctx context.Context) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	limit := w.Batch
	if limit > 0 {
		limit += len(w.failed)
	}
	due, err := w.Store.ListElapsed(ctx, model.StatusConfirmed, w.Service.now().UTC(), limit)
	if err != nil {
		return 0, err
	}
	failed := make(map[string]bool)
	done, tried := 0, 0
	for _, r := range due {
		if w.Batch > 0 && tried == w.Batch {
			break
		}
		if w.failed[r.ID] {
			continue
		}
		if ctx.Err() != nil {
			w.failed = failed
			return done, ctx.Err()
		}
		tried++
		_, err := w.Service.complete(ctx, r.ID, model.ActorSystem)
		switch {
		case err == nil, errors.Is(err, ErrPartialFailure):
			done++
		case errors.Is(err, ErrInvalidTransition):
		default:
			failed[r.ID] = true
			w.logger().Warn("auto-complete failed", "reservation_id", r.ID, "err", err)
		}
	}
	w.failed = failed
	return done, nil
}

func (w *Sweeper) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}
