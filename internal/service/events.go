package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
)

// EventRecorder writes every event record to a durable store and then
// hands it to the notifiers.  A store failure is returned and notifier
// failures are only logged.  A record the store already holds is not
// notified again, so re-recording after a partial failure is safe.
type EventRecorder struct {
	store     EventSink
	notifiers []EventSink
	logger    *slog.Logger
}

func NewEventRecorder(store EventSink, logger *slog.Logger, notifiers ...EventSink) *EventRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventRecorder{store: store, notifiers: notifiers, logger: logger}
}

func (r *EventRecorder) Record(ctx context.Context, rec model.EventRecord) error {
	err := r.store.Record(ctx, rec)
	if errors.Is(err, repository.ErrAlreadyRecorded) {
		r.logger.Debug("event already recorded", "key", rec.IdempotencyKey)
		return nil
	}
	if err != nil {
		return err
	}
	for _, n := range r.notifiers {
		if err := n.Record(ctx, rec); err != nil && !errors.Is(err, repository.ErrAlreadyRecorded) {
			r.logger.Warn("event notify failed",
				"event", rec.Type, "reservation_id", rec.ReservationID, "err", err)
		}
	}
	return nil
}
