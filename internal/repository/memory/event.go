package memory

import (
	"context"
	"sync"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
)

// EventLog is an append-only list of event records.  A record whose
// idempotency key was already seen is dropped with
// repository.ErrAlreadyRecorded.
type EventLog struct {
	mu      sync.RWMutex
	records []model.EventRecord
	keys    map[string]struct{}
}

func NewEventLog() *EventLog {
	return &EventLog{keys: make(map[string]struct{})}
}

func (l *EventLog) Record(ctx context.Context, rec model.EventRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, dup := l.keys[rec.IdempotencyKey]; dup {
		return repository.ErrAlreadyRecorded
	}
	l.keys[rec.IdempotencyKey] = struct{}{}
	l.records = append(l.records, rec)
	return nil
}

// ListByReservation returns a reservation's records in the order they
// were recorded.
func (l *EventLog) ListByReservation(ctx context.Context, reservationID string) ([]model.EventRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.EventRecord, 0)
	for _, r := range l.records {
		if r.ReservationID == reservationID {
			out = append(out, r)
		}
	}
	return out, nil
}
