package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
)

type ReservationStore struct {
	mu           sync.RWMutex
	reservations map[string]model.Reservation
}

func NewReservationStore() *ReservationStore {
	return &ReservationStore{reservations: make(map[string]model.Reservation)}
}

// clone detaches the optional fields so callers cannot write through the
// stored pointers.
func clone(r model.Reservation) model.Reservation {
	if r.TableID != nil {
		id := *r.TableID
		r.TableID = &id
	}
	if r.CancellationTime != nil {
		t := *r.CancellationTime
		r.CancellationTime = &t
	}
	return r
}

func (s *ReservationStore) CreateReservation(ctx context.Context, r model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.reservations[r.ID]; exists {
		return repository.ErrConflict
	}
	s.reservations[r.ID] = clone(r)
	return nil
}

func (s *ReservationStore) GetReservation(ctx context.Context, id string) (model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reservations[id]
	if !ok {
		return model.Reservation{}, repository.ErrNotFound
	}
	return clone(r), nil
}

// UpdateReservation replaces the stored reservation only while its status
// is still from.  Otherwise it returns repository.ErrConflict.
func (s *ReservationStore) UpdateReservation(ctx context.Context, r model.Reservation, from model.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.reservations[r.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if cur.Status != from {
		return repository.ErrConflict
	}
	s.reservations[r.ID] = clone(r)
	return nil
}

// ListByCustomer returns the customer's reservations, latest slot first.
func (s *ReservationStore) ListByCustomer(ctx context.Context, customerID string) ([]model.Reservation, error) {
	out := s.filter(func(r model.Reservation) bool { return r.CustomerID == customerID })
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.After(out[j].StartsAt) })
	return out, nil
}

// ListByRestaurant returns a restaurant's reservations in slot order,
// limited to one local date unless date is empty.
func (s *ReservationStore) ListByRestaurant(ctx context.Context, restaurantID, date string) ([]model.Reservation, error) {
	out := s.filter(func(r model.Reservation) bool {
		return r.RestaurantID == restaurantID && (date == "" || r.Date == date)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

// ListElapsed returns up to limit reservations in status whose slot ended
// at or before the given instant, oldest first.
func (s *ReservationStore) ListElapsed(ctx context.Context, status model.Status, before time.Time, limit int) ([]model.Reservation, error) {
	out := s.filter(func(r model.Reservation) bool {
		return r.Status == status && !r.EndsAt.After(before)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].EndsAt.Before(out[j].EndsAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *ReservationStore) filter(keep func(model.Reservation) bool) []model.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Reservation, 0)
	for _, r := range s.reservations {
		if keep(r) {
			out = append(out, clone(r))
		}
	}
	return out
}
