package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
)

// SlotStore holds restaurant tables and their allocations.  Claim checks
// for overlap and inserts under one lock, so two concurrent claims for
// the same table and window cannot both succeed.
type SlotStore struct {
	mu          sync.RWMutex
	tables      map[string]model.Table
	allocations map[string][]model.Allocation // by table id
	now         func() time.Time
}

func NewSlotStore() *SlotStore {
	return &SlotStore{
		tables:      make(map[string]model.Table),
		allocations: make(map[string][]model.Allocation),
		now:         time.Now,
	}
}

func (s *SlotStore) AddTable(ctx context.Context, t model.Table) (model.Table, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tables[t.ID]; exists {
		return model.Table{}, repository.ErrConflict
	}
	s.tables[t.ID] = t
	return t, nil
}

func (s *SlotStore) ListTables(ctx context.Context, restaurantID string) ([]model.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Table, 0)
	for _, t := range s.tables {
		if t.RestaurantID == restaurantID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *SlotStore) BusyTableIDs(ctx context.Context, restaurantID string, slot model.Slot) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var busy []string
	for tableID, allocs := range s.allocations {
		for _, a := range allocs {
			if a.RestaurantID == restaurantID && a.Slot.Overlaps(slot) {
				busy = append(busy, tableID)
				break
			}
		}
	}
	return busy, nil
}

func (s *SlotStore) Claim(ctx context.Context, a model.Allocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[a.TableID]; !ok {
		return repository.ErrNotFound
	}
	for _, held := range s.allocations[a.TableID] {
		if held.Slot.Overlaps(a.Slot) {
			return repository.ErrConflict
		}
	}
	s.allocations[a.TableID] = append(s.allocations[a.TableID], a)
	return nil
}

func (s *SlotStore) Free(ctx context.Context, tableID, reservationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	allocs := s.allocations[tableID]
	for i, a := range allocs {
		if a.ReservationID == reservationID {
			s.allocations[tableID] = append(allocs[:i:i], allocs[i+1:]...)
			break
		}
	}
	return nil
}

func (s *SlotStore) FreeReservation(ctx context.Context, reservationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tableID, allocs := range s.allocations {
		kept := allocs[:0:0]
		for _, a := range allocs {
			if a.ReservationID != reservationID {
				kept = append(kept, a)
			}
		}
		s.allocations[tableID] = kept
	}
	return nil
}

// Allocations returns the allocations currently held on a table.
func (s *SlotStore) Allocations(tableID string) []model.Allocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Allocation(nil), s.allocations[tableID]...)
}
