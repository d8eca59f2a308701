// Package availability answers "which table can seat this party for this
// slot" and records the resulting allocation.  The Index holds no state of
// its own; the conflict-free guarantee comes from the Store's Claim, which
// must check for overlap and insert atomically.
package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
)

// ErrNotFound is returned when no active table can seat the party for the
// requested slot.
var ErrNotFound = errors.New("no table available")

// maxAttempts bounds Reserve: the first claim plus one retry against the
// next candidate.
const maxAttempts = 2

// Store persists tables and their slot allocations.
type Store interface {
	// ListTables returns every table of a restaurant, active or not.
	ListTables(ctx context.Context, restaurantID string) ([]model.Table, error)
	// BusyTableIDs returns the ids of tables holding an allocation that
	// overlaps slot.
	BusyTableIDs(ctx context.Context, restaurantID string, slot model.Slot) ([]string, error)
	// Claim inserts a, or returns repository.ErrConflict when the table
	// already has an overlapping allocation.
	Claim(ctx context.Context, a model.Allocation) error
	// Free removes the allocation of reservationID on tableID.  Freeing a
	// missing allocation is not an error.
	Free(ctx context.Context, tableID, reservationID string) error
	// FreeReservation removes every allocation held by reservationID,
	// whichever table it is on.
	FreeReservation(ctx context.Context, reservationID string) error
}

type Index struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{store: store, logger: logger}
}

// FindAvailableTable returns the smallest active table with capacity for
// partySize that is free for the whole slot.  Equal capacities are ordered
// by table id.
func (ix *Index) FindAvailableTable(ctx context.Context, restaurantID string, slot model.Slot, partySize int) (model.Table, error) {
	return ix.find(ctx, restaurantID, slot, partySize, nil)
}

func (ix *Index) find(ctx context.Context, restaurantID string, slot model.Slot, partySize int, skip map[string]bool) (model.Table, error) {
	tables, err := ix.store.ListTables(ctx, restaurantID)
	if err != nil {
		return model.Table{}, fmt.Errorf("list tables: %w", err)
	}
	busyIDs, err := ix.store.BusyTableIDs(ctx, restaurantID, slot)
	if err != nil {
		return model.Table{}, fmt.Errorf("busy tables: %w", err)
	}
	busy := make(map[string]bool, len(busyIDs))
	for _, id := range busyIDs {
		busy[id] = true
	}

	candidates := make([]model.Table, 0, len(tables))
	for _, t := range tables {
		if !t.IsActive || t.Capacity < partySize || busy[t.ID] || skip[t.ID] {
			continue
		}
		candidates = append(candidates, t)
	}
	if len(candidates) == 0 {
		return model.Table{}, ErrNotFound
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Capacity != candidates[j].Capacity {
			return candidates[i].Capacity < candidates[j].Capacity
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates[0], nil
}

// Allocate binds table t to reservationID for slot.  It returns
// repository.ErrConflict if another reservation got there first.
func (ix *Index) Allocate(ctx context.Context, t model.Table, reservationID string, slot model.Slot) error {
	return ix.store.Claim(ctx, model.Allocation{
		TableID:       t.ID,
		RestaurantID:  t.RestaurantID,
		ReservationID: reservationID,
		Slot:          slot,
	})
}

// Release frees the table held by reservationID.  It is safe to call more
// than once.
func (ix *Index) Release(ctx context.Context, tableID, reservationID string) error {
	if tableID == "" {
		return nil
	}
	return ix.store.Free(ctx, tableID, reservationID)
}

// ReleaseReservation frees whatever table reservationID still holds.  It
// is used when the table id is no longer known, such as on a reservation
// that was already moved to a terminal status.
func (ix *Index) ReleaseReservation(ctx context.Context, reservationID string) error {
	return ix.store.FreeReservation(ctx, reservationID)
}

// Reserve finds and claims a table in one step.  When the claim loses a
// race the next candidate is tried once; after that, or when nothing fits,
// the error matches ErrNotFound.
func (ix *Index) Reserve(ctx context.Context, restaurantID, reservationID string, slot model.Slot, partySize int) (model.Table, error) {
	tried := make(map[string]bool, maxAttempts)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		t, err := ix.find(ctx, restaurantID, slot, partySize, tried)
		if err != nil {
			return model.Table{}, err
		}
		err = ix.Allocate(ctx, t, reservationID, slot)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return model.Table{}, fmt.Errorf("claim table %s: %w", t.ID, err)
		}
		ix.logger.Debug("table claim lost",
			"restaurant_id", restaurantID, "table_id", t.ID, "attempt", attempt)
		tried[t.ID] = true
	}
	return model.Table{}, fmt.Errorf("%w: claims conflicted %d times", ErrNotFound, maxAttempts)
}
