package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
)

func slotAt(start time.Time, d time.Duration) model.Slot {
	return model.Slot{Start: start, End: start.Add(d)}
}

func TestSlotStore_ClaimRejectsOverlap(t *testing.T) {
	ctx := context.Background()
	s := NewSlotStore()
	tbl, err := s.AddTable(ctx, model.Table{ID: "t1", RestaurantID: "r1", Capacity: 4, IsActive: true})
	require.NoError(t, err)

	seven := time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC)
	require.NoError(t, s.Claim(ctx, model.Allocation{TableID: tbl.ID, RestaurantID: "r1", ReservationID: "a", Slot: slotAt(seven, 90*time.Minute)}))

	err = s.Claim(ctx, model.Allocation{TableID: tbl.ID, RestaurantID: "r1", ReservationID: "b", Slot: slotAt(seven.Add(30*time.Minute), 90*time.Minute)})
	assert.ErrorIs(t, err, repository.ErrConflict)

	// Back-to-back slots share only the boundary instant.
	require.NoError(t, s.Claim(ctx, model.Allocation{TableID: tbl.ID, RestaurantID: "r1", ReservationID: "c", Slot: slotAt(seven.Add(90*time.Minute), 90*time.Minute)}))

	busy, err := s.BusyTableIDs(ctx, "r1", slotAt(seven, time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, busy)
}

func TestSlotStore_FreeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewSlotStore()
	_, err := s.AddTable(ctx, model.Table{ID: "t1", RestaurantID: "r1", Capacity: 2, IsActive: true})
	require.NoError(t, err)

	seven := time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC)
	require.NoError(t, s.Claim(ctx, model.Allocation{TableID: "t1", RestaurantID: "r1", ReservationID: "a", Slot: slotAt(seven, time.Hour)}))

	require.NoError(t, s.Free(ctx, "t1", "a"))
	require.NoError(t, s.Free(ctx, "t1", "a"))
	assert.Empty(t, s.Allocations("t1"))

	assert.NoError(t, s.Claim(ctx, model.Allocation{TableID: "t1", RestaurantID: "r1", ReservationID: "b", Slot: slotAt(seven, time.Hour)}))
}

func TestSlotStore_FreeReservationAcrossTables(t *testing.T) {
	ctx := context.Background()
	s := NewSlotStore()
	for _, id := range []string{"t1", "t2"} {
		_, err := s.AddTable(ctx, model.Table{ID: id, RestaurantID: "r1", Capacity: 2, IsActive: true})
		require.NoError(t, err)
	}
	seven := time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC)
	require.NoError(t, s.Claim(ctx, model.Allocation{TableID: "t1", RestaurantID: "r1", ReservationID: "a", Slot: slotAt(seven, time.Hour)}))
	require.NoError(t, s.Claim(ctx, model.Allocation{TableID: "t2", RestaurantID: "r1", ReservationID: "b", Slot: slotAt(seven, time.Hour)}))

	require.NoError(t, s.FreeReservation(ctx, "a"))
	require.NoError(t, s.FreeReservation(ctx, "a"))
	assert.Empty(t, s.Allocations("t1"))
	assert.Len(t, s.Allocations("t2"), 1)
}

func TestSlotStore_ClaimUnknownTable(t *testing.T) {
	s := NewSlotStore()
	err := s.Claim(context.Background(), model.Allocation{TableID: "nope"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
