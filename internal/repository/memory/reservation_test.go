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

func TestReservationStore_UpdateIsCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	s := NewReservationStore()
	r := model.Reservation{ID: "res1", CustomerID: "c1", RestaurantID: "r1", Status: model.StatusPending}
	require.NoError(t, s.CreateReservation(ctx, r))

	r.Status = model.StatusConfirmed
	require.NoError(t, s.UpdateReservation(ctx, r, model.StatusPending))

	r.Status = model.StatusCancelled
	err := s.UpdateReservation(ctx, r, model.StatusPending)
	assert.ErrorIs(t, err, repository.ErrConflict)

	got, err := s.GetReservation(ctx, "res1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status)

	err = s.UpdateReservation(ctx, model.Reservation{ID: "missing"}, model.StatusPending)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReservationStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewReservationStore()
	table := "t1"
	require.NoError(t, s.CreateReservation(ctx, model.Reservation{ID: "res1", TableID: &table}))

	got, err := s.GetReservation(ctx, "res1")
	require.NoError(t, err)
	*got.TableID = "t2"

	again, err := s.GetReservation(ctx, "res1")
	require.NoError(t, err)
	assert.Equal(t, "t1", *again.TableID)
}

func TestReservationStore_Listings(t *testing.T) {
	ctx := context.Background()
	s := NewReservationStore()
	base := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		start := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, s.CreateReservation(ctx, model.Reservation{
			ID: id, CustomerID: "c1", RestaurantID: "r1", Date: "2026-05-01",
			Status: model.StatusConfirmed, StartsAt: start, EndsAt: start.Add(90 * time.Minute),
		}))
	}

	mine, err := s.ListByCustomer(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, "c", mine[0].ID)

	day, err := s.ListByRestaurant(ctx, "r1", "2026-05-01")
	require.NoError(t, err)
	require.Len(t, day, 3)
	assert.Equal(t, "a", day[0].ID)

	other, err := s.ListByRestaurant(ctx, "r1", "2026-05-02")
	require.NoError(t, err)
	assert.Empty(t, other)

	elapsed, err := s.ListElapsed(ctx, model.StatusConfirmed, base.Add(150*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, elapsed, 2)
	assert.Equal(t, "a", elapsed[0].ID)
}
