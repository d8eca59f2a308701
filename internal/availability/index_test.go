package availability_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/table-reservation/internal/availability"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/repository/memory"
)

var seven = time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC)

func slot(start time.Time) model.Slot {
	return model.Slot{Start: start, End: start.Add(90 * time.Minute)}
}

func seed(t *testing.T, tables ...model.Table) *memory.SlotStore {
	t.Helper()
	s := memory.NewSlotStore()
	for _, tbl := range tables {
		_, err := s.AddTable(context.Background(), tbl)
		require.NoError(t, err)
	}
	return s
}

func table(id string, capacity int) model.Table {
	return model.Table{ID: id, RestaurantID: "r1", Label: id, Capacity: capacity, IsActive: true}
}

func TestFindAvailableTable_SmallestFit(t *testing.T) {
	ix := availability.New(seed(t, table("t6", 6), table("t2", 2), table("t4b", 4), table("t4a", 4)), nil)

	got, err := ix.FindAvailableTable(context.Background(), "r1", slot(seven), 3)
	require.NoError(t, err)
	assert.Equal(t, "t4a", got.ID)

	got, err = ix.FindAvailableTable(context.Background(), "r1", slot(seven), 2)
	require.NoError(t, err)
	assert.Equal(t, "t2", got.ID)
}

func TestFindAvailableTable_SkipsInactiveAndTooSmall(t *testing.T) {
	inactive := table("t8", 8)
	inactive.IsActive = false
	ix := availability.New(seed(t, table("t2", 2), inactive), nil)

	_, err := ix.FindAvailableTable(context.Background(), "r1", slot(seven), 5)
	assert.ErrorIs(t, err, availability.ErrNotFound)
}

func TestReserve_OverlapAndAdjacentSlots(t *testing.T) {
	ctx := context.Background()
	ix := availability.New(seed(t, table("t4", 4)), nil)

	got, err := ix.Reserve(ctx, "r1", "a", slot(seven), 4)
	require.NoError(t, err)
	assert.Equal(t, "t4", got.ID)

	_, err = ix.Reserve(ctx, "r1", "b", slot(seven.Add(time.Hour)), 2)
	assert.ErrorIs(t, err, availability.ErrNotFound)

	got, err = ix.Reserve(ctx, "r1", "c", slot(seven.Add(90*time.Minute)), 2)
	require.NoError(t, err)
	assert.Equal(t, "t4", got.ID)
}

func TestRelease_FreesTheSlot(t *testing.T) {
	ctx := context.Background()
	ix := availability.New(seed(t, table("t4", 4)), nil)

	_, err := ix.Reserve(ctx, "r1", "a", slot(seven), 2)
	require.NoError(t, err)
	require.NoError(t, ix.Release(ctx, "t4", "a"))
	require.NoError(t, ix.Release(ctx, "t4", "a"))
	require.NoError(t, ix.Release(ctx, "", "a"))

	_, err = ix.Reserve(ctx, "r1", "b", slot(seven), 2)
	assert.NoError(t, err)
}

// racyStore reports every table as free and fails the first n claims with
// a conflict, as if another booking won each race.
type racyStore struct {
	*memory.SlotStore
	conflicts int32
	claimed   []string
}

func (s *racyStore) BusyTableIDs(ctx context.Context, restaurantID string, sl model.Slot) ([]string, error) {
	return nil, nil
}

func (s *racyStore) Claim(ctx context.Context, a model.Allocation) error {
	s.claimed = append(s.claimed, a.TableID)
	if atomic.AddInt32(&s.conflicts, -1) >= 0 {
		return repository.ErrConflict
	}
	return s.SlotStore.Claim(ctx, a)
}

func TestReserve_RetriesOnceWithNextCandidate(t *testing.T) {
	store := &racyStore{SlotStore: seed(t, table("t2", 2), table("t4", 4)), conflicts: 1}
	ix := availability.New(store, nil)

	got, err := ix.Reserve(context.Background(), "r1", "a", slot(seven), 2)
	require.NoError(t, err)
	assert.Equal(t, "t4", got.ID)
	assert.Equal(t, []string{"t2", "t4"}, store.claimed)
}

func TestReserve_GivesUpAfterSecondConflict(t *testing.T) {
	store := &racyStore{SlotStore: seed(t, table("t2", 2), table("t4", 4), table("t6", 6)), conflicts: 2}
	ix := availability.New(store, nil)

	_, err := ix.Reserve(context.Background(), "r1", "a", slot(seven), 2)
	assert.ErrorIs(t, err, availability.ErrNotFound)
	assert.Equal(t, []string{"t2", "t4"}, store.claimed)
}

func TestReserve_ConcurrentBookingsForLastTable(t *testing.T) {
	ix := availability.New(seed(t, table("t4", 4)), nil)

	const racers = 20
	var (
		wg   sync.WaitGroup
		wins int32
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := ix.Reserve(context.Background(), "r1", string(rune('a'+i)), slot(seven), 4)
			if err == nil {
				atomic.AddInt32(&wins, 1)
				return
			}
			assert.ErrorIs(t, err, availability.ErrNotFound)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}
