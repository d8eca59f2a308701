package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/scoring"
)

func TestProfileStore_ApplyDeltaIsIdempotentByKey(t *testing.T) {
	ctx := context.Background()
	s := NewProfileStore()
	p, err := s.CreateProfile(ctx, model.Profile{Email: "A@Example.com", ReliabilityScore: 50})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", p.Email)

	got, applied, err := s.ApplyDelta(ctx, p.ID, "r1:confirmed", scoring.Delta{Points: 50, Reliability: 5})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 50, got.Points)
	assert.Equal(t, 55, got.ReliabilityScore)

	got, applied, err = s.ApplyDelta(ctx, p.ID, "r1:confirmed", scoring.Delta{Points: 50, Reliability: 5})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 50, got.Points)
	assert.Equal(t, 55, got.ReliabilityScore)
}

func TestProfileStore_ApplyDeltaClamps(t *testing.T) {
	ctx := context.Background()
	s := NewProfileStore()
	p, err := s.CreateProfile(ctx, model.Profile{Email: "c@example.com", Points: 10, ReliabilityScore: 5})
	require.NoError(t, err)

	got, _, err := s.ApplyDelta(ctx, p.ID, "r1:no_show", scoring.Delta{Points: -200, Reliability: -15})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Points)
	assert.Equal(t, 0, got.ReliabilityScore)
}

func TestProfileStore_ConcurrentDeltasAreAllApplied(t *testing.T) {
	ctx := context.Background()
	s := NewProfileStore()
	p, err := s.CreateProfile(ctx, model.Profile{Email: "d@example.com"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := s.ApplyDelta(ctx, p.ID, fmt.Sprintf("r%d:created", i), scoring.Delta{Points: 100})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := s.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5000, got.Points)
}

func TestProfileStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := NewProfileStore()
	_, err := s.CreateProfile(ctx, model.Profile{Email: "dup@example.com"})
	require.NoError(t, err)

	_, err = s.CreateProfile(ctx, model.Profile{Email: " DUP@example.com "})
	assert.ErrorIs(t, err, repository.ErrEmailExists)

	_, _, err = s.ApplyDelta(ctx, "missing", "k", scoring.Delta{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
