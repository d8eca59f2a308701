package scoring

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/table-reservation/internal/model"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		name  string
		hours float64
		want  Tier
	}{
		{"alreadyStarted", -3, TierLate},
		{"oneHourBefore", 1, TierLate},
		{"justUnderTwoHours", 1.99, TierLate},
		{"exactlyTwoHours", 2, TierShort},
		{"threeHoursBefore", 3, TierShort},
		{"justUnderADay", 23.9, TierShort},
		{"exactlyADay", 24, TierEarly},
		{"thirtyHoursBefore", 30, TierEarly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TierFor(tt.hours))
		})
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want Delta
	}{
		{"created", Created{}, Delta{Points: 100}},
		{"confirmed", Confirmed{}, Delta{Points: 50, Reliability: 5}},
		{"completed", Completed{}, Delta{Points: 200, Reliability: 5}},
		{"rejected", Rejected{}, Delta{Reliability: -10}},
		{"noShow", NoShow{}, Delta{Points: -200, Reliability: -15}},
		{"cancelLate", Cancelled{Tier: TierLate}, Delta{Points: -200, Reliability: -15}},
		{"cancelShort", Cancelled{Tier: TierShort}, Delta{Points: -100, Reliability: -5}},
		{"cancelEarly", Cancelled{Tier: TierEarly}, Delta{Points: -50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.ev))
		})
	}
}

func TestCancellationTimingDeltas(t *testing.T) {
	start := time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC)

	oneHour := Evaluate(Cancelled{Tier: TierFor(HoursUntil(start, start.Add(-time.Hour)))})
	assert.Equal(t, Delta{Points: -200, Reliability: -15}, oneHour)

	thirtyHours := Evaluate(Cancelled{Tier: TierFor(HoursUntil(start, start.Add(-30*time.Hour)))})
	assert.Equal(t, Delta{Points: -50, Reliability: 0}, thirtyHours)
}

func TestEventTypes(t *testing.T) {
	assert.Equal(t, model.EventCreated, Created{}.Type())
	assert.Equal(t, model.EventCancelled, Cancelled{Tier: TierLate}.Type())
	assert.Equal(t, model.EventNoShow, NoShow{}.Type())
}

func TestApplyClamps(t *testing.T) {
	points, rel := Apply(30, 10, Delta{Points: -200, Reliability: -15})
	assert.Equal(t, 0, points)
	assert.Equal(t, 0, rel)

	points, rel = Apply(0, 98, Delta{Points: 200, Reliability: 5})
	assert.Equal(t, 200, points)
	assert.Equal(t, 100, rel)
}

func TestApplyKeepsBoundsOverRandomSequences(t *testing.T) {
	events := []Event{
		Created{}, Confirmed{}, Completed{}, Rejected{}, NoShow{},
		Cancelled{Tier: TierLate}, Cancelled{Tier: TierShort}, Cancelled{Tier: TierEarly},
	}
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		points := rng.Intn(500)
		rel := rng.Intn(101)
		for step := 0; step < 50; step++ {
			points, rel = Apply(points, rel, Evaluate(events[rng.Intn(len(events))]))
			require.GreaterOrEqual(t, points, 0)
			require.GreaterOrEqual(t, rel, model.MinReliability)
			require.LessOrEqual(t, rel, model.MaxReliability)
		}
	}
}

func TestTierLate(t *testing.T) {
	assert.True(t, TierLate.Late())
	assert.True(t, TierShort.Late())
	assert.False(t, TierEarly.Late())
	assert.Equal(t, "short", TierShort.String())
}
