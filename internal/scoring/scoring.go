// Package scoring maps reservation lifecycle events to changes in a
// customer's loyalty points and reliability score.  Everything here is
// pure; persisting the result is the score store's job.
package scoring

import (
	"fmt"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

// Tier classifies a cancellation by how close to the reservation it
// happened.
type Tier int

const (
	TierEarly Tier = iota // 24 hours or more before the slot
	TierShort             // between 2 and 24 hours before
	TierLate              // less than 2 hours before, or after the start
)

const (
	lateWindowHours  = 2
	shortWindowHours = 24
)

func (t Tier) String() string {
	switch t {
	case TierEarly:
		return "early"
	case TierShort:
		return "short"
	case TierLate:
		return "late"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Late reports whether a cancellation in this tier counts as a late
// cancellation on the reservation record.
func (t Tier) Late() bool { return t != TierEarly }

// TierFor returns the cancellation tier for the given number of hours
// remaining until the reservation starts.
func TierFor(hoursUntil float64) Tier {
	switch {
	case hoursUntil < lateWindowHours:
		return TierLate
	case hoursUntil < shortWindowHours:
		return TierShort
	default:
		return TierEarly
	}
}

// HoursUntil is the signed number of hours from now to start.
func HoursUntil(start, now time.Time) float64 {
	return start.Sub(now).Hours()
}

// Event is a lifecycle event that carries a score consequence.  The set
// of implementations is closed.
type Event interface {
	Type() model.EventType
	event()
}

type (
	Created   struct{}
	Confirmed struct{}
	Rejected  struct{}
	Completed struct{}
	NoShow    struct{}
	Cancelled struct{ Tier Tier }
)

func (Created) Type() model.EventType   { return model.EventCreated }
func (Confirmed) Type() model.EventType { return model.EventConfirmed }
func (Rejected) Type() model.EventType  { return model.EventRejected }
func (Completed) Type() model.EventType { return model.EventCompleted }
func (NoShow) Type() model.EventType    { return model.EventNoShow }
func (Cancelled) Type() model.EventType { return model.EventCancelled }

func (Created) event()   {}
func (Confirmed) event() {}
func (Rejected) event()  {}
func (Completed) event() {}
func (NoShow) event()    {}
func (Cancelled) event() {}

// Delta is a change to apply to a profile.
type Delta struct {
	Points      int `json:"points"`
	Reliability int `json:"reliability"`
}

// Evaluate returns the score consequence of ev.
func Evaluate(ev Event) Delta {
	switch e := ev.(type) {
	case Created:
		return Delta{Points: 100}
	case Confirmed:
		return Delta{Points: 50, Reliability: 5}
	case Completed:
		return Delta{Points: 200, Reliability: 5}
	case Rejected:
		return Delta{Reliability: -10}
	case NoShow:
		return Delta{Points: -200, Reliability: -15}
	case Cancelled:
		switch e.Tier {
		case TierLate:
			return Delta{Points: -200, Reliability: -15}
		case TierShort:
			return Delta{Points: -100, Reliability: -5}
		default:
			return Delta{Points: -50}
		}
	}
	panic(fmt.Sprintf("scoring: unhandled event %T", ev))
}

// Apply adds d to the given balances and clamps the result: points never
// drop below zero and reliability stays within [0, 100].
func Apply(points, reliability int, d Delta) (int, int) {
	points += d.Points
	if points < 0 {
		points = 0
	}
	return points, ClampReliability(reliability + d.Reliability)
}

// ClampReliability bounds a score to the valid range.
func ClampReliability(score int) int {
	return max(model.MinReliability, min(model.MaxReliability, score))
}
