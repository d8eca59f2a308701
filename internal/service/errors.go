package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
)

var (
	ErrPolicyRejected    = errors.New("reliability score below restaurant threshold")
	ErrNoAvailability    = errors.New("no table available")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("not found")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrForbidden         = errors.New("forbidden")
	// ErrPartialFailure marks a transition whose status change was stored
	// but whose follow-up effects (score, table, event) did not all land.
	ErrPartialFailure = errors.New("transition stored with failed side effects")
)

// PolicyRejectedError carries the numbers behind a refused booking.
type PolicyRejectedError struct {
	Score     int
	Threshold int
}

func (e *PolicyRejectedError) Error() string {
	return fmt.Sprintf("reliability score %d below threshold %d", e.Score, e.Threshold)
}

func (e *PolicyRejectedError) Is(target error) bool { return target == ErrPolicyRejected }

// NoAvailabilityError describes the booking that could not be seated.
type NoAvailabilityError struct {
	RestaurantID string
	Date         string
	Time         string
	PartySize    int
}

func (e *NoAvailabilityError) Error() string {
	return fmt.Sprintf("no table for %d at restaurant %s on %s %s", e.PartySize, e.RestaurantID, e.Date, e.Time)
}

func (e *NoAvailabilityError) Is(target error) bool { return target == ErrNoAvailability }

type InvalidTransitionError struct {
	ReservationID string
	From          model.Status
	To            model.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("reservation %s: cannot move from %s to %s", e.ReservationID, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

func invalidRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// lookupErr maps a store miss onto ErrNotFound and passes anything else
// through.
func lookupErr(what, id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("load %s %s: %w", what, id, err)
}
