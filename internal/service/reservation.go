// Package service implements the reservation lifecycle: admission against
// a restaurant's score policy, table allocation, the status state machine
// and the score consequences of each transition.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/table-reservation/internal/availability"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/scoring"
)

// DefaultSlotDuration is how long a table is held for one reservation.
const DefaultSlotDuration = 90 * time.Minute

// Deps wires a ReservationService.  Now and NewID default to the wall
// clock and random uuids.
type Deps struct {
	Reservations ReservationStore
	Restaurants  RestaurantStore
	Profiles     ProfileStore
	Tables       TableAllocator
	Events       EventSink
	SlotDuration time.Duration
	Now          func() time.Time
	NewID        func() string
	Logger       *slog.Logger
}

type ReservationService struct {
	reservations ReservationStore
	restaurants  RestaurantStore
	profiles     ProfileStore
	tables       TableAllocator
	events       EventSink
	slotDuration time.Duration
	now          func() time.Time
	newID        func() string
	logger       *slog.Logger
}

func NewReservationService(d Deps) *ReservationService {
	s := &ReservationService{
		reservations: d.Reservations,
		restaurants:  d.Restaurants,
		profiles:     d.Profiles,
		tables:       d.Tables,
		events:       d.Events,
		slotDuration: d.SlotDuration,
		now:          d.Now,
		newID:        d.NewID,
		logger:       d.Logger,
	}
	if s.slotDuration <= 0 {
		s.slotDuration = DefaultSlotDuration
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// BookingRequest is a customer's request for a table.  Date and Time are
// in the restaurant's local timezone.
type BookingRequest struct {
	CustomerID   string
	RestaurantID string
	Date         string
	Time         string
	PartySize    int
}

// RequestReservation books the smallest free table that seats the party
// and creates a pending reservation for it.  The restaurant's score
// policy is read once at the start and decides admission.
func (s *ReservationService) RequestReservation(ctx context.Context, req BookingRequest) (model.Reservation, error) {
	if req.PartySize < 1 {
		return model.Reservation{}, invalidRequest("party size must be at least 1")
	}
	profile, err := s.profiles.GetProfile(ctx, req.CustomerID)
	if err != nil {
		return model.Reservation{}, lookupErr("customer", req.CustomerID, err)
	}
	restaurant, err := s.restaurants.GetRestaurant(ctx, req.RestaurantID)
	if err != nil {
		return model.Reservation{}, lookupErr("restaurant", req.RestaurantID, err)
	}
	policy := restaurant.Policy
	if !policy.Admits(profile.ReliabilityScore) {
		return model.Reservation{}, &PolicyRejectedError{Score: profile.ReliabilityScore, Threshold: policy.Threshold}
	}

	start, err := s.slotStart(restaurant, req.Date, req.Time)
	if err != nil {
		return model.Reservation{}, err
	}
	now := s.now().UTC()
	if !start.After(now) {
		return model.Reservation{}, invalidRequest("reservation time %s %s has already passed", req.Date, req.Time)
	}
	slot := model.Slot{Start: start, End: start.Add(s.slotDuration)}

	id := s.newID()
	table, err := s.tables.Reserve(ctx, restaurant.ID, id, slot, req.PartySize)
	if errors.Is(err, availability.ErrNotFound) {
		return model.Reservation{}, &NoAvailabilityError{
			RestaurantID: restaurant.ID, Date: req.Date, Time: req.Time, PartySize: req.PartySize,
		}
	}
	if err != nil {
		return model.Reservation{}, fmt.Errorf("reserve table: %w", err)
	}

	tableID := table.ID
	r := model.Reservation{
		ID:           id,
		RestaurantID: restaurant.ID,
		CustomerID:   profile.ID,
		Date:         req.Date,
		Time:         req.Time,
		PartySize:    req.PartySize,
		Status:       model.StatusPending,
		TableID:      &tableID,
		StartsAt:     slot.Start,
		EndsAt:       slot.End,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.reservations.CreateReservation(ctx, r); err != nil {
		if relErr := s.tables.Release(ctx, tableID, id); relErr != nil {
			s.logger.Error("release table after failed create",
				"reservation_id", id, "table_id", tableID, "err", relErr)
		}
		return model.Reservation{}, fmt.Errorf("create reservation: %w", err)
	}

	s.logger.Info("reservation requested",
		"reservation_id", r.ID, "restaurant_id", r.RestaurantID, "customer_id", r.CustomerID,
		"table_id", tableID, "starts_at", r.StartsAt)
	return r, s.settle(ctx, r, "", scoring.Created{}, model.ActorCustomer)
}

// slotStart parses the restaurant-local date and time into a UTC instant.
func (s *ReservationService) slotStart(restaurant model.Restaurant, date, clock string) (time.Time, error) {
	loc, err := restaurant.Location()
	if err != nil {
		return time.Time{}, fmt.Errorf("restaurant %s timezone %q: %w", restaurant.ID, restaurant.Timezone, err)
	}
	start, err := time.ParseInLocation(model.DateLayout+" "+model.TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, invalidRequest("date %q and time %q must be YYYY-MM-DD and HH:MM", date, clock)
	}
	return start.UTC(), nil
}

// ConfirmReservation moves a pending reservation to confirmed.
func (s *ReservationService) ConfirmReservation(ctx context.Context, id string) (model.Reservation, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	if r.Status != model.StatusPending {
		return r, &InvalidTransitionError{ReservationID: id, From: r.Status, To: model.StatusConfirmed}
	}
	r.Status = model.StatusConfirmed
	if r, err = s.swap(ctx, r, model.StatusPending); err != nil {
		return r, err
	}
	return r, s.settle(ctx, r, "", scoring.Confirmed{}, model.ActorRestaurant)
}

// RejectReservation is the restaurant declining a pending request.  The
// reservation ends cancelled and the table is freed.  Rejecting again
// finishes any effects an earlier rejection left undone.
func (s *ReservationService) RejectReservation(ctx context.Context, id string) (model.Reservation, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	if r.Status == model.StatusCancelled && r.Rejected {
		return r, s.repair(ctx, r)
	}
	if r.Status != model.StatusPending {
		return r, &InvalidTransitionError{ReservationID: id, From: r.Status, To: model.StatusCancelled}
	}
	now := s.now().UTC()
	table := tableOf(r)
	r.Status = model.StatusCancelled
	r.CancellationTime = &now
	r.CancelledBy = model.ActorRestaurant
	r.Rejected = true
	r.TableID = nil
	updated, err := s.swap(ctx, r, model.StatusPending)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) && updated.Status == model.StatusCancelled && updated.Rejected {
			return updated, s.repair(ctx, updated)
		}
		return updated, err
	}
	return updated, s.settle(ctx, updated, table, scoring.Rejected{}, model.ActorRestaurant)
}

// cancelAttempts bounds CancelReservation: the first swap plus one retry
// when a concurrent confirm moved the status underneath it.
const cancelAttempts = 2

// CancelReservation cancels a pending or confirmed reservation on behalf
// of actor.  The penalty tier depends on how long before the slot the
// cancellation happens.  Cancelling an already cancelled reservation
// succeeds without a second penalty and finishes any table release or
// event record an earlier attempt left undone.
func (s *ReservationService) CancelReservation(ctx context.Context, id string, actor model.Actor) (model.Reservation, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	for attempt := 1; ; attempt++ {
		switch r.Status {
		case model.StatusCancelled:
			return r, s.repair(ctx, r)
		case model.StatusPending, model.StatusConfirmed:
		default:
			return r, &InvalidTransitionError{ReservationID: id, From: r.Status, To: model.StatusCancelled}
		}

		now := s.now().UTC()
		tier := scoring.TierFor(scoring.HoursUntil(r.StartsAt, now))
		from, table := r.Status, tableOf(r)
		next := r
		next.Status = model.StatusCancelled
		next.CancellationTime = &now
		next.LateCancellation = tier.Late()
		next.CancelledBy = actor
		next.TableID = nil

		updated, err := s.swap(ctx, next, from)
		if err == nil {
			return updated, s.settle(ctx, updated, table, scoring.Cancelled{Tier: tier}, actor)
		}
		if !errors.Is(err, ErrInvalidTransition) {
			return updated, err
		}
		if attempt == cancelAttempts && !updated.Status.Terminal() {
			return updated, err
		}
		s.logger.Debug("cancel lost a race, retrying from current status",
			"reservation_id", id, "status", updated.Status, "attempt", attempt)
		r = updated
	}
}

// CompleteReservation marks a confirmed reservation as honoured.
func (s *ReservationService) CompleteReservation(ctx context.Context, id string) (model.Reservation, error) {
	return s.complete(ctx, id, model.ActorRestaurant)
}

func (s *ReservationService) complete(ctx context.Context, id string, actor model.Actor) (model.Reservation, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	if r.Status != model.StatusConfirmed {
		return r, &InvalidTransitionError{ReservationID: id, From: r.Status, To: model.StatusCompleted}
	}
	if s.now().Before(r.StartsAt) {
		return r, invalidRequest("reservation %s has not started yet", id)
	}
	r.Status = model.StatusCompleted
	if r, err = s.swap(ctx, r, model.StatusConfirmed); err != nil {
		return r, err
	}
	return r, s.settle(ctx, r, "", scoring.Completed{}, actor)
}

// MarkNoShow records that a confirmed party never arrived.  It scores
// like a late cancellation and frees the rest of the slot.
func (s *ReservationService) MarkNoShow(ctx context.Context, id string) (model.Reservation, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	if r.Status != model.StatusConfirmed {
		return r, &InvalidTransitionError{ReservationID: id, From: r.Status, To: model.StatusNoShow}
	}
	if s.now().Before(r.StartsAt) {
		return r, invalidRequest("reservation %s has not started yet", id)
	}
	table := tableOf(r)
	r.Status = model.StatusNoShow
	r.TableID = nil
	if r, err = s.swap(ctx, r, model.StatusConfirmed); err != nil {
		return r, err
	}
	return r, s.settle(ctx, r, table, scoring.NoShow{}, model.ActorRestaurant)
}

func (s *ReservationService) GetReservation(ctx context.Context, id string) (model.Reservation, error) {
	return s.load(ctx, id)
}

func (s *ReservationService) ListCustomerReservations(ctx context.Context, customerID string) ([]model.Reservation, error) {
	return s.reservations.ListByCustomer(ctx, customerID)
}

// ListRestaurantReservations lists a restaurant's bookings, optionally for
// a single local date.
func (s *ReservationService) ListRestaurantReservations(ctx context.Context, restaurantID, date string) ([]model.Reservation, error) {
	if date != "" {
		if _, err := time.Parse(model.DateLayout, date); err != nil {
			return nil, invalidRequest("date %q must be YYYY-MM-DD", date)
		}
	}
	if _, err := s.restaurants.GetRestaurant(ctx, restaurantID); err != nil {
		return nil, lookupErr("restaurant", restaurantID, err)
	}
	return s.reservations.ListByRestaurant(ctx, restaurantID, date)
}

func (s *ReservationService) GetCustomerProfile(ctx context.Context, customerID string) (model.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, customerID)
	if err != nil {
		return model.Profile{}, lookupErr("customer", customerID, err)
	}
	return p, nil
}

// SetRestaurantScorePolicy replaces a restaurant's admission rule.
// Bookings already in progress keep the policy they started with.
func (s *ReservationService) SetRestaurantScorePolicy(ctx context.Context, restaurantID string, threshold int, enabled bool) (model.Restaurant, error) {
	if threshold < model.MinReliability || threshold > model.MaxReliability {
		return model.Restaurant{}, invalidRequest("threshold %d outside [%d, %d]", threshold, model.MinReliability, model.MaxReliability)
	}
	r, err := s.restaurants.SetScorePolicy(ctx, restaurantID, model.ScorePolicy{Enabled: enabled, Threshold: threshold})
	if err != nil {
		return model.Restaurant{}, lookupErr("restaurant", restaurantID, err)
	}
	s.logger.Info("score policy updated", "restaurant_id", restaurantID, "enabled", enabled, "threshold", threshold)
	return r, nil
}

func (s *ReservationService) load(ctx context.Context, id string) (model.Reservation, error) {
	r, err := s.reservations.GetReservation(ctx, id)
	if err != nil {
		return model.Reservation{}, lookupErr("reservation", id, err)
	}
	return r, nil
}

// swap stores r if the reservation is still in status from.  When another
// transition got there first it returns the current reservation together
// with an InvalidTransitionError.
func (s *ReservationService) swap(ctx context.Context, r model.Reservation, from model.Status) (model.Reservation, error) {
	r.UpdatedAt = s.now().UTC()
	err := s.reservations.UpdateReservation(ctx, r, from)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, repository.ErrConflict) {
		return r, fmt.Errorf("update reservation %s: %w", r.ID, err)
	}
	cur, loadErr := s.load(ctx, r.ID)
	if loadErr != nil {
		return r, loadErr
	}
	return cur, &InvalidTransitionError{ReservationID: r.ID, From: cur.Status, To: r.Status}
}

// settle runs the effects that follow a stored transition: freeing the
// table and applying the score event once.  Failures here cannot undo the
// transition, so they are logged and reported as ErrPartialFailure.
func (s *ReservationService) settle(ctx context.Context, r model.Reservation, releaseTable string, ev scoring.Event, actor model.Actor) error {
	var errs []error
	if releaseTable != "" {
		if err := s.tables.Release(ctx, releaseTable, r.ID); err != nil {
			errs = append(errs, fmt.Errorf("release table %s: %w", releaseTable, err))
		}
	}
	if err := s.applyEvent(ctx, r, ev, actor); err != nil {
		errs = append(errs, err)
	}
	return s.partial(r, ev, errs)
}

// repair re-runs the effects of the cancellation already stored on r.
// The table is looked up by reservation since r no longer names it, and
// the event key keeps the score and the record from being applied twice.
func (s *ReservationService) repair(ctx context.Context, r model.Reservation) error {
	ev, actor := cancellationEvent(r)
	var errs []error
	if err := s.tables.ReleaseReservation(ctx, r.ID); err != nil {
		errs = append(errs, fmt.Errorf("release tables: %w", err))
	}
	if err := s.applyEvent(ctx, r, ev, actor); err != nil {
		errs = append(errs, err)
	}
	return s.partial(r, ev, errs)
}

func (s *ReservationService) partial(r model.Reservation, ev scoring.Event, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	err := errors.Join(errs...)
	s.logger.Error("transition side effects failed",
		"reservation_id", r.ID, "status", r.Status, "event", ev.Type(), "err", err)
	return fmt.Errorf("%w: reservation %s: %w", ErrPartialFailure, r.ID, err)
}

// cancellationEvent rebuilds the score event of a stored cancellation.
func cancellationEvent(r model.Reservation) (scoring.Event, model.Actor) {
	if r.Rejected {
		return scoring.Rejected{}, model.ActorRestaurant
	}
	at := r.UpdatedAt
	if r.CancellationTime != nil {
		at = *r.CancellationTime
	}
	return scoring.Cancelled{Tier: scoring.TierFor(scoring.HoursUntil(r.StartsAt, at))}, r.CancelledBy
}

// applyEvent scores ev against the customer and records it.  The event's
// idempotency key makes the score change happen once; the record is
// written on every call so a retry can fill in one that failed before.
func (s *ReservationService) applyEvent(ctx context.Context, r model.Reservation, ev scoring.Event, actor model.Actor) error {
	delta := scoring.Evaluate(ev)
	key := model.EventKey(r.ID, ev.Type())
	profile, applied, err := s.profiles.ApplyDelta(ctx, r.CustomerID, key, delta)
	if err != nil {
		return fmt.Errorf("apply %s score: %w", ev.Type(), err)
	}
	if applied {
		s.logger.Info("score applied",
			"key", key, "customer_id", r.CustomerID, "points", profile.Points,
			"reliability", profile.ReliabilityScore)
	} else {
		s.logger.Debug("score event already applied", "key", key)
	}

	rec := model.EventRecord{
		ID:               s.newID(),
		Type:             ev.Type(),
		ReservationID:    r.ID,
		CustomerID:       r.CustomerID,
		RestaurantID:     r.RestaurantID,
		Actor:            actor,
		PointsDelta:      delta.Points,
		ReliabilityDelta: delta.Reliability,
		IdempotencyKey:   key,
		OccurredAt:       s.now().UTC(),
	}
	if c, ok := ev.(scoring.Cancelled); ok {
		rec.Tier = c.Tier.String()
	}
	if err := s.events.Record(ctx, rec); err != nil {
		return fmt.Errorf("record %s event: %w", ev.Type(), err)
	}
	return nil
}

func tableOf(r model.Reservation) string {
	if r.TableID == nil {
		return ""
	}
	return *r.TableID
}
