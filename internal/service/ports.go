package service

import (
	"context"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/scoring"
)

// ProfileStore is the reliability score store.  ApplyDelta is the only
// way points and reliability change; it must be atomic per customer and
// apply each idempotency key at most once.
type ProfileStore interface {
	CreateProfile(ctx context.Context, p model.Profile) (model.Profile, error)
	GetProfile(ctx context.Context, id string) (model.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (model.Profile, error)
	ApplyDelta(ctx context.Context, customerID, key string, d scoring.Delta) (model.Profile, bool, error)
}

type RestaurantStore interface {
	CreateRestaurant(ctx context.Context, r model.Restaurant) (model.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (model.Restaurant, error)
	SetScorePolicy(ctx context.Context, id string, p model.ScorePolicy) (model.Restaurant, error)
}

// ReservationStore persists reservations.  UpdateReservation is a
// compare-and-swap on the stored status and returns
// repository.ErrConflict when it no longer equals from.
type ReservationStore interface {
	CreateReservation(ctx context.Context, r model.Reservation) error
	GetReservation(ctx context.Context, id string) (model.Reservation, error)
	UpdateReservation(ctx context.Context, r model.Reservation, from model.Status) error
	ListByCustomer(ctx context.Context, customerID string) ([]model.Reservation, error)
	ListByRestaurant(ctx context.Context, restaurantID, date string) ([]model.Reservation, error)
	ListElapsed(ctx context.Context, status model.Status, before time.Time, limit int) ([]model.Reservation, error)
}

// TableAllocator hands out and takes back tables.  *availability.Index
// is the production implementation.  ReleaseReservation frees by
// reservation alone, for when the table id is no longer on record.
type TableAllocator interface {
	Reserve(ctx context.Context, restaurantID, reservationID string, slot model.Slot, partySize int) (model.Table, error)
	Release(ctx context.Context, tableID, reservationID string) error
	ReleaseReservation(ctx context.Context, reservationID string) error
}

type TableStore interface {
	AddTable(ctx context.Context, t model.Table) (model.Table, error)
	ListTables(ctx context.Context, restaurantID string) ([]model.Table, error)
}

// EventSink receives lifecycle event records.
type EventSink interface {
	Record(ctx context.Context, rec model.EventRecord) error
}
