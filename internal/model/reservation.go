package model

import "time"

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted || s == StatusNoShow
}

// Actor names who triggered a transition.
type Actor string

const (
	ActorCustomer   Actor = "customer"
	ActorRestaurant Actor = "restaurant"
	ActorSystem     Actor = "system"
)

// Layouts used for the restaurant-local date and time of a reservation.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Reservation records a customer's booking at a restaurant.  Date and
// Time are what the customer asked for in the restaurant's local
// timezone; StartsAt and EndsAt are the UTC instants of the slot derived
// from them and the configured slot duration.
//
// Fields:
//
//	ID               – opaque identifier (uuid).
//	RestaurantID     – restaurant being booked.
//	CustomerID       – profile that made the booking.
//	Date, Time       – restaurant-local calendar date and time of day.
//	PartySize        – number of guests, at least one.
//	Status           – lifecycle state (see Status).
//	TableID          – allocated table; nil once cancelled.
//	StartsAt, EndsAt – slot boundaries in UTC.
//	CancellationTime – when the reservation was cancelled, if it was.
//	LateCancellation – cancellation fell inside the 24 hour window.
//	CancelledBy      – actor that cancelled, empty otherwise.
//	Rejected         – the restaurant declined the request while pending.
type Reservation struct {
	ID               string     `json:"id"`                          // reservations.id
	RestaurantID     string     `json:"restaurant_id"`               // reservations.restaurant_id
	CustomerID       string     `json:"customer_id"`                 // reservations.customer_id
	Date             string     `json:"date"`                        // reservations.res_date
	Time             string     `json:"time"`                        // reservations.res_time
	PartySize        int        `json:"party_size"`                  // reservations.party_size
	Status           Status     `json:"status"`                      // reservations.status
	TableID          *string    `json:"table_id,omitempty"`          // reservations.table_id (nullable)
	StartsAt         time.Time  `json:"starts_at"`                   // reservations.starts_at
	EndsAt           time.Time  `json:"ends_at"`                     // reservations.ends_at
	CancellationTime *time.Time `json:"cancellation_time,omitempty"` // reservations.cancellation_time (nullable)
	LateCancellation bool       `json:"late_cancellation"`           // reservations.late_cancellation
	CancelledBy      Actor      `json:"cancelled_by,omitempty"`      // reservations.cancelled_by
	Rejected         bool       `json:"rejected,omitempty"`          // reservations.rejected
	CreatedAt        time.Time  `json:"created_at"`                  // reservations.created_at
	UpdatedAt        time.Time  `json:"updated_at"`                  // reservations.updated_at
}

// Slot returns the time window the reservation occupies.
func (r Reservation) Slot() Slot {
	return Slot{Start: r.StartsAt, End: r.EndsAt}
}
