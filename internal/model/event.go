package model

import "time"

// EventType names a reservation lifecycle event.
type EventType string

const (
	EventCreated   EventType = "created"
	EventConfirmed EventType = "confirmed"
	EventRejected  EventType = "rejected"
	EventCancelled EventType = "cancelled"
	EventCompleted EventType = "completed"
	EventNoShow    EventType = "no_show"
)

// EventRecord is the audit entry written for every lifecycle transition
// that changed a customer's points or reliability score.  It is stored in
// `reservation_events` and published to the message broker for
// notification dispatch.
type EventRecord struct {
	ID               string    `json:"id"`
	Type             EventType `json:"type"`
	ReservationID    string    `json:"reservation_id"`
	CustomerID       string    `json:"customer_id"`
	RestaurantID     string    `json:"restaurant_id"`
	Actor            Actor     `json:"actor"`
	Tier             string    `json:"tier,omitempty"`
	PointsDelta      int       `json:"points_delta"`
	ReliabilityDelta int       `json:"reliability_delta"`
	IdempotencyKey   string    `json:"idempotency_key"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// EventKey is the idempotency key of a lifecycle event.  Each
// reservation can produce each event type at most once.
func EventKey(reservationID string, t EventType) string {
	return reservationID + ":" + string(t)
}
