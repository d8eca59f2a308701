package model

import "time"

// Table is a physical table in a restaurant.  Capacity is the largest
// party it seats.  Inactive tables are never offered.
type Table struct {
	ID           string    `json:"id"`            // restaurant_tables.id
	RestaurantID string    `json:"restaurant_id"` // restaurant_tables.restaurant_id
	Label        string    `json:"label"`         // restaurant_tables.label
	Capacity     int       `json:"capacity"`      // restaurant_tables.capacity
	IsActive     bool      `json:"is_active"`     // restaurant_tables.is_active
	CreatedAt    time.Time `json:"created_at"`    // restaurant_tables.created_at
}

// Slot is a half-open time window [Start, End).
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether the two windows share any instant.  Windows
// that only touch (one ends when the other starts) do not overlap.
func (s Slot) Overlaps(o Slot) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}

// Allocation binds a table to a reservation for a slot.  A table never
// carries two allocations whose slots overlap.
type Allocation struct {
	TableID       string `json:"table_id"`       // table_allocations.table_id
	RestaurantID  string `json:"restaurant_id"`  // table_allocations.restaurant_id
	ReservationID string `json:"reservation_id"` // table_allocations.reservation_id
	Slot          Slot   `json:"slot"`           // table_allocations.starts_at / ends_at
}
