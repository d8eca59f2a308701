package model

import "time"

// ScorePolicy is a restaurant's admission rule for new bookings.  When
// Enabled, customers whose reliability score is below Threshold are
// refused.
type ScorePolicy struct {
	Enabled   bool `json:"score_enabled"`   // restaurants.score_enabled
	Threshold int  `json:"score_threshold"` // restaurants.score_threshold
}

// Admits reports whether a customer with the given score may book.
func (p ScorePolicy) Admits(score int) bool {
	return !p.Enabled || score >= p.Threshold
}

// Restaurant is a bookable venue owned by a restaurant account.
// Timezone is an IANA location name used to interpret reservation dates
// and times; an empty value means UTC.
type Restaurant struct {
	ID        string      `json:"id"`       // restaurants.id
	OwnerID   string      `json:"owner_id"` // restaurants.owner_id
	Name      string      `json:"name"`     // restaurants.name
	Timezone  string      `json:"timezone"` // restaurants.timezone
	Policy    ScorePolicy `json:"policy"`
	CreatedAt time.Time   `json:"created_at"` // restaurants.created_at
	UpdatedAt time.Time   `json:"updated_at"` // restaurants.updated_at
}

// Location resolves the restaurant timezone.
func (r Restaurant) Location() (*time.Location, error) {
	if r.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(r.Timezone)
}
