package model

import "time"

// Role identifies what an account is allowed to do.  Customers book
// tables, restaurant accounts manage their own venues and reservations,
// admins can act on any restaurant or profile.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleRestaurant Role = "restaurant"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleRestaurant, RoleAdmin:
		return true
	}
	return false
}

// Bounds of the reliability score.  New profiles start fully trusted.
const (
	MinReliability     = 0
	MaxReliability     = 100
	DefaultReliability = MaxReliability
)

// Profile is an account row from the `profiles` table together with the
// customer's loyalty balance and reliability score.  Points and
// ReliabilityScore are only ever written through the score store's
// ApplyDelta so every change has a matching score event.
//
// Fields:
//
//	ID               – opaque identifier (uuid).
//	Email            – unique login and contact address.
//	DisplayName      – name shown to restaurants.
//	Phone            – optional contact number.
//	PasswordHash     – bcrypt hash, never serialised.
//	Role             – customer, restaurant or admin.
//	Points           – loyalty currency, never negative.
//	ReliabilityScore – trust metric in [0, 100].
type Profile struct {
	ID               string    `json:"id"`                // profiles.id
	Email            string    `json:"email"`             // profiles.email
	DisplayName      string    `json:"display_name"`      // profiles.display_name
	Phone            string    `json:"phone,omitempty"`   // profiles.phone
	PasswordHash     string    `json:"-"`                 // profiles.password_hash
	Role             Role      `json:"role"`              // profiles.role
	Points           int       `json:"points"`            // profiles.points
	ReliabilityScore int       `json:"reliability_score"` // profiles.reliability_score
	CreatedAt        time.Time `json:"created_at"`        // profiles.created_at
	UpdatedAt        time.Time `json:"updated_at"`        // profiles.updated_at
}
