package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

// Caller is the authenticated account behind a request.
type Caller struct {
	ID   string
	Role model.Role
}

// RestaurantService manages venues and their tables.
type RestaurantService struct {
	restaurants RestaurantStore
	tables      TableStore
}

func NewRestaurantService(restaurants RestaurantStore, tables TableStore) *RestaurantService {
	return &RestaurantService{restaurants: restaurants, tables: tables}
}

// CreateRestaurant registers a venue owned by ownerID.  Scoring starts
// disabled.
func (s *RestaurantService) CreateRestaurant(ctx context.Context, ownerID, name, timezone string) (model.Restaurant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Restaurant{}, invalidRequest("name is required")
	}
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return model.Restaurant{}, invalidRequest("unknown timezone %q", timezone)
	}
	return s.restaurants.CreateRestaurant(ctx, model.Restaurant{OwnerID: ownerID, Name: name, Timezone: timezone})
}

func (s *RestaurantService) GetRestaurant(ctx context.Context, id string) (model.Restaurant, error) {
	r, err := s.restaurants.GetRestaurant(ctx, id)
	if err != nil {
		return model.Restaurant{}, lookupErr("restaurant", id, err)
	}
	return r, nil
}

// Authorize reports ErrForbidden unless the caller is an admin or owns
// the restaurant.
func (s *RestaurantService) Authorize(ctx context.Context, restaurantID string, c Caller) error {
	r, err := s.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return err
	}
	if c.Role == model.RoleAdmin || (c.Role == model.RoleRestaurant && r.OwnerID == c.ID) {
		return nil
	}
	return fmt.Errorf("restaurant %s: %w", restaurantID, ErrForbidden)
}

func (s *RestaurantService) AddTable(ctx context.Context, restaurantID, label string, capacity int) (model.Table, error) {
	if capacity < 1 {
		return model.Table{}, invalidRequest("capacity must be at least 1")
	}
	if strings.TrimSpace(label) == "" {
		return model.Table{}, invalidRequest("label is required")
	}
	if _, err := s.GetRestaurant(ctx, restaurantID); err != nil {
		return model.Table{}, err
	}
	return s.tables.AddTable(ctx, model.Table{
		RestaurantID: restaurantID,
		Label:        strings.TrimSpace(label),
		Capacity:     capacity,
		IsActive:     true,
	})
}

func (s *RestaurantService) ListTables(ctx context.Context, restaurantID string) ([]model.Table, error) {
	if _, err := s.GetRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	return s.tables.ListTables(ctx, restaurantID)
}
