package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
)

type RestaurantStore struct {
	mu          sync.RWMutex
	restaurants map[string]model.Restaurant
	now         func() time.Time
}

func NewRestaurantStore() *RestaurantStore {
	return &RestaurantStore{restaurants: make(map[string]model.Restaurant), now: time.Now}
}

func (s *RestaurantStore) CreateRestaurant(ctx context.Context, r model.Restaurant) (model.Restaurant, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := s.now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.restaurants[r.ID] = r
	return r, nil
}

func (s *RestaurantStore) GetRestaurant(ctx context.Context, id string) (model.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.restaurants[id]
	if !ok {
		return model.Restaurant{}, repository.ErrNotFound
	}
	return r, nil
}

func (s *RestaurantStore) SetScorePolicy(ctx context.Context, id string, p model.ScorePolicy) (model.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.restaurants[id]
	if !ok {
		return model.Restaurant{}, repository.ErrNotFound
	}
	r.Policy = p
	r.UpdatedAt = s.now().UTC()
	s.restaurants[id] = r
	return r, nil
}
