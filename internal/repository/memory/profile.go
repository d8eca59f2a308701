// Package memory provides in-process implementations of the stores the
// service layer depends on.  They back the STORAGE=memory mode of the
// server and the unit tests; every store is safe for concurrent use.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/scoring"
)

// ProfileStore keeps profiles and the idempotency keys of every score
// event applied to them.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]model.Profile
	byEmail  map[string]string
	applied  map[string]struct{}
	now      func() time.Time
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[string]model.Profile),
		byEmail:  make(map[string]string),
		applied:  make(map[string]struct{}),
		now:      time.Now,
	}
}

// CreateProfile stores p as given; a missing id is generated.
func (s *ProfileStore) CreateProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Role == "" {
		p.Role = model.RoleCustomer
	}
	now := s.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[p.Email]; taken {
		return model.Profile{}, repository.ErrEmailExists
	}
	s.profiles[p.ID] = p
	s.byEmail[p.Email] = p.ID
	return p, nil
}

func (s *ProfileStore) GetProfile(ctx context.Context, id string) (model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return model.Profile{}, repository.ErrNotFound
	}
	return p, nil
}

func (s *ProfileStore) GetProfileByEmail(ctx context.Context, email string) (model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return model.Profile{}, repository.ErrNotFound
	}
	return s.profiles[id], nil
}

// ApplyDelta adds d to the customer's balances, clamped.  A key that was
// already applied leaves the profile untouched and reports applied=false.
func (s *ProfileStore) ApplyDelta(ctx context.Context, customerID, key string, d scoring.Delta) (model.Profile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[customerID]
	if !ok {
		return model.Profile{}, false, repository.ErrNotFound
	}
	if _, seen := s.applied[key]; seen {
		return p, false, nil
	}
	p.Points, p.ReliabilityScore = scoring.Apply(p.Points, p.ReliabilityScore, d)
	p.UpdatedAt = s.now().UTC()
	s.profiles[customerID] = p
	s.applied[key] = struct{}{}
	return p, true, nil
}
