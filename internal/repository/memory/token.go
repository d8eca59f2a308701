package memory

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/table-reservation/internal/repository"
)

type refreshToken struct {
	userID    string
	expiresAt time.Time
	revoked   bool
}

// TokenStore keeps refresh token hashes.
type TokenStore struct {
	mu     sync.Mutex
	tokens map[string]*refreshToken
	now    func() time.Time
}

func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[string]*refreshToken), now: time.Now}
}

func (s *TokenStore) StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenHash] = &refreshToken{userID: userID, expiresAt: exp}
	return nil
}

func (s *TokenStore) ValidateRefresh(ctx context.Context, tokenHash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[tokenHash]
	if !ok || t.revoked || s.now().UTC().After(t.expiresAt) {
		return "", repository.ErrNotFound
	}
	return t.userID, nil
}

func (s *TokenStore) RevokeByHash(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tokens[tokenHash]; ok {
		t.revoked = true
	}
	return nil
}

func (s *TokenStore) RevokeAllForUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if t.userID == userID {
			t.revoked = true
		}
	}
	return nil
}
