// Package memory holds thread-safe in-memory implementations of the
// repo contracts. They back the unit tests and let the API run locally
// without Postgres.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diagnosis/teamtodo/internal/domain"
)

type TokenStore struct {
	mu     sync.Mutex
	tokens []*domain.VerificationToken
	ttl    time.Duration

	// Now is the clock used for expiry and window checks. Tests
	// override it to move time.
	Now func() time.Time
}

func NewTokenStore(ttl time.Duration) *TokenStore {
	if ttl <= 0 {
		ttl = domain.CodeTTL
	}
	return &TokenStore{ttl: ttl, Now: time.Now}
}

func (s *TokenStore) CountRecentRequests(_ context.Context, email string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.Now().Add(-window)
	n := 0
	for _, t := range s.tokens {
		if t.Email == email && t.Kind == domain.KindPasswordlessLogin && t.CreatedAt.After(cutoff) {
			n++
		}
	}
	return n, nil
}

func (s *TokenStore) CreateToken(_ context.Context, email, code string) (*domain.VerificationToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	t := &domain.VerificationToken{
		ID:        uuid.New(),
		Email:     email,
		Code:      code,
		Kind:      domain.KindPasswordlessLogin,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.tokens = append(s.tokens, t)

	cp := *t
	return &cp, nil
}

func (s *TokenStore) GetValidUnusedToken(_ context.Context, email, code string) (*domain.VerificationToken, error) {
	return s.getValidToken(email, code, false)
}

func (s *TokenStore) GetValidUsedToken(_ context.Context, email, code string) (*domain.VerificationToken, error) {
	return s.getValidToken(email, code, true)
}

func (s *TokenStore) getValidToken(email, code string, used bool) (*domain.VerificationToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	// Newest first, mirroring the ORDER BY created_at DESC in Postgres.
	for i := len(s.tokens) - 1; i >= 0; i-- {
		t := s.tokens[i]
		if t.Email != email || t.Code != code || t.Kind != domain.KindPasswordlessLogin {
			continue
		}
		if t.IsUsed != used || !t.ExpiresAt.After(now) {
			continue
		}
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (s *TokenStore) MarkUsed(_ context.Context, token *domain.VerificationToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tokens {
		if t.ID == token.ID && !t.IsUsed {
			now := s.Now()
			t.IsUsed = true
			t.UsedAt = &now
			token.IsUsed = true
			token.UsedAt = &now
			return nil
		}
	}
	return ErrNotFound
}
