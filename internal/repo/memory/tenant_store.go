package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diagnosis/teamtodo/internal/domain"
)

var ErrNotFound = errors.New("not found")

type TenantStore struct {
	mu          sync.Mutex
	users       map[uuid.UUID]*domain.User
	teams       map[uuid.UUID]*domain.Team
	memberships []*domain.TeamMembership
}

func NewTenantStore() *TenantStore {
	return &TenantStore{
		users: make(map[uuid.UUID]*domain.User),
		teams: make(map[uuid.UUID]*domain.Team),
	}
}

func (s *TenantStore) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return s.withMemberships(u), nil
		}
	}
	return nil, nil
}

func (s *TenantStore) FindUserByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return s.withMemberships(u), nil
}

// withMemberships returns a deep-enough copy that callers cannot mutate
// store state. Caller must hold the lock.
func (s *TenantStore) withMemberships(u *domain.User) *domain.User {
	out := *u
	out.Memberships = nil
	for _, m := range s.memberships {
		if m.UserID != u.ID {
			continue
		}
		mc := *m
		if team, ok := s.teams[m.TeamID]; ok {
			tc := *team
			mc.Team = &tc
		}
		out.Memberships = append(out.Memberships, mc)
	}
	return &out
}

func (s *TenantStore) UserExists(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *TenantStore) TouchLastLogin(_ context.Context, userID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.LastLoginAt = &at
	u.UpdatedAt = at
	return nil
}

func (s *TenantStore) CreateAccount(_ context.Context, user *domain.User, team *domain.Team, membership *domain.TeamMembership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return errors.New("email already taken")
		}
	}

	uc := *user
	tc := *team
	mc := *membership
	s.users[uc.ID] = &uc
	s.teams[tc.ID] = &tc
	s.memberships = append(s.memberships, &mc)
	return nil
}

// TeamCount and UserCount exist for test assertions on duplicate
// registration attempts.
func (s *TenantStore) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *TenantStore) TeamCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.teams)
}
