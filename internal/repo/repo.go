// Package repo defines the storage contracts the auth flow depends on.
// Postgres implementations live in repo/postgres; thread-safe in-memory
// implementations for tests and mail-less local runs live in repo/memory.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/diagnosis/teamtodo/internal/domain"
)

// TokenStore persists one-time verification codes. All validity
// predicates (unused vs used, expiry) are encoded here so callers never
// re-derive token state.
type TokenStore interface {
	// CountRecentRequests counts passwordless-login tokens created for
	// email within the trailing window, regardless of use or expiry.
	CountRecentRequests(ctx context.Context, email string, window time.Duration) (int, error)
	// CreateToken inserts a fresh passwordless-login token for email
	// with the configured TTL.
	CreateToken(ctx context.Context, email, code string) (*domain.VerificationToken, error)
	// GetValidUnusedToken returns the matching unexpired, not-yet-used
	// token, or nil if there is none.
	GetValidUnusedToken(ctx context.Context, email, code string) (*domain.VerificationToken, error)
	// GetValidUsedToken returns the matching unexpired token that was
	// already consumed by verify-code, or nil. Registration re-reads
	// the token through this lookup, which is what forces the
	// verify-before-register ordering.
	GetValidUsedToken(ctx context.Context, email, code string) (*domain.VerificationToken, error)
	// MarkUsed flips the token to used exactly once.
	MarkUsed(ctx context.Context, token *domain.VerificationToken) error
}

// TenantStore persists users, teams and memberships.
type TenantStore interface {
	// FindUserByEmail loads a user with memberships and their teams.
	// Returns nil, nil when the email is unknown.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindUserByID loads a user with memberships and their teams.
	FindUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// UserExists reports whether an account exists for email.
	UserExists(ctx context.Context, email string) (bool, error)
	// TouchLastLogin records a successful login.
	TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
	// CreateAccount inserts the founding user, team and membership as a
	// single atomic unit.
	CreateAccount(ctx context.Context, user *domain.User, team *domain.Team, membership *domain.TeamMembership) error
}
