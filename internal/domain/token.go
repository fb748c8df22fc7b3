package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TokenKind tells what a verification token proves.
type TokenKind int

const (
	KindEmailVerification TokenKind = iota
	KindPasswordlessLogin
)

// Stored as text so the rows stay readable in psql.
const (
	kindEmailVerification = "email_verification"
	kindPasswordlessLogin = "passwordless_login"
)

func (k TokenKind) String() string {
	switch k {
	case KindEmailVerification:
		return kindEmailVerification
	case KindPasswordlessLogin:
		return kindPasswordlessLogin
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

func ParseTokenKind(s string) (TokenKind, error) {
	switch s {
	case kindEmailVerification:
		return KindEmailVerification, nil
	case kindPasswordlessLogin:
		return KindPasswordlessLogin, nil
	}
	return 0, fmt.Errorf("unknown token kind %q", s)
}

// Code and rate-limit defaults. Overridable through config where noted.
const (
	CodeLength      = 6
	CodeMin         = 100000
	CodeMax         = 999999
	CodeTTL         = 15 * time.Minute
	RateLimitMax    = 3
	RateLimitWindow = time.Hour
)

// VerificationToken is a single issued one-time code. Rows are never
// deleted by the auth flow; expiry is filtered at read time.
type VerificationToken struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Code      string     `json:"-"`
	Kind      TokenKind  `json:"kind"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	IsUsed    bool       `json:"is_used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

func (t *VerificationToken) ExpiredAt(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

func (t *VerificationToken) IsExpired() bool {
	return t.ExpiredAt(time.Now())
}
