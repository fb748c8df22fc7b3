package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diagnosis/teamtodo/internal/domain"
)

// TokenRepo is the Postgres implementation of repo.TokenStore.
// Tokens are never deleted here; expiry is a read-time filter.
type TokenRepo struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

func NewTokenRepo(pool *pgxpool.Pool, ttl time.Duration) *TokenRepo {
	if ttl <= 0 {
		ttl = domain.CodeTTL
	}
	return &TokenRepo{pool: pool, ttl: ttl}
}

const tokenCols = `id, email, code, kind, created_at, expires_at, is_used, used_at`

func (r *TokenRepo) CountRecentRequests(ctx context.Context, email string, window time.Duration) (int, error) {
	const q = `
		SELECT count(*)
		FROM verification_tokens
		WHERE email = $1
		  AND kind = $2
		  AND created_at > $3`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int
	err := r.pool.QueryRow(ctx, q, email, domain.KindPasswordlessLogin.String(), time.Now().Add(-window)).Scan(&n)
	return n, err
}

func (r *TokenRepo) CreateToken(ctx context.Context, email, code string) (*domain.VerificationToken, error) {
	const q = `
		INSERT INTO verification_tokens (id, email, code, kind, created_at, expires_at, is_used)
		VALUES ($1, $2, $3, $4, $5, $6, false)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	now := time.Now().UTC()
	t := &domain.VerificationToken{
		ID:        uuid.New(),
		Email:     email,
		Code:      code,
		Kind:      domain.KindPasswordlessLogin,
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}

	_, err := r.pool.Exec(ctx, q, t.ID, t.Email, t.Code, t.Kind.String(), t.CreatedAt, t.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TokenRepo) GetValidUnusedToken(ctx context.Context, email, code string) (*domain.VerificationToken, error) {
	return r.getValidToken(ctx, email, code, false)
}

func (r *TokenRepo) GetValidUsedToken(ctx context.Context, email, code string) (*domain.VerificationToken, error) {
	return r.getValidToken(ctx, email, code, true)
}

func (r *TokenRepo) getValidToken(ctx context.Context, email, code string, used bool) (*domain.VerificationToken, error) {
	const q = `
		SELECT ` + tokenCols + `
		FROM verification_tokens
		WHERE email = $1
		  AND code = $2
		  AND kind = $3
		  AND is_used = $4
		  AND expires_at > now()
		ORDER BY created_at DESC
		LIMIT 1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	row := r.pool.QueryRow(ctx, q, email, code, domain.KindPasswordlessLogin.String(), used)

	var (
		t    domain.VerificationToken
		kind string
	)
	err := row.Scan(&t.ID, &t.Email, &t.Code, &kind, &t.CreatedAt, &t.ExpiresAt, &t.IsUsed, &t.UsedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if t.Kind, err = domain.ParseTokenKind(kind); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TokenRepo) MarkUsed(ctx context.Context, token *domain.VerificationToken) error {
	const q = `
		UPDATE verification_tokens
		SET is_used = true, used_at = now()
		WHERE id = $1 AND is_used = false
		RETURNING used_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var usedAt time.Time
	if err := r.pool.QueryRow(ctx, q, token.ID).Scan(&usedAt); err != nil {
		return err
	}
	token.IsUsed = true
	token.UsedAt = &usedAt
	return nil
}
