package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diagnosis/teamtodo/internal/domain"
)

// TenantRepo is the Postgres implementation of repo.TenantStore.
type TenantRepo struct {
	pool *pgxpool.Pool
}

func NewTenantRepo(pool *pgxpool.Pool) *TenantRepo {
	return &TenantRepo{pool: pool}
}

const userCols = `id, email, display_name, is_email_verified, created_at, updated_at, last_login_at`

func (r *TenantRepo) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email = $1`
	return r.findUser(ctx, q, email)
}

func (r *TenantRepo) FindUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = $1`
	return r.findUser(ctx, q, id)
}

func (r *TenantRepo) findUser(ctx context.Context, q string, arg any) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u domain.User
	err := r.pool.QueryRow(ctx, q, arg).Scan(
		&u.ID, &u.Email, &u.DisplayName, &u.IsEmailVerified, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if u.Memberships, err = r.loadMemberships(ctx, u.ID); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *TenantRepo) loadMemberships(ctx context.Context, userID uuid.UUID) ([]domain.TeamMembership, error) {
	const q = `
		SELECT m.id, m.user_id, m.team_id, m.role, m.joined_at,
		       t.id, t.name, t.created_at, t.updated_at
		FROM team_memberships m
		JOIN teams t ON t.id = m.team_id
		WHERE m.user_id = $1
		ORDER BY m.joined_at`

	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []domain.TeamMembership
	for rows.Next() {
		var (
			m    domain.TeamMembership
			t    domain.Team
			role string
		)
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.TeamID, &role, &m.JoinedAt,
			&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if m.Role, err = domain.ParseRole(role); err != nil {
			return nil, err
		}
		m.Team = &t
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (r *TenantRepo) UserExists(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var exists bool
	err := r.pool.QueryRow(ctx, q, email).Scan(&exists)
	return exists, err
}

func (r *TenantRepo) TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	const q = `UPDATE users SET last_login_at = $2, updated_at = now() WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, userID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CreateAccount inserts the founding user, team and membership inside a
// single transaction so a half-created account is never observable.
func (r *TenantRepo) CreateAccount(ctx context.Context, user *domain.User, team *domain.Team, membership *domain.TeamMembership) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin account tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, email, display_name, is_email_verified, created_at, updated_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Email, user.DisplayName, user.IsEmailVerified, user.CreatedAt, user.UpdatedAt, user.LastLoginAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO teams (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`,
		team.ID, team.Name, team.CreatedAt, team.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert team: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO team_memberships (id, user_id, team_id, role, joined_at)
		VALUES ($1, $2, $3, $4, $5)`,
		membership.ID, membership.UserID, membership.TeamID, membership.Role.String(), membership.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("insert membership: %w", err)
	}

	return tx.Commit(ctx)
}
