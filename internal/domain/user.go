package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID        `json:"id"`
	Email           string           `json:"email"`
	DisplayName     string           `json:"display_name"`
	IsEmailVerified bool             `json:"is_email_verified"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	LastLoginAt     *time.Time       `json:"last_login_at,omitempty"`
	Memberships     []TeamMembership `json:"memberships,omitempty"`
}

// Team is the tenant boundary; todo data hangs off a team, never a user.
type Team struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeamMembership links a user to a team with a role. The (user, team)
// pair is unique.
type TeamMembership struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	TeamID   uuid.UUID `json:"team_id"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
	Team     *Team     `json:"team,omitempty"`
}

// Role is a team role. Stored and serialized as its string form.
type Role int

const (
	RoleMember Role = iota
	RoleAdmin
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleMember:
		return "Member"
	case RoleAdmin:
		return "Admin"
	case RoleOwner:
		return "Owner"
	}
	return fmt.Sprintf("unknown(%d)", int(r))
}

func ParseRole(s string) (Role, error) {
	switch strings.ToLower(s) {
	case "member":
		return RoleMember, nil
	case "admin":
		return RoleAdmin, nil
	case "owner":
		return RoleOwner, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

func (r *Role) UnmarshalJSON(b []byte) error {
	parsed, err := ParseRole(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// UserInfo is the public slice of a user returned by the auth endpoints.
type UserInfo struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
}

type TeamInfo struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role string    `json:"role"`
}

func (u *User) ToUserInfo() *UserInfo {
	return &UserInfo{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
	}
}
