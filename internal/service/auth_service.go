package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/diagnosis/teamtodo/internal/domain"
	"github.com/diagnosis/teamtodo/internal/platform/auth"
	"github.com/diagnosis/teamtodo/internal/platform/mailer"
	"github.com/diagnosis/teamtodo/internal/repo"
	"github.com/diagnosis/teamtodo/pkg/config"
	"github.com/diagnosis/teamtodo/pkg/events"
	"github.com/diagnosis/teamtodo/pkg/logger"
)

// Domain failures, translated to problem-details responses at the HTTP
// boundary. Everything else surfaces as a 500.
var (
	ErrRateLimited = errors.New("too many verification code requests")
	ErrInvalidCode = errors.New("verification code is invalid or expired")
	ErrNoTeam      = errors.New("user has no team membership")
	ErrUserExists  = errors.New("account already exists for this email")
)

// AuthService drives the three-step passwordless flow. It is stateless
// between requests; all state lives in the stores.
type AuthService interface {
	RequestCode(ctx context.Context, req *domain.RequestCodeRequest) (*domain.RequestCodeResponse, error)
	VerifyCode(ctx context.Context, req *domain.VerifyCodeRequest) (*domain.VerifyCodeResponse, error)
	CompleteRegistration(ctx context.Context, req *domain.CompleteRegistrationRequest) (*domain.AuthResponse, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type authService struct {
	tokens   repo.TokenStore
	tenants  repo.TenantStore
	issuer   *auth.Issuer
	mailer   mailer.Service
	eventBus events.Publisher
	config   *config.Config
}

func NewAuthService(
	tokens repo.TokenStore,
	tenants repo.TenantStore,
	issuer *auth.Issuer,
	mailer mailer.Service,
	eventBus events.Publisher,
	config *config.Config,
) AuthService {
	return &authService{
		tokens:   tokens,
		tenants:  tenants,
		issuer:   issuer,
		mailer:   mailer,
		eventBus: eventBus,
		config:   config,
	}
}

// RequestCode issues a 6-digit code, rate limited per email. The
// success response is identical for known and unknown emails so the
// endpoint cannot be used to enumerate accounts.
func (s *authService) RequestCode(ctx context.Context, req *domain.RequestCodeRequest) (*domain.RequestCodeResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	count, err := s.tokens.CountRecentRequests(ctx, req.Email, s.config.Auth.RateLimitWindow)
	if err != nil {
		return nil, fmt.Errorf("count recent code requests: %w", err)
	}
	if count >= s.config.Auth.RateLimitMax {
		return nil, ErrRateLimited
	}

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("generate verification code: %w", err)
	}

	if _, err := s.tokens.CreateToken(ctx, req.Email, code); err != nil {
		return nil, fmt.Errorf("create verification token: %w", err)
	}

	// Sending is synchronous and failures fail the request; there is
	// no outbox or retry here.
	if err := s.mailer.SendVerificationCode(ctx, req.Email, code); err != nil {
		return nil, fmt.Errorf("send verification code: %w", err)
	}

	s.publish(ctx, events.AuthCodeRequested, events.CodeRequestedEvent{
		Email:       req.Email,
		RequestedAt: time.Now().UTC(),
	})
	logger.InfoContext(ctx, "Verification code sent", "email", req.Email)

	return &domain.RequestCodeResponse{Message: domain.VerificationCodeSentMessage}, nil
}

// VerifyCode consumes a pending code. Existing users are logged in and
// get a session token; new users get isNewUser=true and must call
// CompleteRegistration with the same code.
func (s *authService) VerifyCode(ctx context.Context, req *domain.VerifyCodeRequest) (*domain.VerifyCodeResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	token, err := s.tokens.GetValidUnusedToken(ctx, req.Email, req.Code)
	if err != nil {
		return nil, fmt.Errorf("look up verification token: %w", err)
	}
	if token == nil {
		return nil, ErrInvalidCode
	}

	if err := s.tokens.MarkUsed(ctx, token); err != nil {
		return nil, fmt.Errorf("mark token used: %w", err)
	}

	user, err := s.tenants.FindUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if user == nil {
		// Code checked out but there is no account yet. Nothing is
		// created here; the client must complete registration.
		return &domain.VerifyCodeResponse{Token: "", IsNewUser: true}, nil
	}

	now := time.Now().UTC()
	if err := s.tenants.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	if len(user.Memberships) == 0 {
		// A user without a membership means the founding transaction
		// was somehow violated.
		logger.ErrorContext(ctx, "User has no team membership", "user_id", user.ID)
		return nil, ErrNoTeam
	}
	membership := user.Memberships[0]

	jwtToken, err := s.issuer.Issue(user, membership.Team, membership.Role)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	s.publish(ctx, events.AuthUserLoggedIn, events.UserLoggedInEvent{
		UserID:     user.ID,
		Email:      user.Email,
		TeamID:     membership.TeamID,
		LoggedInAt: now,
	})
	logger.InfoContext(ctx, "User logged in", "user_id", user.ID)

	return &domain.VerifyCodeResponse{
		Token:     jwtToken,
		IsNewUser: false,
		User:      user.ToUserInfo(),
	}, nil
}

// CompleteRegistration founds a tenant: user, team and admin membership
// are created atomically. The code must already have been consumed by
// VerifyCode; an unused code is rejected even if it is otherwise valid.
func (s *authService) CompleteRegistration(ctx context.Context, req *domain.CompleteRegistrationRequest) (*domain.AuthResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	token, err := s.tokens.GetValidUsedToken(ctx, req.Email, req.Code)
	if err != nil {
		return nil, fmt.Errorf("look up used verification token: %w", err)
	}
	if token == nil {
		return nil, ErrInvalidCode
	}

	exists, err := s.tenants.UserExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:              uuid.New(),
		Email:           req.Email,
		DisplayName:     req.DisplayName,
		IsEmailVerified: true,
		CreatedAt:       now,
		UpdatedAt:       now,
		LastLoginAt:     &now,
	}
	team := &domain.Team{
		ID:        uuid.New(),
		Name:      req.TeamName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	membership := &domain.TeamMembership{
		ID:       uuid.New(),
		UserID:   user.ID,
		TeamID:   team.ID,
		Role:     domain.RoleAdmin,
		JoinedAt: now,
	}

	if err := s.tenants.CreateAccount(ctx, user, team, membership); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	if err := s.mailer.SendWelcome(ctx, user.Email, user.DisplayName, team.Name); err != nil {
		return nil, fmt.Errorf("send welcome email: %w", err)
	}

	jwtToken, err := s.issuer.Issue(user, team, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	s.publish(ctx, events.AuthUserRegistered, events.UserRegisteredEvent{
		UserID:       user.ID,
		Email:        user.Email,
		TeamID:       team.ID,
		TeamName:     team.Name,
		RegisteredAt: now,
	})
	logger.InfoContext(ctx, "New user registered", "user_id", user.ID, "team_id", team.ID)

	return &domain.AuthResponse{
		Token: jwtToken,
		User:  user.ToUserInfo(),
		Team: &domain.TeamInfo{
			ID:   team.ID,
			Name: team.Name,
			Role: domain.RoleAdmin.String(),
		},
	}, nil
}

func (s *authService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.tenants.FindUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *authService) publish(ctx context.Context, subject string, payload any) {
	if err := s.eventBus.Publish(ctx, subject, payload); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}

// generateCode draws a uniform 6-digit code from crypto/rand. Leading
// digit is never zero so the string form is always six characters.
func generateCode() (string, error) {
	span := big.NewInt(domain.CodeMax - domain.CodeMin + 1)
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+domain.CodeMin), nil
}
