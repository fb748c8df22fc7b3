package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/diagnosis/teamtodo/internal/domain"
)

func testUserAndTeam() (*domain.User, *domain.Team) {
	user := &domain.User{
		ID:          uuid.New(),
		Email:       "jane@example.com",
		DisplayName: "Jane Doe",
	}
	team := &domain.Team{
		ID:   uuid.New(),
		Name: "Acme",
	}
	return user, team
}

func TestIssueAndParse(t *testing.T) {
	issuer := NewIssuer("test-secret", "teamtodo-api", "teamtodo-web", time.Hour)
	user, team := testUserAndTeam()

	tok, err := issuer.Issue(user, team, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := issuer.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != user.ID.String() {
		t.Errorf("subject = %q, want %q", claims.Subject, user.ID)
	}
	if claims.Email != user.Email {
		t.Errorf("email = %q, want %q", claims.Email, user.Email)
	}
	if claims.Name != user.DisplayName {
		t.Errorf("name = %q, want %q", claims.Name, user.DisplayName)
	}
	if claims.TeamID != team.ID.String() {
		t.Errorf("team_id = %q, want %q", claims.TeamID, team.ID)
	}
	if claims.TeamName != team.Name {
		t.Errorf("team_name = %q, want %q", claims.TeamName, team.Name)
	}
	if claims.Role != "Admin" {
		t.Errorf("role = %q, want Admin", claims.Role)
	}
}

func TestParseWrongSecret(t *testing.T) {
	issuer := NewIssuer("test-secret", "teamtodo-api", "teamtodo-web", time.Hour)
	other := NewIssuer("another-secret", "teamtodo-api", "teamtodo-web", time.Hour)
	user, team := testUserAndTeam()

	tok, err := issuer.Issue(user, team, domain.RoleMember)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := other.Parse(tok); err == nil {
		t.Error("expected signature verification to fail")
	}
}

func TestParseWrongAudience(t *testing.T) {
	issuer := NewIssuer("test-secret", "teamtodo-api", "teamtodo-web", time.Hour)
	other := NewIssuer("test-secret", "teamtodo-api", "some-other-app", time.Hour)
	user, team := testUserAndTeam()

	tok, err := issuer.Issue(user, team, domain.RoleMember)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := other.Parse(tok); err == nil {
		t.Error("expected audience check to fail")
	}
}

func TestParseExpired(t *testing.T) {
	issuer := NewIssuer("test-secret", "teamtodo-api", "teamtodo-web", -time.Minute)
	user, team := testUserAndTeam()

	tok, err := issuer.Issue(user, team, domain.RoleMember)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := issuer.Parse(tok); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestParseGarbage(t *testing.T) {
	issuer := NewIssuer("test-secret", "teamtodo-api", "teamtodo-web", time.Hour)
	if _, err := issuer.Parse("not.a.token"); err == nil {
		t.Error("expected parse failure for malformed token")
	}
}
