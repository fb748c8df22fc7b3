package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestRequestCodeRequestNormalize(t *testing.T) {
	req := RequestCodeRequest{Email: "  Jane.Doe@Example.COM "}
	req.Normalize()
	if req.Email != "jane.doe@example.com" {
		t.Errorf("expected lowercased trimmed email, got %q", req.Email)
	}
}

func TestRequestCodeRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "jane@example.com", false},
		{"valid subdomain", "jane@mail.example.co.uk", false},
		{"empty", "", true},
		{"no at sign", "janeexample.com", true},
		{"no domain", "jane@", true},
		{"no tld", "jane@example", true},
		{"spaces inside", "jane doe@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := RequestCodeRequest{Email: tt.email}
			err := req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
			if err != nil {
				var fe FieldErrors
				if !errors.As(err, &fe) {
					t.Fatalf("expected FieldErrors, got %T", err)
				}
				if fe["email"] != InvalidEmailMessage {
					t.Errorf("expected email field message, got %v", fe)
				}
			}
		})
	}
}

func TestVerifyCodeRequestValidate(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		wantField bool
	}{
		{"valid", "123456", false},
		{"leading zeros", "000123", false},
		{"too short", "12345", true},
		{"too long", "1234567", true},
		{"letters", "12a456", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := VerifyCodeRequest{Email: "jane@example.com", Code: tt.code}
			err := req.Validate()
			if !tt.wantField {
				if err != nil {
					t.Errorf("Validate() unexpected error %v", err)
				}
				return
			}
			var fe FieldErrors
			if !errors.As(err, &fe) {
				t.Fatalf("expected FieldErrors, got %v", err)
			}
			if fe["code"] != InvalidOrExpiredCodeMessage {
				t.Errorf("expected code field message, got %v", fe)
			}
		})
	}
}

func TestCompleteRegistrationRequestValidate(t *testing.T) {
	valid := func() CompleteRegistrationRequest {
		return CompleteRegistrationRequest{
			Email:       "jane@example.com",
			Code:        "123456",
			DisplayName: "Jane Doe",
			TeamName:    "Acme",
		}
	}

	t.Run("valid", func(t *testing.T) {
		req := valid()
		if err := req.Validate(); err != nil {
			t.Errorf("Validate() unexpected error %v", err)
		}
	})

	t.Run("name too short", func(t *testing.T) {
		req := valid()
		req.DisplayName = "J"
		assertFieldError(t, req.Validate(), "displayName", DisplayNameLengthMessage)
	})

	t.Run("name too long", func(t *testing.T) {
		req := valid()
		req.DisplayName = strings.Repeat("x", 101)
		assertFieldError(t, req.Validate(), "displayName", DisplayNameLengthMessage)
	})

	t.Run("name missing", func(t *testing.T) {
		req := valid()
		req.DisplayName = ""
		assertFieldError(t, req.Validate(), "displayName", DisplayNameRequiredMessage)
	})

	t.Run("team name missing", func(t *testing.T) {
		req := valid()
		req.TeamName = ""
		assertFieldError(t, req.Validate(), "teamName", TeamNameRequiredMessage)
	})

	t.Run("team name at bounds", func(t *testing.T) {
		req := valid()
		req.TeamName = "ab"
		if err := req.Validate(); err != nil {
			t.Errorf("2-char team name should be valid, got %v", err)
		}
		req.TeamName = strings.Repeat("y", 100)
		if err := req.Validate(); err != nil {
			t.Errorf("100-char team name should be valid, got %v", err)
		}
	})

	t.Run("multiple fields reported", func(t *testing.T) {
		req := CompleteRegistrationRequest{}
		err := req.Validate()
		var fe FieldErrors
		if !errors.As(err, &fe) {
			t.Fatalf("expected FieldErrors, got %v", err)
		}
		for _, field := range []string{"email", "code", "displayName", "teamName"} {
			if _, ok := fe[field]; !ok {
				t.Errorf("expected error for field %q, got %v", field, fe)
			}
		}
	})
}

func assertFieldError(t *testing.T, err error, field, want string) {
	t.Helper()
	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if fe[field] != want {
		t.Errorf("field %q message = %q, want %q", field, fe[field], want)
	}
}

func TestRoleRoundTrip(t *testing.T) {
	for _, role := range []Role{RoleMember, RoleAdmin, RoleOwner} {
		parsed, err := ParseRole(role.String())
		if err != nil {
			t.Fatalf("ParseRole(%q) error: %v", role.String(), err)
		}
		if parsed != role {
			t.Errorf("round trip %v != %v", parsed, role)
		}
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestTokenKindRoundTrip(t *testing.T) {
	for _, kind := range []TokenKind{KindEmailVerification, KindPasswordlessLogin} {
		parsed, err := ParseTokenKind(kind.String())
		if err != nil {
			t.Fatalf("ParseTokenKind(%q) error: %v", kind.String(), err)
		}
		if parsed != kind {
			t.Errorf("round trip %v != %v", parsed, kind)
		}
	}
	if _, err := ParseTokenKind("magic_link"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
