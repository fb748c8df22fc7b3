package memory

import (
	"context"
	"testing"
	"time"

	"github.com/diagnosis/teamtodo/internal/domain"
)

func TestTokenStoreExpiry(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewTokenStore(domain.CodeTTL)
	store.Now = func() time.Time { return base }

	if _, err := store.CreateToken(ctx, "jane@example.com", "123456"); err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	tok, err := store.GetValidUnusedToken(ctx, "jane@example.com", "123456")
	if err != nil || tok == nil {
		t.Fatalf("expected fresh token, got %v, %v", tok, err)
	}

	// One second past the TTL the token must stop resolving.
	store.Now = func() time.Time { return base.Add(domain.CodeTTL + time.Second) }
	tok, err = store.GetValidUnusedToken(ctx, "jane@example.com", "123456")
	if err != nil {
		t.Fatalf("GetValidUnusedToken: %v", err)
	}
	if tok != nil {
		t.Errorf("expected expired token to be filtered, got %+v", tok)
	}
}

func TestTokenStoreLookupMismatch(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore(0)
	if _, err := store.CreateToken(ctx, "jane@example.com", "123456"); err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	if tok, _ := store.GetValidUnusedToken(ctx, "jane@example.com", "654321"); tok != nil {
		t.Error("wrong code should not resolve")
	}
	if tok, _ := store.GetValidUnusedToken(ctx, "john@example.com", "123456"); tok != nil {
		t.Error("wrong email should not resolve")
	}
}

func TestTokenStoreNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewTokenStore(0)
	store.Now = func() time.Time { return base }

	first, _ := store.CreateToken(ctx, "jane@example.com", "111111")
	store.Now = func() time.Time { return base.Add(time.Minute) }
	second, _ := store.CreateToken(ctx, "jane@example.com", "111111")

	got, err := store.GetValidUnusedToken(ctx, "jane@example.com", "111111")
	if err != nil || got == nil {
		t.Fatalf("expected token, got %v, %v", got, err)
	}
	if got.ID != second.ID {
		t.Errorf("expected newest token %s, got %s (oldest was %s)", second.ID, got.ID, first.ID)
	}
}

func TestTokenStoreMarkUsedOnce(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore(0)
	tok, _ := store.CreateToken(ctx, "jane@example.com", "123456")

	if err := store.MarkUsed(ctx, tok); err != nil {
		t.Fatalf("MarkUsed: %v", err)
	}
	if !tok.IsUsed || tok.UsedAt == nil {
		t.Errorf("expected token mutated in place, got %+v", tok)
	}

	// Second consumption of the same token must fail.
	if err := store.MarkUsed(ctx, tok); err != ErrNotFound {
		t.Errorf("expected ErrNotFound on reuse, got %v", err)
	}

	if got, _ := store.GetValidUnusedToken(ctx, "jane@example.com", "123456"); got != nil {
		t.Error("used token should not resolve as unused")
	}
	got, err := store.GetValidUsedToken(ctx, "jane@example.com", "123456")
	if err != nil || got == nil {
		t.Fatalf("used token should resolve via GetValidUsedToken, got %v, %v", got, err)
	}
	if got.ID != tok.ID {
		t.Errorf("expected token %s, got %s", tok.ID, got.ID)
	}
}

func TestTokenStoreRateWindow(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewTokenStore(0)
	store.Now = func() time.Time { return base }

	for i := 0; i < 3; i++ {
		if _, err := store.CreateToken(ctx, "jane@example.com", "123456"); err != nil {
			t.Fatalf("CreateToken: %v", err)
		}
	}
	// A token consumed or expired still counts toward the window.
	tok, _ := store.GetValidUnusedToken(ctx, "jane@example.com", "123456")
	if err := store.MarkUsed(ctx, tok); err != nil {
		t.Fatalf("MarkUsed: %v", err)
	}
	store.CreateToken(ctx, "other@example.com", "999999")

	n, err := store.CountRecentRequests(ctx, "jane@example.com", domain.RateLimitWindow)
	if err != nil {
		t.Fatalf("CountRecentRequests: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 recent requests, got %d", n)
	}

	// Just past the window the three drop out.
	store.Now = func() time.Time { return base.Add(domain.RateLimitWindow + time.Second) }
	n, err = store.CountRecentRequests(ctx, "jane@example.com", domain.RateLimitWindow)
	if err != nil {
		t.Fatalf("CountRecentRequests: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 after window elapsed, got %d", n)
	}
}
