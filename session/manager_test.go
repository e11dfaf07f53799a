package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mpsstore/authcore/clock"
	"github.com/mpsstore/authcore/kv"
)

func newTestManager(t *testing.T) (*Manager, *clock.Mock) {
	t.Helper()

	clk := clock.NewMock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	manager := NewManager(kv.NewMemoryStore(), clk, Config{
		TTL:        24 * time.Hour,
		StorageKey: "admin_session",
	})
	return manager, clk
}

func TestCreateAndValidate(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager(t)

	created, err := manager.Create(ctx, "fp-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Token == "" {
		t.Fatal("empty session token")
	}
	if created.ExpiresAt-created.CreatedAt != (24 * time.Hour).Milliseconds() {
		t.Fatalf("TTL = %dms", created.ExpiresAt-created.CreatedAt)
	}

	validated, err := manager.Validate(ctx, "fp-1")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if validated.Token != created.Token {
		t.Fatal("validated session differs from created session")
	}
}

func TestValidateMissingSession(t *testing.T) {
	manager, _ := newTestManager(t)

	if _, err := manager.Validate(context.Background(), "fp-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestValidateExpiredSessionIsDiscarded(t *testing.T) {
	ctx := context.Background()
	manager, clk := newTestManager(t)

	if _, err := manager.Create(ctx, "fp-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	clk.Advance(24*time.Hour + time.Second)

	if _, err := manager.Validate(ctx, "fp-1"); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}

	// The expired session was removed, not just rejected.
	if _, err := manager.Active(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected session to be gone, got %v", err)
	}
}

func TestValidateFingerprintMismatchDiscards(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager(t)

	if _, err := manager.Create(ctx, "fp-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := manager.Validate(ctx, "fp-other"); !errors.Is(err, ErrFingerprintMismatch) {
		t.Fatalf("expected ErrFingerprintMismatch, got %v", err)
	}

	// Even the original device cannot resume a discarded session.
	if _, err := manager.Validate(ctx, "fp-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after discard, got %v", err)
	}
}

func TestExpiryIsFixedAtCreation(t *testing.T) {
	ctx := context.Background()
	manager, clk := newTestManager(t)

	if _, err := manager.Create(ctx, "fp-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Repeated validation must not push the expiry out.
	for i := 0; i < 23; i++ {
		clk.Advance(time.Hour)
		if _, err := manager.Validate(ctx, "fp-1"); err != nil {
			t.Fatalf("Validate at hour %d: %v", i+1, err)
		}
	}

	clk.Advance(2 * time.Hour)
	if _, err := manager.Validate(ctx, "fp-1"); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired past original TTL, got %v", err)
	}
}

func TestCreateReplacesExistingSession(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager(t)

	first, err := manager.Create(ctx, "fp-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := manager.Create(ctx, "fp-2")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Token == second.Token {
		t.Fatal("tokens must be unique per session")
	}

	if _, err := manager.Validate(ctx, "fp-1"); !errors.Is(err, ErrFingerprintMismatch) {
		t.Fatalf("old device must not validate the replacement session, got %v", err)
	}
}

func TestInvalidateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager(t)

	if err := manager.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate with no session: %v", err)
	}

	if _, err := manager.Create(ctx, "fp-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := manager.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if err := manager.Invalidate(ctx); err != nil {
		t.Fatalf("second Invalidate: %v", err)
	}
}
