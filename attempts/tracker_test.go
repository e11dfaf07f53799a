package attempts

import (
	"context"
	"testing"
	"time"

	"github.com/mpsstore/authcore/clock"
	"github.com/mpsstore/authcore/kv"
)

type recordingNotifier struct {
	marked []string
}

func (n *recordingNotifier) Mark(_ context.Context, ipHash string) error {
	n.marked = append(n.marked, ipHash)
	return nil
}

func newTestTracker(t *testing.T) (*Tracker, *clock.Mock, *recordingNotifier) {
	t.Helper()

	clk := clock.NewMock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	notifier := &recordingNotifier{}
	tracker := NewTracker(kv.NewMemoryStore(), clk, Config{
		MaxAttempts:     3,
		LockoutDuration: 30 * time.Minute,
		KeyPrefix:       "login_attempts:",
	}, notifier)
	return tracker, clk, notifier
}

func TestFailuresCountDownToLockout(t *testing.T) {
	ctx := context.Background()
	tracker, _, notifier := newTestTracker(t)

	state, err := tracker.RecordFailure(ctx, "ip-1", "fp", "ua")
	if err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}
	if state.Locked || state.AttemptsLeft != 2 {
		t.Fatalf("after 1 failure: %+v", state)
	}

	state, _ = tracker.RecordFailure(ctx, "ip-1", "fp", "ua")
	if state.Locked || state.AttemptsLeft != 1 {
		t.Fatalf("after 2 failures: %+v", state)
	}

	state, _ = tracker.RecordFailure(ctx, "ip-1", "fp", "ua")
	if !state.Locked || state.AttemptsLeft != 0 {
		t.Fatalf("after 3 failures: %+v", state)
	}
	if state.Remaining != 30*time.Minute {
		t.Fatalf("lockout remaining = %v, want 30m", state.Remaining)
	}

	if len(notifier.marked) != 1 || notifier.marked[0] != "ip-1" {
		t.Fatalf("notifier calls = %v, want one mark for ip-1", notifier.marked)
	}
}

func TestLockoutExpiresAfterDuration(t *testing.T) {
	ctx := context.Background()
	tracker, clk, _ := newTestTracker(t)

	for i := 0; i < 3; i++ {
		if _, err := tracker.RecordFailure(ctx, "ip-1", "fp", "ua"); err != nil {
			t.Fatalf("RecordFailure: %v", err)
		}
	}

	clk.Advance(29 * time.Minute)
	state, err := tracker.Status(ctx, "ip-1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !state.Locked {
		t.Fatal("expected lock to still be active at 29m")
	}
	if state.Remaining != time.Minute {
		t.Fatalf("remaining = %v, want 1m", state.Remaining)
	}

	clk.Advance(2 * time.Minute)
	state, err = tracker.Status(ctx, "ip-1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if state.Locked {
		t.Fatal("expected lock to have expired at 31m")
	}
	if state.AttemptsLeft != 3 {
		t.Fatalf("attempts left after expiry = %d, want 3", state.AttemptsLeft)
	}
}

func TestStaleWindowResetsCountToOne(t *testing.T) {
	ctx := context.Background()
	tracker, clk, _ := newTestTracker(t)

	if _, err := tracker.RecordFailure(ctx, "ip-1", "fp", "ua"); err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}
	if _, err := tracker.RecordFailure(ctx, "ip-1", "fp", "ua"); err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}

	// More than one lockout duration later the count restarts at 1, it
	// does not carry over to 3 and lock.
	clk.Advance(31 * time.Minute)
	state, err := tracker.RecordFailure(ctx, "ip-1", "fp", "ua")
	if err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}
	if state.Locked {
		t.Fatal("stale failure must not lock")
	}
	if state.AttemptsLeft != 2 {
		t.Fatalf("attempts left = %d, want 2", state.AttemptsLeft)
	}
}

func TestSuccessClearsState(t *testing.T) {
	ctx := context.Background()
	tracker, _, _ := newTestTracker(t)

	if _, err := tracker.RecordFailure(ctx, "ip-1", "fp", "ua"); err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}
	if err := tracker.RecordSuccess(ctx, "ip-1"); err != nil {
		t.Fatalf("RecordSuccess: %v", err)
	}

	state, err := tracker.Status(ctx, "ip-1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if state.Locked || state.AttemptsLeft != 3 {
		t.Fatalf("state after success = %+v, want clean slate", state)
	}
}

func TestAttemptsLeftNeverNegative(t *testing.T) {
	ctx := context.Background()
	tracker, _, _ := newTestTracker(t)

	var state LockState
	var err error
	for i := 0; i < 5; i++ {
		state, err = tracker.RecordFailure(ctx, "ip-1", "fp", "ua")
		if err != nil {
			t.Fatalf("RecordFailure: %v", err)
		}
	}
	if state.AttemptsLeft != 0 {
		t.Fatalf("attempts left = %d, want 0", state.AttemptsLeft)
	}
}

func TestTrackerIsolatesIPs(t *testing.T) {
	ctx := context.Background()
	tracker, _, _ := newTestTracker(t)

	for i := 0; i < 3; i++ {
		if _, err := tracker.RecordFailure(ctx, "ip-1", "fp", "ua"); err != nil {
			t.Fatalf("RecordFailure: %v", err)
		}
	}

	state, err := tracker.Status(ctx, "ip-2")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if state.Locked || state.AttemptsLeft != 3 {
		t.Fatalf("ip-2 state = %+v, must be unaffected by ip-1", state)
	}
}
