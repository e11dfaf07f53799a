// Package attempts tracks failed login attempts per client IP and enforces
// the lockout window.
//
// Counting uses a sliding reference point: a failure more than one lockout
// duration after the previous one restarts the count at 1 instead of
// accumulating forever. Reaching the attempt limit locks the IP for the
// full lockout duration and reports the IP to the quarantine registry.
package attempts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mpsstore/authcore/clock"
	"github.com/mpsstore/authcore/kv"
)

// Record is the stored per-IP attempt state. Timestamps are Unix
// milliseconds for portability across store implementations.
type Record struct {
	Count             int    `json:"count"`
	LastAttemptAt     int64  `json:"last_attempt_at"`
	LockedUntil       int64  `json:"locked_until,omitempty"`
	IPHash            string `json:"ip_hash"`
	DeviceFingerprint string `json:"device_fingerprint,omitempty"`
	UserAgent         string `json:"user_agent,omitempty"`
}

// LockState is the throttling decision for an IP.
type LockState struct {
	// Locked is true while the lockout window is active.
	Locked bool

	// Remaining is how much of the lockout window is left. Zero when not
	// locked.
	Remaining time.Duration

	// AttemptsLeft is how many more failures are tolerated before lockout.
	AttemptsLeft int
}

// Notifier is told when an IP crosses the attempt limit. The suspicion
// registry implements it.
type Notifier interface {
	Mark(ctx context.Context, ipHash string) error
}

// Config holds tracker tuning.
type Config struct {
	MaxAttempts     int
	LockoutDuration time.Duration
	KeyPrefix       string
}

// Tracker counts failures and answers lockout queries.
type Tracker struct {
	store    kv.Store
	clock    clock.Clock
	cfg      Config
	notifier Notifier
}

// NewTracker wires a Tracker. notifier may be nil.
func NewTracker(store kv.Store, clk clock.Clock, cfg Config, notifier Notifier) *Tracker {
	return &Tracker{
		store:    store,
		clock:    clk,
		cfg:      cfg,
		notifier: notifier,
	}
}

func (t *Tracker) key(ipHash string) string {
	return t.cfg.KeyPrefix + ipHash
}

func (t *Tracker) load(ctx context.Context, ipHash string) (*Record, error) {
	raw, err := t.store.Get(ctx, t.key(ipHash))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		// A corrupt record is treated as absent so the IP is not locked
		// out forever on undecodable state.
		return nil, nil
	}
	return &rec, nil
}

func (t *Tracker) save(ctx context.Context, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode attempt record: %w", err)
	}
	return t.store.Set(ctx, t.key(rec.IPHash), string(raw))
}

// RecordFailure registers one failed attempt from ipHash and returns the
// updated lock state. Crossing the limit starts the lockout window and
// notifies the quarantine registry.
func (t *Tracker) RecordFailure(ctx context.Context, ipHash, fingerprint, userAgent string) (LockState, error) {
	now := t.clock.Now()
	rec, err := t.load(ctx, ipHash)
	if err != nil {
		return LockState{}, err
	}

	switch {
	case rec == nil:
		rec = &Record{Count: 1, IPHash: ipHash}
	case now.Sub(time.UnixMilli(rec.LastAttemptAt)) > t.cfg.LockoutDuration:
		// Stale record: the window has fully elapsed, start over.
		rec.Count = 1
		rec.LockedUntil = 0
	default:
		rec.Count++
	}

	rec.LastAttemptAt = now.UnixMilli()
	rec.DeviceFingerprint = fingerprint
	rec.UserAgent = userAgent

	locked := rec.Count >= t.cfg.MaxAttempts
	if locked && rec.LockedUntil == 0 {
		rec.LockedUntil = now.Add(t.cfg.LockoutDuration).UnixMilli()
		if t.notifier != nil {
			if err := t.notifier.Mark(ctx, ipHash); err != nil {
				return LockState{}, err
			}
		}
	}

	if err := t.save(ctx, rec); err != nil {
		return LockState{}, err
	}

	return t.stateFor(rec, now), nil
}

// RecordSuccess clears the attempt state for ipHash.
func (t *Tracker) RecordSuccess(ctx context.Context, ipHash string) error {
	return t.store.Remove(ctx, t.key(ipHash))
}

// Status reports the current lock state for ipHash without mutating it,
// except that a fully elapsed window clears the stale record.
func (t *Tracker) Status(ctx context.Context, ipHash string) (LockState, error) {
	now := t.clock.Now()
	rec, err := t.load(ctx, ipHash)
	if err != nil {
		return LockState{}, err
	}
	if rec == nil {
		return LockState{AttemptsLeft: t.cfg.MaxAttempts}, nil
	}

	if now.Sub(time.UnixMilli(rec.LastAttemptAt)) > t.cfg.LockoutDuration {
		if err := t.store.Remove(ctx, t.key(ipHash)); err != nil {
			return LockState{}, err
		}
		return LockState{AttemptsLeft: t.cfg.MaxAttempts}, nil
	}

	return t.stateFor(rec, now), nil
}

func (t *Tracker) stateFor(rec *Record, now time.Time) LockState {
	state := LockState{
		AttemptsLeft: t.cfg.MaxAttempts - rec.Count,
	}
	if state.AttemptsLeft < 0 {
		state.AttemptsLeft = 0
	}

	if rec.LockedUntil > 0 {
		until := time.UnixMilli(rec.LockedUntil)
		if now.Before(until) {
			state.Locked = true
			state.Remaining = until.Sub(now)
		}
	}
	return state
}
