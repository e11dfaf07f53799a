// Package session manages the single admin session: an opaque random
// token bound to the device fingerprint that created it, expiring at a
// fixed instant regardless of activity.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mpsstore/authcore/clock"
	"github.com/mpsstore/authcore/internal"
	"github.com/mpsstore/authcore/kv"
)

var (
	// ErrNotFound means no session exists.
	ErrNotFound = errors.New("session not found")

	// ErrExpired means the session existed but its TTL elapsed. The
	// session is removed before this is returned.
	ErrExpired = errors.New("session expired")

	// ErrFingerprintMismatch means the presenting device is not the one
	// that created the session. The session is removed before this is
	// returned.
	ErrFingerprintMismatch = errors.New("session fingerprint mismatch")
)

// Session is the stored session state. Timestamps are Unix milliseconds.
type Session struct {
	Token             string `json:"token"`
	CreatedAt         int64  `json:"created_at"`
	ExpiresAt         int64  `json:"expires_at"`
	DeviceFingerprint string `json:"device_fingerprint"`
}

// Config holds session settings.
type Config struct {
	// TTL is the fixed session lifetime. Validation never extends it.
	TTL time.Duration

	// StorageKey is the key holding the session. One key, one session:
	// a new login replaces any previous session.
	StorageKey string
}

// Manager creates, validates, and invalidates the admin session.
type Manager struct {
	store kv.Store
	clock clock.Clock
	cfg   Config
}

// NewManager wires a Manager.
func NewManager(store kv.Store, clk clock.Clock, cfg Config) *Manager {
	return &Manager{store: store, clock: clk, cfg: cfg}
}

// Create issues a new session bound to fingerprint, replacing any existing
// one. The expiry is fixed at creation time plus the TTL.
func (m *Manager) Create(ctx context.Context, fingerprint string) (*Session, error) {
	token, err := internal.NewSessionToken()
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()
	sess := &Session{
		Token:             token,
		CreatedAt:         now.UnixMilli(),
		ExpiresAt:         now.Add(m.cfg.TTL).UnixMilli(),
		DeviceFingerprint: fingerprint,
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if err := m.store.Set(ctx, m.cfg.StorageKey, string(raw)); err != nil {
		return nil, err
	}
	return sess, nil
}

// Validate checks the stored session against the presenting device. An
// expired or mismatched session is removed and the corresponding sentinel
// error returned.
func (m *Manager) Validate(ctx context.Context, fingerprint string) (*Session, error) {
	sess, err := m.Active(ctx)
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()
	if now.UnixMilli() >= sess.ExpiresAt {
		if err := m.Invalidate(ctx); err != nil {
			return nil, err
		}
		return nil, ErrExpired
	}

	if sess.DeviceFingerprint != fingerprint {
		if err := m.Invalidate(ctx); err != nil {
			return nil, err
		}
		return nil, ErrFingerprintMismatch
	}

	return sess, nil
}

// Active returns the stored session without validating expiry or device
// binding. ErrNotFound when none exists.
func (m *Manager) Active(ctx context.Context) (*Session, error) {
	raw, err := m.store.Get(ctx, m.cfg.StorageKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		// Undecodable state is treated as no session.
		_ = m.store.Remove(ctx, m.cfg.StorageKey)
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Invalidate removes the session. Removing a session that does not exist
// is not an error.
func (m *Manager) Invalidate(ctx context.Context) error {
	return m.store.Remove(ctx, m.cfg.StorageKey)
}
