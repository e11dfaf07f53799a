// Package devices keeps the record of devices that have completed a
// successful login.
//
// The registry is observational: it feeds dashboards and audit trails but
// never relaxes an authentication check. A known device gets no shortcut
// through the attempt tracker or the session fingerprint check.
package devices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mpsstore/authcore/clock"
	"github.com/mpsstore/authcore/kv"
)

// Device is one observed device. FailedAttempts is carried for future
// reporting; nothing reads it today.
type Device struct {
	DeviceID       string `json:"device_id"`
	UserAgent      string `json:"user_agent"`
	IPHash         string `json:"ip_hash"`
	FirstSeenAt    int64  `json:"first_seen_at"`
	LastUsedAt     int64  `json:"last_used_at"`
	Trusted        bool   `json:"trusted"`
	FailedAttempts int    `json:"failed_attempts"`
}

// Config holds registry settings.
type Config struct {
	// StorageKey is the key holding the device list.
	StorageKey string
}

// Registry stores the device list as a JSON array under a single key.
type Registry struct {
	store kv.Store
	clock clock.Clock
	cfg   Config
}

// NewRegistry wires a Registry.
func NewRegistry(store kv.Store, clk clock.Clock, cfg Config) *Registry {
	return &Registry{store: store, clock: clk, cfg: cfg}
}

func (r *Registry) load(ctx context.Context) ([]Device, error) {
	raw, err := r.store.Get(ctx, r.cfg.StorageKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var list []Device
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, nil
	}
	return list, nil
}

func (r *Registry) save(ctx context.Context, list []Device) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode device list: %w", err)
	}
	return r.store.Set(ctx, r.cfg.StorageKey, string(raw))
}

// Upsert records a successful login from the device identified by
// fingerprint. A known device gets its LastUsedAt and IPHash refreshed; a
// new one is appended as trusted.
func (r *Registry) Upsert(ctx context.Context, fingerprint, userAgent, ipHash string) error {
	now := r.clock.Now().UnixMilli()
	list, err := r.load(ctx)
	if err != nil {
		return err
	}

	for i := range list {
		if list[i].DeviceID == fingerprint {
			list[i].LastUsedAt = now
			list[i].UserAgent = userAgent
			list[i].IPHash = ipHash
			return r.save(ctx, list)
		}
	}

	list = append(list, Device{
		DeviceID:    fingerprint,
		UserAgent:   userAgent,
		IPHash:      ipHash,
		FirstSeenAt: now,
		LastUsedAt:  now,
		Trusted:     true,
	})
	return r.save(ctx, list)
}

// Get returns the device with the given fingerprint, or nil.
func (r *Registry) Get(ctx context.Context, fingerprint string) (*Device, error) {
	list, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].DeviceID == fingerprint {
			device := list[i]
			return &device, nil
		}
	}
	return nil, nil
}

// List returns every recorded device.
func (r *Registry) List(ctx context.Context) ([]Device, error) {
	return r.load(ctx)
}

// IsTrusted reports whether fingerprint belongs to a recorded trusted
// device. Informational only.
func (r *Registry) IsTrusted(ctx context.Context, fingerprint string) (bool, error) {
	device, err := r.Get(ctx, fingerprint)
	if err != nil {
		return false, err
	}
	return device != nil && device.Trusted, nil
}
