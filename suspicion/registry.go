// Package suspicion quarantines IPs that have triggered a lockout. A
// quarantined IP is refused before credentials are even examined.
//
// Entries expire after a configurable duration. Expiry is enforced lazily
// on lookup; Sweep exists for deployments that prefer scheduled cleanup.
package suspicion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mpsstore/authcore/clock"
	"github.com/mpsstore/authcore/kv"
)

// Entry is one quarantined IP. ExpiresAt is Unix milliseconds.
type Entry struct {
	IPHash    string `json:"ip_hash"`
	MarkedAt  int64  `json:"marked_at"`
	ExpiresAt int64  `json:"expires_at"`
}

// Config holds registry tuning.
type Config struct {
	// Quarantine is how long a marked IP stays blocked.
	Quarantine time.Duration

	// StorageKey is the key holding the entry list.
	StorageKey string
}

// Registry is the suspicious-IP quarantine list. The whole list lives
// under one key as a JSON array.
type Registry struct {
	store kv.Store
	clock clock.Clock
	cfg   Config
}

// NewRegistry wires a Registry.
func NewRegistry(store kv.Store, clk clock.Clock, cfg Config) *Registry {
	return &Registry{store: store, clock: clk, cfg: cfg}
}

func (r *Registry) load(ctx context.Context) ([]Entry, error) {
	raw, err := r.store.Get(ctx, r.cfg.StorageKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, nil
	}
	return entries, nil
}

func (r *Registry) save(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return r.store.Remove(ctx, r.cfg.StorageKey)
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode suspicious ip list: %w", err)
	}
	return r.store.Set(ctx, r.cfg.StorageKey, string(raw))
}

// Mark quarantines ipHash. Marking an already-quarantined IP refreshes its
// expiry.
func (r *Registry) Mark(ctx context.Context, ipHash string) error {
	now := r.clock.Now()
	entries, err := r.load(ctx)
	if err != nil {
		return err
	}

	entries = prune(entries, now)

	updated := false
	for i := range entries {
		if entries[i].IPHash == ipHash {
			entries[i].MarkedAt = now.UnixMilli()
			entries[i].ExpiresAt = now.Add(r.cfg.Quarantine).UnixMilli()
			updated = true
			break
		}
	}
	if !updated {
		entries = append(entries, Entry{
			IPHash:    ipHash,
			MarkedAt:  now.UnixMilli(),
			ExpiresAt: now.Add(r.cfg.Quarantine).UnixMilli(),
		})
	}

	return r.save(ctx, entries)
}

// IsSuspicious reports whether ipHash is currently quarantined. Expired
// entries found along the way are pruned and persisted.
func (r *Registry) IsSuspicious(ctx context.Context, ipHash string) (bool, error) {
	now := r.clock.Now()
	entries, err := r.load(ctx)
	if err != nil {
		return false, err
	}

	live := prune(entries, now)
	if len(live) != len(entries) {
		if err := r.save(ctx, live); err != nil {
			return false, err
		}
	}

	for _, entry := range live {
		if entry.IPHash == ipHash {
			return true, nil
		}
	}
	return false, nil
}

// Sweep removes all expired entries and reports how many were dropped.
func (r *Registry) Sweep(ctx context.Context) (int, error) {
	now := r.clock.Now()
	entries, err := r.load(ctx)
	if err != nil {
		return 0, err
	}

	live := prune(entries, now)
	removed := len(entries) - len(live)
	if removed == 0 {
		return 0, nil
	}
	if err := r.save(ctx, live); err != nil {
		return 0, err
	}
	return removed, nil
}

func prune(entries []Entry, now time.Time) []Entry {
	live := entries[:0:0]
	for _, entry := range entries {
		if now.UnixMilli() < entry.ExpiresAt {
			live = append(live, entry)
		}
	}
	return live
}
