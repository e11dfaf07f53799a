// Package kv defines the key-value persistence boundary shared by every
// stateful authcore component (attempt tracking, IP quarantine, trusted
// devices, sessions).
//
// The interface deliberately exposes only get/set/remove on string values.
// Reads and writes are NOT atomic read-modify-write transactions: two
// concurrent writers can race and one update can be lost. That is an
// accepted property of the design (the state lives on the client side and
// is untrusted anyway); callers must not assume counters backed by a Store
// are exact under concurrency.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("key not found")

// ErrStoreUnavailable wraps backend transport failures so callers can
// distinguish "absent" from "backend down".
var ErrStoreUnavailable = errors.New("key-value store unavailable")

// Store is the persistence interface injected into all authcore services.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
