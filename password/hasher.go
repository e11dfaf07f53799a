// Package password implements credential hashing and strength evaluation.
//
// Hashing is bcrypt with a server-side pepper appended to the plaintext
// before hashing. The pepper never reaches the store, so a leaked hash
// database alone is not enough to mount an offline attack.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinCost is the lowest accepted bcrypt work factor.
const MinCost = 12

// ErrHashingFailure is returned when the underlying hash primitive fails
// for any reason other than a plain mismatch.
var ErrHashingFailure = errors.New("password hashing failure")

// Config holds hashing parameters.
type Config struct {
	// Cost is the bcrypt work factor. Must be >= MinCost.
	Cost int

	// Pepper is appended to the plaintext before hashing. Keep it out of
	// the key-value store and out of version control.
	Pepper string
}

// Hasher hashes and verifies passwords.
type Hasher struct {
	cost   int
	pepper string
}

// NewHasher validates cfg and returns a Hasher.
func NewHasher(cfg Config) (*Hasher, error) {
	if cfg.Cost < MinCost {
		return nil, fmt.Errorf("%w: bcrypt cost %d below minimum %d", ErrHashingFailure, cfg.Cost, MinCost)
	}
	return &Hasher{cost: cfg.Cost, pepper: cfg.Pepper}, nil
}

// Hash returns the bcrypt hash of password+pepper.
//
// bcrypt rejects inputs longer than 72 bytes; that surfaces here as
// ErrHashingFailure rather than a silent truncation.
func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password+h.pepper), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashingFailure, err)
	}
	return string(hash), nil
}

// Verify reports whether password+pepper matches hash. A mismatch is
// (false, nil); only infrastructure problems (malformed hash, oversized
// input) produce an error.
func (h *Hasher) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password+h.pepper))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrHashingFailure, err)
}
