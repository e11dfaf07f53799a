package internal

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashBindingValue produces the stored form of a client binding value such
// as an IP address. The raw value must never be persisted; the hash is
// deterministic so it can serve as a lookup key.
func HashBindingValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
