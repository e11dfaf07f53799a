package internal

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// NewSessionToken returns an opaque session token with 128 bits of
// cryptographic randomness, base64url-encoded without padding.
func NewSessionToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
