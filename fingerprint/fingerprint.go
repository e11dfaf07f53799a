// Package fingerprint derives a stable device identifier from environment
// signals reported by the client. The same signals always produce the same
// fingerprint, which is what lets sessions stay bound to the device that
// created them.
//
// The fingerprint is best-effort identification, not authentication: any
// client that can replay the signals can replay the fingerprint.
package fingerprint

import (
	"strings"

	"github.com/google/uuid"
)

// namespace for derived fingerprints. Fixed so derivation is stable across
// processes and restarts.
var namespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// Signals are the client-reported environment attributes that feed the
// fingerprint.
type Signals struct {
	UserAgent        string
	ScreenResolution string
	Timezone         string
	Language         string
	Platform         string
}

// Derive returns the deterministic fingerprint for the given signals,
// formatted as a UUID string.
func Derive(s Signals) string {
	seed := strings.Join([]string{
		s.UserAgent,
		s.ScreenResolution,
		s.Timezone,
		s.Language,
		s.Platform,
	}, "-")
	return uuid.NewSHA1(namespace, []byte(seed)).String()
}
