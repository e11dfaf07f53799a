// Package middleware provides the HTTP route guard over the engine's
// session check.
package middleware

import (
	"net/http"

	"github.com/mpsstore/authcore"
	"github.com/mpsstore/authcore/fingerprint"
)

// GuardConfig controls RequireAuth behavior.
type GuardConfig struct {
	// LoginURL, when set, turns rejections into a redirect there instead
	// of a plain 401.
	LoginURL string

	// Signals extracts the device signals from the request. When nil the
	// guard falls back to the User-Agent header alone, which weakens the
	// device binding to UA-only.
	Signals func(r *http.Request) fingerprint.Signals
}

// RequireAuth wraps next so it only serves requests with a valid
// device-bound session.
func RequireAuth(engine *authcore.Engine, cfg GuardConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signals := fingerprint.Signals{UserAgent: r.UserAgent()}
		if cfg.Signals != nil {
			signals = cfg.Signals(r)
		}

		ctx := authcore.WithUserAgent(r.Context(), r.UserAgent())
		ctx = authcore.WithDeviceSignals(ctx, signals)

		if !engine.CheckAuth(ctx) {
			if cfg.LoginURL != "" {
				http.Redirect(w, r, cfg.LoginURL, http.StatusSeeOther)
				return
			}
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
