package authcore

import "errors"

var (
	// ErrClientInfoUnavailable means the client IP could not be resolved.
	// Login refuses to proceed rather than skip throttling.
	ErrClientInfoUnavailable = errors.New("unable to verify client information")
	// ErrSuspiciousIPBlocked means the client IP is quarantined.
	ErrSuspiciousIPBlocked = errors.New("access denied from this ip address")
	// ErrAccountLocked means the lockout window for this IP is active.
	ErrAccountLocked = errors.New("account locked")
	// ErrInvalidCredentials covers both unknown username and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrWeakPassword means the candidate password failed strength scoring.
	ErrWeakPassword = errors.New("password too weak")
	// ErrNotAuthenticated means no valid session exists for the caller.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrEngineNotReady means the engine was not built through the Builder.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrLoginUnavailable wraps backend failures during login. The
	// user-facing message stays generic.
	ErrLoginUnavailable = errors.New("login temporarily unavailable")
)
