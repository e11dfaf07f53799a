package authcore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mpsstore/authcore/attempts"
	"github.com/mpsstore/authcore/clientinfo"
	"github.com/mpsstore/authcore/clock"
	"github.com/mpsstore/authcore/devices"
	"github.com/mpsstore/authcore/fingerprint"
	"github.com/mpsstore/authcore/password"
	"github.com/mpsstore/authcore/session"
	"github.com/mpsstore/authcore/suspicion"

	"github.com/mpsstore/authcore/internal"
	internalaudit "github.com/mpsstore/authcore/internal/audit"
)

// User-facing login messages. Failure messages are deliberately vague so
// the caller learns nothing about which check rejected them beyond what
// the attempt counter already reveals.
const (
	msgClientInfoUnavailable = "Unable to verify client information"
	msgSuspiciousIP          = "Access denied from this IP address"
	msgLoginSuccess          = "Login successful"
	msgLoginError            = "An error occurred during login"
)

// Engine is the authentication facade. Construct it through [Builder];
// the zero value is not usable.
type Engine struct {
	cfg        Config
	hasher     *password.Hasher
	clientInfo *clientinfo.Provider
	attempts   *attempts.Tracker
	suspicion  *suspicion.Registry
	devices    *devices.Registry
	sessions   *session.Manager
	clock      clock.Clock
	metrics    *Metrics
	audit      *internalaudit.Dispatcher
}

// Login authenticates the single admin credential. The returned result
// always carries a user-facing Message; Reason is the sentinel error for
// programmatic branching and must not be shown to the user.
//
// Order of checks: client info, IP quarantine, lockout, artificial delay,
// credentials. The delay runs before credential comparison on every
// non-blocked attempt.
func (e *Engine) Login(ctx context.Context, username, pass string) LoginResult {
	start := time.Now()
	defer func() {
		e.metrics.Observe(MetricLoginLatency, time.Since(start))
	}()

	username = sanitizeInput(username)
	pass = sanitizeInput(pass)

	client, err := e.resolveClient(ctx)
	if err != nil {
		e.metrics.Inc(MetricLoginClientInfoUnavailable)
		e.emitAudit(ctx, auditEventLoginClientInfoFailed, false, client, ErrClientInfoUnavailable, nil)
		return LoginResult{Message: msgClientInfoUnavailable, Reason: ErrClientInfoUnavailable}
	}

	suspicious, err := e.suspicion.IsSuspicious(ctx, client.IPHash)
	if err != nil {
		return e.loginError(ctx, client, err)
	}
	state, err := e.attempts.Status(ctx, client.IPHash)
	if err != nil {
		return e.loginError(ctx, client, err)
	}

	// A lockout-triggering IP is also quarantined, so during the window
	// both conditions hold. The lockout message wins because it tells the
	// user how long to wait; the quarantine message covers IPs blocked
	// out of band.
	if suspicious && !state.Locked {
		e.metrics.Inc(MetricLoginSuspiciousBlocked)
		e.emitAudit(ctx, auditEventLoginSuspiciousIP, false, client, ErrSuspiciousIPBlocked, nil)
		return LoginResult{Message: msgSuspiciousIP, Reason: ErrSuspiciousIPBlocked}
	}
	if state.Locked {
		e.metrics.Inc(MetricLoginLocked)
		e.emitAudit(ctx, auditEventLoginLocked, false, client, ErrAccountLocked, nil)
		return LoginResult{Message: lockoutMessage(state.Remaining), Reason: ErrAccountLocked}
	}

	if err := e.loginDelay(ctx); err != nil {
		return e.loginError(ctx, client, err)
	}

	if username != e.cfg.Credential.Username {
		return e.rejectCredentials(ctx, client)
	}

	ok, err := e.hasher.Verify(pass, e.cfg.Credential.PasswordHash)
	if err != nil {
		// Hash infrastructure failure is indistinguishable from a wrong
		// password on the outside.
		log.Printf("authcore: password verification error: %v", err)
		return e.rejectCredentials(ctx, client)
	}
	if !ok {
		return e.rejectCredentials(ctx, client)
	}

	sess, err := e.sessions.Create(ctx, client.DeviceFingerprint)
	if err != nil {
		return e.loginError(ctx, client, err)
	}
	e.metrics.Inc(MetricSessionCreated)

	if err := e.devices.Upsert(ctx, client.DeviceFingerprint, client.UserAgent, client.IPHash); err != nil {
		// Device bookkeeping is observational; a failure must not undo a
		// successful login.
		log.Printf("authcore: device registry update failed: %v", err)
	} else {
		e.metrics.Inc(MetricDeviceTrusted)
	}

	if err := e.attempts.RecordSuccess(ctx, client.IPHash); err != nil {
		log.Printf("authcore: attempt reset failed: %v", err)
	}

	e.metrics.Inc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, client, nil, func() map[string]string {
		return map[string]string{"session_created": sess.Token[:4] + "..."}
	})

	return LoginResult{Success: true, Message: msgLoginSuccess}
}

// CheckAuth reports whether a valid session exists for the device
// described by the context signals. Expired or device-mismatched sessions
// are discarded as a side effect.
func (e *Engine) CheckAuth(ctx context.Context) bool {
	fp := fingerprint.Derive(deviceSignalsFromContext(ctx))

	_, err := e.sessions.Validate(ctx, fp)
	switch {
	case err == nil:
		return true
	case errors.Is(err, session.ErrExpired):
		e.metrics.Inc(MetricSessionExpired)
		e.emitAudit(ctx, auditEventSessionExpired, false, clientinfo.Context{DeviceFingerprint: fp}, err, nil)
	case errors.Is(err, session.ErrFingerprintMismatch):
		e.metrics.Inc(MetricSessionFingerprintMismatch)
		e.emitAudit(ctx, auditEventSessionDeviceMismatch, false, clientinfo.Context{DeviceFingerprint: fp}, err, nil)
	}
	return false
}

// ActiveSession returns the stored session without validating it.
// session.ErrNotFound when none exists.
func (e *Engine) ActiveSession(ctx context.Context) (*session.Session, error) {
	return e.sessions.Active(ctx)
}

// Logout removes the current session. Logging out with no session is a
// no-op.
func (e *Engine) Logout(ctx context.Context) error {
	if err := e.sessions.Invalidate(ctx); err != nil {
		return err
	}
	e.metrics.Inc(MetricSessionInvalidated)
	e.metrics.Inc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, clientinfo.Context{}, nil, nil)
	return nil
}

// Devices lists the observed trusted devices.
func (e *Engine) Devices(ctx context.Context) ([]devices.Device, error) {
	return e.devices.List(ctx)
}

// MarkSuspicious quarantines an IP address out of band, independent of
// the attempt tracker. The raw address is hashed before storage.
func (e *Engine) MarkSuspicious(ctx context.Context, ip string) error {
	if err := e.suspicion.Mark(ctx, internal.HashBindingValue(ip)); err != nil {
		return err
	}
	e.metrics.Inc(MetricIPMarkedSuspicious)
	return nil
}

// SweepSuspicious prunes expired quarantine entries and reports how many
// were removed. Lazy pruning on lookup makes this optional; it exists for
// deployments that prefer scheduled cleanup.
func (e *Engine) SweepSuspicious(ctx context.Context) (int, error) {
	return e.suspicion.Sweep(ctx)
}

// HashPassword produces the storable hash for a plaintext password using
// the engine's cost and pepper. Intended for provisioning the credential.
func (e *Engine) HashPassword(pass string) (string, error) {
	return e.hasher.Hash(pass)
}

// Metrics exposes the engine's metric store.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// MetricsSnapshot returns a point-in-time copy of all metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded under
// backpressure.
func (e *Engine) AuditDropped() uint64 {
	return e.audit.Dropped()
}

// Close drains and stops the audit dispatcher.
func (e *Engine) Close() {
	e.audit.Close()
}

func (e *Engine) resolveClient(ctx context.Context) (clientinfo.Context, error) {
	signals := deviceSignalsFromContext(ctx)
	userAgent := userAgentFromContext(ctx)
	if userAgent == "" {
		userAgent = signals.UserAgent
	}
	return e.clientInfo.Resolve(ctx, userAgent, fingerprint.Derive(signals))
}

// loginDelay waits the configured artificial delay without holding any
// lock, so parallel logins are slowed but not serialized.
func (e *Engine) loginDelay(ctx context.Context) error {
	if e.cfg.Security.LoginDelay <= 0 {
		return nil
	}

	timer := time.NewTimer(e.cfg.Security.LoginDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) rejectCredentials(ctx context.Context, client clientinfo.Context) LoginResult {
	state, err := e.attempts.RecordFailure(ctx, client.IPHash, client.DeviceFingerprint, client.UserAgent)
	if err != nil {
		return e.loginError(ctx, client, err)
	}

	e.metrics.Inc(MetricLoginFailure)
	if state.Locked {
		e.metrics.Inc(MetricLockoutTriggered)
		e.metrics.Inc(MetricIPMarkedSuspicious)
		e.emitAudit(ctx, auditEventLockoutTriggered, false, client, ErrAccountLocked, nil)
	}
	e.emitAudit(ctx, auditEventLoginFailure, false, client, ErrInvalidCredentials, func() map[string]string {
		return map[string]string{"attempts_left": fmt.Sprintf("%d", state.AttemptsLeft)}
	})

	return LoginResult{
		Message: fmt.Sprintf("Invalid credentials. %d attempts remaining.", state.AttemptsLeft),
		Reason:  ErrInvalidCredentials,
	}
}

func (e *Engine) loginError(ctx context.Context, client clientinfo.Context, err error) LoginResult {
	log.Printf("authcore: login backend error: %v", err)
	e.emitAudit(ctx, auditEventLoginFailure, false, client, ErrLoginUnavailable, nil)
	return LoginResult{Message: msgLoginError, Reason: fmt.Errorf("%w: %v", ErrLoginUnavailable, err)}
}

// lockoutMessage rounds the remaining lockout up to whole minutes so the
// user is never told a smaller wait than the real one.
func lockoutMessage(remaining time.Duration) string {
	minutes := int((remaining + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("Account locked. Try again in %d minutes.", minutes)
}
