package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/mpsstore/authcore/clientinfo"
	"github.com/mpsstore/authcore/password"
	"github.com/mpsstore/authcore/session"
)

const (
	auditEventLoginSuccess           = "login_success"
	auditEventLoginFailure           = "login_failure"
	auditEventLoginLocked            = "login_locked"
	auditEventLoginSuspiciousIP      = "login_suspicious_ip"
	auditEventLoginClientInfoFailed  = "login_client_info_failed"
	auditEventLockoutTriggered       = "lockout_triggered"
	auditEventSessionExpired         = "session_expired"
	auditEventSessionDeviceMismatch  = "session_device_mismatch"
	auditEventLogout                 = "logout"
	auditEventPasswordResetRequest   = "password_reset_request"
	auditEventPasswordChangeSuccess  = "password_change_success"
	auditEventPasswordChangeRejected = "password_change_rejected"
)

// AuditErrorCode is the normalized error identifier carried in audit
// events.
type AuditErrorCode string

const (
	auditErrInvalidCredentials  AuditErrorCode = "invalid_credentials"
	auditErrAccountLocked       AuditErrorCode = "account_locked"
	auditErrSuspiciousIP        AuditErrorCode = "suspicious_ip"
	auditErrClientInfo          AuditErrorCode = "client_info_unavailable"
	auditErrSessionNotFound     AuditErrorCode = "session_not_found"
	auditErrSessionExpired      AuditErrorCode = "session_expired"
	auditErrFingerprintMismatch AuditErrorCode = "fingerprint_mismatch"
	auditErrWeakPassword        AuditErrorCode = "weak_password"
	auditErrHashing             AuditErrorCode = "hashing_failure"
	auditErrUnavailable         AuditErrorCode = "backend_unavailable"
	auditErrInternal            AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	client clientinfo.Context,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   eventType,
		Username:    e.cfg.Credential.Username,
		IPHash:      client.IPHash,
		Fingerprint: client.DeviceFingerprint,
		Success:     success,
		Metadata:    metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrAccountLocked):
		return auditErrAccountLocked
	case errors.Is(err, ErrSuspiciousIPBlocked):
		return auditErrSuspiciousIP
	case errors.Is(err, ErrClientInfoUnavailable),
		errors.Is(err, clientinfo.ErrUnavailable):
		return auditErrClientInfo
	case errors.Is(err, session.ErrNotFound):
		return auditErrSessionNotFound
	case errors.Is(err, session.ErrExpired):
		return auditErrSessionExpired
	case errors.Is(err, session.ErrFingerprintMismatch):
		return auditErrFingerprintMismatch
	case errors.Is(err, ErrWeakPassword):
		return auditErrWeakPassword
	case errors.Is(err, password.ErrHashingFailure):
		return auditErrHashing
	case errors.Is(err, ErrLoginUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
