package authcore

import (
	"context"
	"strconv"
	"strings"

	"github.com/mpsstore/authcore/clientinfo"
	"github.com/mpsstore/authcore/password"
)

// ResetPassword checks whether email matches the administrative contact
// and reports the outcome. The actual reset is an out-of-band operator
// action; this call only records the request in the audit trail.
func (e *Engine) ResetPassword(ctx context.Context, email string) bool {
	email = sanitizeInput(email)
	match := strings.EqualFold(email, e.cfg.Credential.Email)

	e.metrics.Inc(MetricPasswordResetRequest)
	e.emitAudit(ctx, auditEventPasswordResetRequest, match, clientinfo.Context{}, nil, func() map[string]string {
		return map[string]string{"email_matched": strconv.FormatBool(match)}
	})

	return match
}

// UpdatePassword verifies the current password and the strength of the
// candidate. It reports acceptance only; persisting the new hash (via
// [Engine.HashPassword]) is the caller's responsibility because the
// credential is static configuration.
//
// A wrong current password and a weak candidate are both plain rejections
// with no attempt counting and no lockout interaction.
func (e *Engine) UpdatePassword(ctx context.Context, currentPassword, newPassword string) bool {
	currentPassword = sanitizeInput(currentPassword)
	newPassword = sanitizeInput(newPassword)

	ok, err := e.hasher.Verify(currentPassword, e.cfg.Credential.PasswordHash)
	if err != nil || !ok {
		e.metrics.Inc(MetricPasswordChangeInvalidOld)
		e.emitAudit(ctx, auditEventPasswordChangeRejected, false, clientinfo.Context{}, ErrInvalidCredentials, nil)
		return false
	}

	strength := password.EvaluateStrength(newPassword)
	if !strength.IsStrong {
		e.metrics.Inc(MetricPasswordChangeWeak)
		e.emitAudit(ctx, auditEventPasswordChangeRejected, false, clientinfo.Context{}, ErrWeakPassword, func() map[string]string {
			return map[string]string{"unmet_requirements": strings.Join(strength.Feedback, "; ")}
		})
		return false
	}

	e.metrics.Inc(MetricPasswordChangeSuccess)
	e.emitAudit(ctx, auditEventPasswordChangeSuccess, true, clientinfo.Context{}, nil, nil)
	return true
}
