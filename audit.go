package authcore

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/polylab/authcore/internal/audit"
)

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

const (
	auditEventSignup             = "signup"
	auditEventLoginSuccess       = "login_success"
	auditEventLoginFailure       = "login_failure"
	auditEventLogout             = "logout"
	auditEventSessionExpired     = "session_expired"
	auditEventEmailVerification  = "email_verification"
	auditEventPasswordResetReq   = "password_reset_request"
	auditEventPasswordResetDone  = "password_reset_confirm"
	auditEventMFARequired        = "mfa_required"
	auditEventMFASuccess         = "mfa_success"
	auditEventMFAFailure         = "mfa_failure"
	auditEventTOTPEnrollStart    = "totp_enroll_start"
	auditEventTOTPEnabled        = "totp_enabled"
	auditEventTOTPDisabled       = "totp_disabled"
	auditEventRateLimitTriggered = "rate_limit_triggered"
	auditEventCSRFRejected       = "csrf_rejected"
	auditEventRoleChange         = "role_change"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	accountID string,
	sessionID string,
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
	if ua := userAgentFromContext(ctx); ua != "" {
		if metadata == nil {
			metadata = make(map[string]string, 1)
		}
		metadata["user_agent"] = ua
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		AccountID: accountID,
		SessionID: sessionID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := Kind(err); code != "" {
		event.Error = code
	}

	e.audit.Emit(ctx, event)
}
