package authcore

import (
	"context"
	"errors"

	"github.com/polylab/authcore/internal/tokens"
)

// RequestPasswordReset issues a single-use reset token and hands it to the
// Mailer. It is enumeration-safe: unknown and deactivated addresses return
// success without issuing anything.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) error {
	if e == nil || e.accounts == nil {
		return ErrEngineNotReady
	}

	email = normalizeEmail(email)

	acct, err := e.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			e.metricInc(MetricResetRequested)
			return nil
		}
		return wrapStoreErr(err)
	}
	if !acct.Active {
		e.metricInc(MetricResetRequested)
		return nil
	}

	token, err := e.tokens.Issue(ctx, acct.ID, tokens.PurposeReset, e.config.Tokens.ResetTTL)
	if err != nil {
		return wrapStoreErr(err)
	}
	e.metricInc(MetricTokenIssued)
	e.metricInc(MetricResetRequested)
	e.emitAudit(ctx, auditEventPasswordResetReq, true, acct.ID, "", nil, nil)

	if err := e.mailer.SendPasswordReset(ctx, email, token); err != nil {
		e.log.Warn(ctx, "reset mail failed", "email", email, "error", err)
	}
	return nil
}

// ConfirmPasswordReset redeems a reset token and installs the new password.
// The policy is checked before the token is consumed, so a weak password
// does not burn the token. All existing sessions for the account are revoked.
func (e *Engine) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if e == nil || e.tokens == nil {
		return ErrEngineNotReady
	}

	if !e.policy.Ok(newPassword) {
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, auditEventPasswordResetDone, false, "", "", ErrWeakPassword, nil)
		return ErrWeakPassword
	}

	accountID, err := e.tokens.Consume(ctx, token, tokens.PurposeReset)
	if err != nil {
		if errors.Is(err, tokens.ErrTokenNotFound) {
			e.metricInc(MetricTokenRejected)
			e.metricInc(MetricResetFailure)
			e.emitAudit(ctx, auditEventPasswordResetDone, false, "", "", ErrTokenInvalid, nil)
			return ErrTokenInvalid
		}
		return wrapStoreErr(err)
	}
	e.metricInc(MetricTokenConsumed)

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return wrapStoreErr(err)
	}

	if err := e.accounts.UpdatePasswordHash(ctx, accountID, hash); err != nil {
		if errors.Is(err, ErrNotFound) {
			e.metricInc(MetricResetFailure)
			return ErrTokenInvalid
		}
		return wrapStoreErr(err)
	}

	if err := e.sessions.RevokeAll(ctx, accountID); err != nil {
		e.log.Warn(ctx, "session revocation after reset failed", "account_id", accountID, "error", err)
	}

	e.metricInc(MetricResetSuccess)
	e.emitAudit(ctx, auditEventPasswordResetDone, true, accountID, "", nil, nil)
	e.log.Info(ctx, "password reset", "account_id", accountID)
	return nil
}
