package authcore

import (
	"context"
	"errors"

	"github.com/polylab/authcore/internal/tokens"
)

// VerifyEmail redeems a verification token and marks the owning account's
// address as verified. Tokens are single-use: a second redemption of the same
// token fails with ErrTokenInvalid.
func (e *Engine) VerifyEmail(ctx context.Context, token string) error {
	if e == nil || e.tokens == nil {
		return ErrEngineNotReady
	}

	accountID, err := e.tokens.Consume(ctx, token, tokens.PurposeVerify)
	if err != nil {
		if errors.Is(err, tokens.ErrTokenNotFound) {
			e.metricInc(MetricTokenRejected)
			e.metricInc(MetricVerificationFailure)
			e.emitAudit(ctx, auditEventEmailVerification, false, "", "", ErrTokenInvalid, nil)
			return ErrTokenInvalid
		}
		return wrapStoreErr(err)
	}
	e.metricInc(MetricTokenConsumed)

	if err := e.accounts.MarkEmailVerified(ctx, accountID); err != nil {
		if errors.Is(err, ErrNotFound) {
			// Token outlived the account.
			e.metricInc(MetricVerificationFailure)
			return ErrTokenInvalid
		}
		return wrapStoreErr(err)
	}

	e.metricInc(MetricVerificationSuccess)
	e.emitAudit(ctx, auditEventEmailVerification, true, accountID, "", nil, nil)
	e.log.Info(ctx, "email verified", "account_id", accountID)
	return nil
}

// ResendVerification issues a fresh verification token for an unverified
// account. It is enumeration-safe: unknown and already-verified addresses
// return success without issuing anything.
func (e *Engine) ResendVerification(ctx context.Context, email string) error {
	if e == nil || e.accounts == nil {
		return ErrEngineNotReady
	}

	email = normalizeEmail(email)

	acct, err := e.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return wrapStoreErr(err)
	}
	if acct.EmailVerified || !acct.Active {
		return nil
	}

	token, err := e.tokens.Issue(ctx, acct.ID, tokens.PurposeVerify, e.config.Tokens.VerifyTTL)
	if err != nil {
		return wrapStoreErr(err)
	}
	e.metricInc(MetricTokenIssued)

	if err := e.mailer.SendVerification(ctx, email, token); err != nil {
		e.log.Warn(ctx, "verification mail failed", "email", email, "error", err)
	}
	return nil
}
