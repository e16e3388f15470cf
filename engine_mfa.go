package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/polylab/authcore/internal/tokens"
)

// EnrollTOTP starts TOTP enrollment for an authenticated account. A fresh
// secret is written to the pending slot, leaving any active secret untouched
// until the user proves possession via [Engine.ConfirmTOTPEnrollment]. The
// returned bridging token must accompany the confirmation code and expires
// after Config.Tokens.MFATTL.
func (e *Engine) EnrollTOTP(ctx context.Context, accountID string) (*TOTPSetup, error) {
	if e == nil || e.accounts == nil {
		return nil, ErrEngineNotReady
	}

	acct, err := e.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStoreErr(err)
	}
	if !acct.Active {
		return nil, ErrForbidden
	}

	secret, err := e.totp.GenerateSecret()
	if err != nil {
		return nil, err
	}

	if err := e.accounts.SetPendingTOTPSecret(ctx, acct.ID, secret); err != nil {
		return nil, wrapStoreErr(err)
	}

	bridge, err := e.tokens.Issue(ctx, acct.ID, tokens.PurposeMFA, e.config.Tokens.MFATTL)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	e.metricInc(MetricTokenIssued)
	e.metricInc(MetricEnrollStarted)
	e.emitAudit(ctx, auditEventTOTPEnrollStart, true, acct.ID, "", nil, nil)

	return &TOTPSetup{
		Secret:       secret,
		URI:          e.totp.ProvisionURI(secret, acct.Email),
		EnrollToken:  bridge,
		TokenExpires: time.Now().UTC().Add(e.config.Tokens.MFATTL),
	}, nil
}

// ConfirmTOTPEnrollment redeems the enrollment bridging token and, when the
// code matches the pending secret, promotes it to the active slot. The token
// is single-use; a wrong code burns it and enrollment must be restarted.
func (e *Engine) ConfirmTOTPEnrollment(ctx context.Context, enrollToken, code string) error {
	if e == nil || e.tokens == nil {
		return ErrEngineNotReady
	}

	accountID, err := e.consumeMFAToken(ctx, enrollToken)
	if err != nil {
		return err
	}

	acct, err := e.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrTokenInvalid
		}
		return wrapStoreErr(err)
	}
	if acct.PendingTOTPSecret == "" {
		return ErrMFANotPending
	}

	ok, err := e.totp.VerifyCode(acct.PendingTOTPSecret, code, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		e.metricInc(MetricMFAFailure)
		e.emitAudit(ctx, auditEventMFAFailure, false, acct.ID, "", ErrMFAInvalid, func() map[string]string {
			return map[string]string{"phase": "enroll"}
		})
		return ErrMFAInvalid
	}

	if err := e.accounts.PromoteTOTPSecret(ctx, acct.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrMFANotPending
		}
		return wrapStoreErr(err)
	}

	e.metricInc(MetricEnrollCompleted)
	e.emitAudit(ctx, auditEventTOTPEnabled, true, acct.ID, "", nil, nil)
	e.log.Info(ctx, "totp enabled", "account_id", acct.ID)
	return nil
}

// DisableTOTP turns the second factor off. When an active secret exists a
// valid current code is required, so a hijacked session alone cannot weaken
// the account. With only a pending enrollment, or nothing enrolled at all,
// disable clears state (or no-ops) without a code.
func (e *Engine) DisableTOTP(ctx context.Context, accountID, code string) error {
	if e == nil || e.accounts == nil {
		return ErrEngineNotReady
	}

	acct, err := e.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return wrapStoreErr(err)
	}
	if acct.TOTPSecret == "" && acct.PendingTOTPSecret == "" {
		return nil
	}

	if acct.TOTPSecret != "" {
		ok, verr := e.totp.VerifyCode(acct.TOTPSecret, code, time.Now())
		if verr != nil {
			return verr
		}
		if !ok {
			e.metricInc(MetricMFAFailure)
			e.emitAudit(ctx, auditEventMFAFailure, false, acct.ID, "", ErrMFAInvalid, func() map[string]string {
				return map[string]string{"phase": "disable"}
			})
			return ErrMFAInvalid
		}
	}

	if err := e.accounts.ClearTOTP(ctx, acct.ID); err != nil {
		return wrapStoreErr(err)
	}

	e.metricInc(MetricMFADisabled)
	e.emitAudit(ctx, auditEventTOTPDisabled, true, acct.ID, "", nil, nil)
	return nil
}

func (e *Engine) consumeMFAToken(ctx context.Context, token string) (string, error) {
	accountID, err := e.tokens.Consume(ctx, token, tokens.PurposeMFA)
	if err != nil {
		if errors.Is(err, tokens.ErrTokenNotFound) {
			e.metricInc(MetricTokenRejected)
			e.emitAudit(ctx, auditEventMFAFailure, false, "", "", ErrTokenInvalid, nil)
			return "", ErrTokenInvalid
		}
		return "", wrapStoreErr(err)
	}
	e.metricInc(MetricTokenConsumed)
	return accountID, nil
}
