package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/polylab/authcore/session"
)

// Login authenticates email and password, plus a TOTP code when the account
// has the second factor enrolled. Unknown addresses, wrong passwords, and
// deactivated accounts all fail with ErrInvalidCredentials so that the
// response does not reveal which one it was. An MFA-enabled account with an
// empty code fails with ErrMFARequired; callers prompt for the code and
// repeat the call.
func (e *Engine) Login(ctx context.Context, email, plaintext, totpCode string) (*LoginResult, error) {
	if e == nil || e.accounts == nil {
		return nil, ErrEngineNotReady
	}

	email = normalizeEmail(email)

	acct, err := e.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Burn a hash verification so unknown addresses cost the
			// same as wrong passwords.
			_, _ = e.hasher.Verify(plaintext, e.dummyHash)
			return nil, e.failLogin(ctx, "", email)
		}
		return nil, wrapStoreErr(err)
	}

	ok, err := e.hasher.Verify(plaintext, acct.PasswordHash)
	if err != nil || !ok {
		return nil, e.failLogin(ctx, acct.ID, email)
	}
	if !acct.Active {
		return nil, e.failLogin(ctx, acct.ID, email)
	}

	if upgrade, _ := e.hasher.NeedsUpgrade(acct.PasswordHash); upgrade {
		if newHash, herr := e.hasher.Hash(plaintext); herr == nil {
			if uerr := e.accounts.UpdatePasswordHash(ctx, acct.ID, newHash); uerr != nil {
				e.log.Warn(ctx, "hash upgrade failed", "account_id", acct.ID, "error", uerr)
			}
		}
	}

	if !acct.EmailVerified {
		e.metricInc(MetricLoginUnverified)
		e.emitAudit(ctx, auditEventLoginFailure, false, acct.ID, "", ErrEmailNotVerified, nil)
		return nil, ErrEmailNotVerified
	}

	if acct.MFAActive() {
		if totpCode == "" {
			e.metricInc(MetricMFARequired)
			e.emitAudit(ctx, auditEventMFARequired, false, acct.ID, "", ErrMFARequired, nil)
			return nil, ErrMFARequired
		}
		ok, verr := e.totp.VerifyCode(acct.TOTPSecret, totpCode, time.Now())
		if verr != nil {
			return nil, verr
		}
		if !ok {
			e.metricInc(MetricMFAFailure)
			e.emitAudit(ctx, auditEventMFAFailure, false, acct.ID, "", ErrMFAInvalid, func() map[string]string {
				return map[string]string{"phase": "login"}
			})
			return nil, ErrMFAInvalid
		}
		e.metricInc(MetricMFASuccess)
		return e.openSession(ctx, acct, auditEventMFASuccess)
	}

	return e.openSession(ctx, acct, auditEventLoginSuccess)
}

func (e *Engine) failLogin(ctx context.Context, accountID, email string) error {
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLoginFailure, false, accountID, "", ErrInvalidCredentials, func() map[string]string {
		return map[string]string{"email": email}
	})
	return ErrInvalidCredentials
}

// openSession creates and persists a fresh session for the account and
// opportunistically prunes its expired ones.
func (e *Engine) openSession(ctx context.Context, acct *Account, event string) (*LoginResult, error) {
	now := time.Now().UTC()
	sess := &session.Session{
		ID:        uuid.NewString(),
		AccountID: acct.ID,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(e.config.Session.TTL).Unix(),
	}

	if err := e.sessions.Save(ctx, sess, e.config.Session.TTL); err != nil {
		return nil, wrapStoreErr(err)
	}
	if err := e.sessions.PruneExpired(ctx, acct.ID); err != nil {
		e.log.Warn(ctx, "session prune failed", "account_id", acct.ID, "error", err)
	}

	e.metricInc(MetricSessionCreated)
	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, event, true, acct.ID, sess.ID, nil, nil)
	e.log.Info(ctx, "session opened", "account_id", acct.ID, "session_id", sess.ID)

	return &LoginResult{
		AccountID: acct.ID,
		SessionID: sess.ID,
		ExpiresAt: time.Unix(sess.ExpiresAt, 0).UTC(),
	}, nil
}
