package authcore

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/polylab/authcore/internal/tokens"
)

// Signup registers a new student account. The email is stored verbatim
// apart from trimmed whitespace, the password checked against the policy
// and hashed with argon2id, and a single-use verification token is issued
// and handed to the Mailer. The account cannot log in until the token is
// redeemed.
func (e *Engine) Signup(ctx context.Context, email, plaintext string) (*SignupResult, error) {
	if e == nil || e.accounts == nil {
		return nil, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		e.emitAudit(ctx, auditEventSignup, false, "", "", ErrInvalidEmail, nil)
		return nil, ErrInvalidEmail
	}

	if !e.policy.Ok(plaintext) {
		e.metricInc(MetricSignupWeakPassword)
		e.emitAudit(ctx, auditEventSignup, false, "", "", ErrWeakPassword, func() map[string]string {
			return map[string]string{"email": email}
		})
		return nil, ErrWeakPassword
	}

	hash, err := e.hasher.Hash(plaintext)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	acct := &Account{
		ID:            uuid.NewString(),
		Email:         email,
		PasswordHash:  hash,
		Role:          RoleStudent,
		EmailVerified: false,
		Active:        true,
		CreatedAt:     time.Now().UTC(),
	}

	if err := e.accounts.Create(ctx, acct); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			e.metricInc(MetricSignupDuplicate)
			e.emitAudit(ctx, auditEventSignup, false, "", "", ErrDuplicateEmail, func() map[string]string {
				return map[string]string{"email": email}
			})
			return nil, ErrDuplicateEmail
		}
		return nil, wrapStoreErr(err)
	}

	token, err := e.tokens.Issue(ctx, acct.ID, tokens.PurposeVerify, e.config.Tokens.VerifyTTL)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	e.metricInc(MetricTokenIssued)

	if err := e.mailer.SendVerification(ctx, email, token); err != nil {
		// Account exists either way; the user can request a fresh token.
		e.log.Warn(ctx, "verification mail failed", "email", email, "error", err)
	}

	e.metricInc(MetricSignupSuccess)
	e.emitAudit(ctx, auditEventSignup, true, acct.ID, "", nil, func() map[string]string {
		return map[string]string{"email": email}
	})
	e.log.Info(ctx, "account created", "account_id", acct.ID)

	return &SignupResult{
		AccountID:   acct.ID,
		VerifyToken: token,
	}, nil
}

// normalizeEmail trims surrounding whitespace only. The address itself is a
// case-sensitive key, stored and matched exactly as the user typed it.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
