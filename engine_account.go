package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SetRole changes an account's role. Callers are expected to have verified
// that the actor is an admin; the actorID is recorded in the audit trail.
func (e *Engine) SetRole(ctx context.Context, actorID, accountID string, role Role) error {
	if e == nil || e.accounts == nil {
		return ErrEngineNotReady
	}
	if !role.Valid() {
		return ErrForbidden
	}

	if err := e.accounts.SetRole(ctx, accountID, role); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return wrapStoreErr(err)
	}

	e.emitAudit(ctx, auditEventRoleChange, true, accountID, "", nil, func() map[string]string {
		return map[string]string{"actor": actorID, "role": string(role)}
	})
	e.log.Info(ctx, "role changed", "account_id", accountID, "role", string(role), "actor", actorID)
	return nil
}

// SetActive enables or disables an account. Deactivation revokes every live
// session so the change takes effect immediately.
func (e *Engine) SetActive(ctx context.Context, actorID, accountID string, active bool) error {
	if e == nil || e.accounts == nil {
		return ErrEngineNotReady
	}

	if err := e.accounts.SetActive(ctx, accountID, active); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return wrapStoreErr(err)
	}

	if !active {
		if err := e.sessions.RevokeAll(ctx, accountID); err != nil {
			e.log.Warn(ctx, "session revocation on deactivation failed", "account_id", accountID, "error", err)
		}
	}

	e.emitAudit(ctx, auditEventRoleChange, true, accountID, "", nil, func() map[string]string {
		status := "deactivated"
		if active {
			status = "activated"
		}
		return map[string]string{"actor": actorID, "status": status}
	})
	return nil
}

// EnsureAdmin creates a pre-verified admin account with the given credentials
// if the address is not registered yet. It backs the bootstrap path that
// seeds the first administrator from the environment; an existing account is
// left untouched.
func (e *Engine) EnsureAdmin(ctx context.Context, email, plaintext string) (string, error) {
	if e == nil || e.accounts == nil {
		return "", ErrEngineNotReady
	}

	email = normalizeEmail(email)

	if acct, err := e.accounts.GetByEmail(ctx, email); err == nil {
		return acct.ID, nil
	} else if !errors.Is(err, ErrNotFound) {
		return "", wrapStoreErr(err)
	}

	if !e.policy.Ok(plaintext) {
		return "", ErrWeakPassword
	}
	hash, err := e.hasher.Hash(plaintext)
	if err != nil {
		return "", err
	}

	acct := &Account{
		ID:            uuid.NewString(),
		Email:         email,
		PasswordHash:  hash,
		Role:          RoleAdmin,
		EmailVerified: true,
		Active:        true,
		CreatedAt:     time.Now().UTC(),
	}
	if err := e.accounts.Create(ctx, acct); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			// Lost a race with a concurrent bootstrap.
			if existing, gerr := e.accounts.GetByEmail(ctx, email); gerr == nil {
				return existing.ID, nil
			}
		}
		return "", wrapStoreErr(err)
	}

	e.log.Info(ctx, "admin account seeded", "account_id", acct.ID)
	return acct.ID, nil
}
