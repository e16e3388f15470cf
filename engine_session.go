package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/polylab/authcore/session"
)

// Resolve is the hot path: it maps a session cookie value to the owning
// account. Expired and unknown sessions, and sessions whose account has been
// deactivated, fail with ErrUnauthenticated.
func (e *Engine) Resolve(ctx context.Context, sessionID string) (*Account, *session.Session, error) {
	if e == nil || e.sessions == nil {
		return nil, nil, ErrEngineNotReady
	}
	if sessionID == "" {
		return nil, nil, ErrUnauthenticated
	}

	start := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.Observe(MetricResolveLatency, time.Since(start))
		}
	}()

	sess, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSessionExpired):
			e.metricInc(MetricSessionExpired)
			e.emitAudit(ctx, auditEventSessionExpired, false, "", sessionID, ErrUnauthenticated, nil)
			return nil, nil, ErrUnauthenticated
		case errors.Is(err, session.ErrSessionNotFound):
			return nil, nil, ErrUnauthenticated
		default:
			return nil, nil, wrapStoreErr(err)
		}
	}

	acct, err := e.accounts.GetByID(ctx, sess.AccountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Orphaned session; the account is gone.
			_ = e.sessions.Delete(ctx, sessionID)
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, wrapStoreErr(err)
	}
	if !acct.Active {
		_ = e.sessions.Delete(ctx, sessionID)
		return nil, nil, ErrUnauthenticated
	}

	return acct, sess, nil
}

// Logout destroys the session. Logging out an already-dead session succeeds.
func (e *Engine) Logout(ctx context.Context, sessionID string) error {
	if e == nil || e.sessions == nil {
		return ErrEngineNotReady
	}
	if sessionID == "" {
		return nil
	}

	if err := e.sessions.Delete(ctx, sessionID); err != nil {
		return wrapStoreErr(err)
	}

	e.metricInc(MetricSessionDestroyed)
	e.emitAudit(ctx, auditEventLogout, true, "", sessionID, nil, nil)
	return nil
}

// RevokeSessions destroys every live session for the account. Used after
// password resets and by administrative deactivation.
func (e *Engine) RevokeSessions(ctx context.Context, accountID string) error {
	if e == nil || e.sessions == nil {
		return ErrEngineNotReady
	}
	if err := e.sessions.RevokeAll(ctx, accountID); err != nil {
		return wrapStoreErr(err)
	}
	e.metricInc(MetricSessionDestroyed)
	return nil
}
