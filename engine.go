package authcore

import (
	"context"
	"errors"

	internalaudit "github.com/polylab/authcore/internal/audit"
	"github.com/polylab/authcore/internal/rate"
	"github.com/polylab/authcore/internal/tokens"
	"github.com/polylab/authcore/logging"
	"github.com/polylab/authcore/password"
	"github.com/polylab/authcore/session"
)

// Engine orchestrates every authentication flow. Construct it through
// [Builder.Build]; a zero Engine is not usable. All methods are safe for
// concurrent use.
type Engine struct {
	config   Config
	accounts AccountStore
	sessions *session.Store
	tokens   *tokens.Store
	limiter  *rate.Limiter
	audit    *internalaudit.Dispatcher
	metrics  *Metrics
	hasher   *password.Hasher
	policy   password.Policy
	// dummyHash equalizes login timing for unknown addresses.
	dummyHash string
	totp      *totpManager
	mailer    Mailer
	log       logging.Logger
}

// Config returns a copy of the engine's active configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// Close stops background workers and drains the audit queue.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.limiter != nil {
		e.limiter.Close()
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatch buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.SnapshotNow()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Admit applies the per-client rate limit for the given key, typically the
// client IP. It returns ErrTooManyRequests when the window is full; rejected
// calls still count toward the window.
func (e *Engine) Admit(ctx context.Context, clientKey string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if e.limiter == nil || clientKey == "" {
		return nil
	}
	if err := e.limiter.Allow(clientKey); err != nil {
		if errors.Is(err, rate.ErrLimited) {
			e.metricInc(MetricRateLimited)
			e.emitAudit(ctx, auditEventRateLimitTriggered, false, "", "", ErrTooManyRequests, func() map[string]string {
				return map[string]string{"key": clientKey}
			})
			return ErrTooManyRequests
		}
		return err
	}
	return nil
}

// RecordCSRFFailure counts and audits a rejected cross-site request. The
// CSRF check itself lives in the csrf package; the engine only observes it.
func (e *Engine) RecordCSRFFailure(ctx context.Context) {
	if e == nil {
		return
	}
	e.metricInc(MetricCSRFRejected)
	e.emitAudit(ctx, auditEventCSRFRejected, false, "", "", ErrCSRF, nil)
}
