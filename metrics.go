package authcore

import (
	internalmetrics "github.com/polylab/authcore/internal/metrics"
)

// MetricID identifies a specific counter or histogram slot in the in-process
// metrics system.
type MetricID = internalmetrics.MetricID

const (
	MetricSignupSuccess       = internalmetrics.MetricSignupSuccess
	MetricSignupDuplicate     = internalmetrics.MetricSignupDuplicate
	MetricSignupWeakPassword  = internalmetrics.MetricSignupWeakPassword
	MetricLoginSuccess        = internalmetrics.MetricLoginSuccess
	MetricLoginFailure        = internalmetrics.MetricLoginFailure
	MetricLoginUnverified     = internalmetrics.MetricLoginUnverified
	MetricMFARequired         = internalmetrics.MetricMFARequired
	MetricMFAFailure          = internalmetrics.MetricMFAFailure
	MetricMFASuccess          = internalmetrics.MetricMFASuccess
	MetricSessionCreated      = internalmetrics.MetricSessionCreated
	MetricSessionDestroyed    = internalmetrics.MetricSessionDestroyed
	MetricSessionExpired      = internalmetrics.MetricSessionExpired
	MetricTokenIssued         = internalmetrics.MetricTokenIssued
	MetricTokenConsumed       = internalmetrics.MetricTokenConsumed
	MetricTokenRejected       = internalmetrics.MetricTokenRejected
	MetricVerificationSuccess = internalmetrics.MetricVerificationSuccess
	MetricVerificationFailure = internalmetrics.MetricVerificationFailure
	MetricResetRequested      = internalmetrics.MetricResetRequested
	MetricResetSuccess        = internalmetrics.MetricResetSuccess
	MetricResetFailure        = internalmetrics.MetricResetFailure
	MetricEnrollStarted       = internalmetrics.MetricEnrollStarted
	MetricEnrollCompleted     = internalmetrics.MetricEnrollCompleted
	MetricMFADisabled         = internalmetrics.MetricMFADisabled
	MetricRateLimited         = internalmetrics.MetricRateLimited
	MetricCSRFRejected        = internalmetrics.MetricCSRFRejected
	MetricResolveLatency      = internalmetrics.MetricResolveLatency
)

// Metrics holds atomic counters and an optional latency histogram.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] instance configured by cfg. When Enabled is
// false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
