package internaldefs

import (
	authcore "github.com/polylab/authcore"
)

// CounterDef binds a metric ID to its exported name.
type CounterDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// HistogramDef binds a histogram metric ID to its exported name.
type HistogramDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: authcore.MetricSignupSuccess, Name: "authcore_signup_success_total", Help: "Successful signups."},
	{ID: authcore.MetricSignupDuplicate, Name: "authcore_signup_duplicate_total", Help: "Signups rejected as duplicate."},
	{ID: authcore.MetricSignupWeakPassword, Name: "authcore_signup_weak_password_total", Help: "Signups rejected by password policy."},
	{ID: authcore.MetricLoginSuccess, Name: "authcore_login_success_total", Help: "Successful login attempts."},
	{ID: authcore.MetricLoginFailure, Name: "authcore_login_failure_total", Help: "Failed login attempts."},
	{ID: authcore.MetricLoginUnverified, Name: "authcore_login_unverified_total", Help: "Logins rejected for unverified email."},
	{ID: authcore.MetricMFARequired, Name: "authcore_mfa_required_total", Help: "Logins answered with an MFA challenge."},
	{ID: authcore.MetricMFAFailure, Name: "authcore_mfa_failure_total", Help: "Failed TOTP verifications."},
	{ID: authcore.MetricMFASuccess, Name: "authcore_mfa_success_total", Help: "Successful TOTP verifications."},
	{ID: authcore.MetricSessionCreated, Name: "authcore_session_created_total", Help: "Created sessions."},
	{ID: authcore.MetricSessionDestroyed, Name: "authcore_session_destroyed_total", Help: "Destroyed sessions."},
	{ID: authcore.MetricSessionExpired, Name: "authcore_session_expired_total", Help: "Sessions rejected as expired on resolve."},
	{ID: authcore.MetricTokenIssued, Name: "authcore_token_issued_total", Help: "Issued single-use tokens."},
	{ID: authcore.MetricTokenConsumed, Name: "authcore_token_consumed_total", Help: "Consumed single-use tokens."},
	{ID: authcore.MetricTokenRejected, Name: "authcore_token_rejected_total", Help: "Rejected single-use tokens."},
	{ID: authcore.MetricVerificationSuccess, Name: "authcore_email_verification_success_total", Help: "Successful email verifications."},
	{ID: authcore.MetricVerificationFailure, Name: "authcore_email_verification_failure_total", Help: "Failed email verifications."},
	{ID: authcore.MetricResetRequested, Name: "authcore_password_reset_request_total", Help: "Password reset requests."},
	{ID: authcore.MetricResetSuccess, Name: "authcore_password_reset_success_total", Help: "Successful password resets."},
	{ID: authcore.MetricResetFailure, Name: "authcore_password_reset_failure_total", Help: "Failed password reset confirmations."},
	{ID: authcore.MetricEnrollStarted, Name: "authcore_totp_enroll_started_total", Help: "Started TOTP enrollments."},
	{ID: authcore.MetricEnrollCompleted, Name: "authcore_totp_enroll_completed_total", Help: "Completed TOTP enrollments."},
	{ID: authcore.MetricMFADisabled, Name: "authcore_totp_disabled_total", Help: "TOTP disable operations."},
	{ID: authcore.MetricRateLimited, Name: "authcore_rate_limited_total", Help: "Requests denied by the rate limiter."},
	{ID: authcore.MetricCSRFRejected, Name: "authcore_csrf_rejected_total", Help: "Requests denied by the CSRF guard."},
}

var HistogramDefs = []HistogramDef{
	{ID: authcore.MetricResolveLatency, Name: "authcore_resolve_latency_seconds", Help: "Session resolve latency histogram."},
}

var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed width.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
