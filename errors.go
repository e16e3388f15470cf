package authcore

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated is returned when no valid session accompanies a request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when the caller's role does not permit the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials covers unknown email, wrong password, and
	// deactivated accounts alike so that login failures are indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailNotVerified is returned when login is attempted before the
	// account's email address has been verified.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrMFARequired signals that password authentication succeeded but a
	// TOTP code must still be presented.
	ErrMFARequired = errors.New("mfa required")
	// ErrMFAInvalid is returned for a wrong or replayed TOTP code.
	ErrMFAInvalid = errors.New("invalid mfa code")
	// ErrMFANotPending is returned when enrollment confirmation arrives
	// without a pending secret to promote.
	ErrMFANotPending = errors.New("no mfa enrollment pending")
	// ErrWeakPassword is returned when a password fails the policy.
	ErrWeakPassword = errors.New("password does not meet policy")
	// ErrInvalidEmail is returned when an email address fails parsing.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrTokenInvalid covers unknown, expired, consumed, and wrong-purpose
	// tokens alike.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTooManyRequests is returned when the client's rate-limit window is full.
	ErrTooManyRequests = errors.New("too many requests")
	// ErrCSRF is returned when the double-submit CSRF check fails.
	ErrCSRF = errors.New("csrf token mismatch")
	// ErrNotFound is returned when a referenced account does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when signup reuses a registered address.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrStoreUnavailable wraps backend faults from Redis or the account store.
	ErrStoreUnavailable = errors.New("backend unavailable")
	// ErrEngineNotReady is returned when a method is called on an engine that
	// was not built through the Builder.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// Kind returns a stable machine-readable identifier for an engine error,
// used in audit records and API error payloads. Unknown errors report
// "internal_error"; nil reports "".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrEmailNotVerified):
		return "email_not_verified"
	case errors.Is(err, ErrTooManyRequests):
		return "rate_limited"
	case errors.Is(err, ErrTokenInvalid):
		return "invalid_token"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrMFARequired):
		return "mfa_required"
	case errors.Is(err, ErrMFAInvalid), errors.Is(err, ErrMFANotPending):
		return "mfa_invalid"
	case errors.Is(err, ErrWeakPassword):
		return "password_policy"
	case errors.Is(err, ErrInvalidEmail):
		return "invalid_email"
	case errors.Is(err, ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, ErrCSRF):
		return "csrf_rejected"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrStoreUnavailable):
		return "backend_unavailable"
	default:
		return "internal_error"
	}
}

// HTTPStatus maps an engine error to the status code the HTTP layer should
// respond with. Unknown errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrEmailNotVerified), errors.Is(err, ErrCSRF):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrMFARequired), errors.Is(err, ErrMFAInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, ErrWeakPassword), errors.Is(err, ErrMFANotPending), errors.Is(err, ErrInvalidEmail):
		return http.StatusBadRequest
	case errors.Is(err, ErrTokenInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
