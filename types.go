package authcore

import (
	"context"
	"time"
)

// Role is the coarse authorization level attached to every account.
type Role string

const (
	// RoleStudent is the default role assigned at signup.
	RoleStudent Role = "student"
	// RoleInstructor can manage course material.
	RoleInstructor Role = "instructor"
	// RoleAdmin can manage other accounts.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// Account is the full account record exchanged with [AccountStore].
// PasswordHash is a PHC-format argon2id string. TOTPSecret and
// PendingTOTPSecret hold base32-encoded secrets; a pending secret is written
// at enrollment start and promoted only after the user proves possession.
type Account struct {
	ID            string
	Email         string
	PasswordHash  string
	Role          Role
	EmailVerified bool
	Active        bool

	TOTPEnabled       bool
	TOTPSecret        string
	PendingTOTPSecret string

	CreatedAt time.Time
}

// MFAActive reports whether TOTP is enrolled and confirmed for the account.
func (a *Account) MFAActive() bool {
	return a.TOTPEnabled && a.TOTPSecret != ""
}

// AccountStore is the interface callers implement to integrate authcore with
// their account database. All methods must be safe for concurrent use.
//
// Lookup methods return [ErrNotFound] (or an error wrapping it) when no
// account matches; Create returns [ErrDuplicateEmail] when the address is
// already registered. Emails are exact-match keys; the store never folds
// case.
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, acct *Account) error
	UpdatePasswordHash(ctx context.Context, id, newHash string) error
	MarkEmailVerified(ctx context.Context, id string) error
	SetPendingTOTPSecret(ctx context.Context, id, secret string) error
	// PromoteTOTPSecret moves the pending secret into the active slot and
	// sets TOTPEnabled. It fails with ErrNotFound semantics when no pending
	// secret exists.
	PromoteTOTPSecret(ctx context.Context, id string) error
	ClearTOTP(ctx context.Context, id string) error
	SetRole(ctx context.Context, id string, role Role) error
	SetActive(ctx context.Context, id string, active bool) error
}

// SignupResult is returned by [Engine.Signup]. VerifyToken is the single-use
// email-verification token that was handed to the Mailer; it is surfaced so
// callers running without real mail delivery can complete the flow.
type SignupResult struct {
	AccountID   string
	VerifyToken string
}

// LoginResult is returned by [Engine.Login] on success.
type LoginResult struct {
	AccountID string
	SessionID string
	ExpiresAt time.Time
}

// TOTPSetup holds the base32 secret and otpauth:// URI returned by
// [Engine.EnrollTOTP], plus the bridging token that must accompany the
// confirmation code.
type TOTPSetup struct {
	Secret       string
	URI          string
	EnrollToken  string
	TokenExpires time.Time
}
