package authcore

import (
	"context"

	"github.com/polylab/authcore/logging"
)

// Mailer delivers verification and reset links to account holders. The token
// is the plaintext single-use token; implementations embed it in whatever
// link format the frontend expects.
type Mailer interface {
	SendVerification(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

// NopMailer discards all mail. Useful in tests.
type NopMailer struct{}

func (NopMailer) SendVerification(context.Context, string, string) error  { return nil }
func (NopMailer) SendPasswordReset(context.Context, string, string) error { return nil }

// LogMailer writes outgoing mail to the structured log instead of sending it.
// Intended for development setups without an SMTP relay; never use it in
// production, as it exposes live tokens in the log stream.
type LogMailer struct {
	Log logging.Logger
}

func (m LogMailer) SendVerification(ctx context.Context, email, token string) error {
	m.Log.Info(ctx, "verification mail", "email", email, "token", token)
	return nil
}

func (m LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	m.Log.Info(ctx, "password reset mail", "email", email, "token", token)
	return nil
}
