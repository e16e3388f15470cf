package httpapi

import (
	"net/http"
	"strings"
	"time"

	authcore "github.com/polylab/authcore"
	"github.com/polylab/authcore/middleware"
)

type signupIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTP     string `json:"totp,omitempty"`
}

type resetIn struct {
	Email string `json:"email"`
}

type resetConfirmIn struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type mfaVerifyIn struct {
	MFAToken string `json:"mfa_token"`
	Code     string `json:"code"`
}

type mfaDisableIn struct {
	Code string `json:"code,omitempty"`
}

type adminRoleIn struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
}

func (a *API) handleCSRF(w http.ResponseWriter, r *http.Request) {
	token, err := a.guard.Issue(w)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"csrf": token})
}

func (a *API) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in signupIn
	if !decodeBody(w, r, &in) {
		return
	}

	if _, err := a.engine.Signup(r.Context(), in.Email, in.Password); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginIn
	if !decodeBody(w, r, &in) {
		return
	}

	res, err := a.engine.Login(r.Context(), in.Email, in.Password, in.TOTP)
	if err != nil {
		writeError(w, err)
		return
	}

	a.setSessionCookie(w, res.SessionID, int(a.cfg.Session.TTL.Seconds()))
	// A fresh CSRF token rides along so the frontend can mutate right away.
	if _, err := a.guard.Issue(w); err != nil {
		a.log.Warn(r.Context(), "csrf issue on login failed", "error", err)
	}
	writeOK(w)
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(a.cfg.Cookies.SessionName); err == nil && cookie.Value != "" {
		if err := a.engine.Logout(r.Context(), cookie.Value); err != nil {
			a.log.Warn(r.Context(), "logout failed", "error", err)
		}
	}
	a.clearSessionCookie(w)
	writeOK(w)
}

func (a *API) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" && r.Method == http.MethodPost {
		var in struct {
			Token string `json:"token"`
		}
		if !decodeBody(w, r, &in) {
			return
		}
		token = in.Token
	}
	if token == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "token required"})
		return
	}

	if err := a.engine.VerifyEmail(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}

	if r.Method == http.MethodGet && a.cfg.Security.FrontendOrigin != "" {
		target := strings.TrimRight(a.cfg.Security.FrontendOrigin, "/") + "/verify?status=verified"
		http.Redirect(w, r, target, http.StatusTemporaryRedirect)
		return
	}
	writeOK(w)
}

// handleResetStart always answers 200 so the response does not reveal
// whether the address is registered.
func (a *API) handleResetStart(w http.ResponseWriter, r *http.Request) {
	var in resetIn
	if !decodeBody(w, r, &in) {
		return
	}

	if err := a.engine.RequestPasswordReset(r.Context(), in.Email); err != nil {
		if isUnavailable(err) {
			writeError(w, err)
			return
		}
		a.log.Warn(r.Context(), "reset start failed", "error", err)
	}
	writeOK(w)
}

// handleResetConfirmRedirect serves the mail link: it forwards the browser
// to the frontend's reset form, keeping the token out of this service's
// rendered output.
func (a *API) handleResetConfirmRedirect(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "token required"})
		return
	}
	if a.cfg.Security.FrontendOrigin == "" {
		writeJSON(w, http.StatusOK, map[string]string{
			"detail": "submit the token and new password to POST /auth/reset/confirm",
		})
		return
	}
	target := strings.TrimRight(a.cfg.Security.FrontendOrigin, "/") + "/reset/confirm?token=" + token
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

func (a *API) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	var in resetConfirmIn
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Token == "" || in.NewPassword == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "token and new_password are required"})
		return
	}

	if err := a.engine.ConfirmPasswordReset(r.Context(), in.Token, in.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (a *API) handleMFAEnroll(w http.ResponseWriter, r *http.Request) {
	acct, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		writeError(w, authcore.ErrUnauthenticated)
		return
	}

	setup, err := a.engine.EnrollTOTP(r.Context(), acct.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"secret":    setup.Secret,
		"otpauth":   setup.URI,
		"mfa_token": setup.EnrollToken,
	})
}

func (a *API) handleMFAVerify(w http.ResponseWriter, r *http.Request) {
	var in mfaVerifyIn
	if !decodeBody(w, r, &in) {
		return
	}
	if in.MFAToken == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "mfa token required"})
		return
	}

	if err := a.engine.ConfirmTOTPEnrollment(r.Context(), in.MFAToken, in.Code); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (a *API) handleMFADisable(w http.ResponseWriter, r *http.Request) {
	acct, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		writeError(w, authcore.ErrUnauthenticated)
		return
	}

	var in mfaDisableIn
	if !decodeBody(w, r, &in) {
		return
	}

	if err := a.engine.DisableTOTP(r.Context(), acct.ID, in.Code); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	acct, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		writeError(w, authcore.ErrUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":             acct.ID,
		"email":          acct.Email,
		"role":           string(acct.Role),
		"email_verified": acct.EmailVerified,
		"totp_enabled":   acct.TOTPEnabled,
		"created_at":     acct.CreatedAt.Format(time.RFC3339),
	})
}

func (a *API) handleAdminRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		writeError(w, authcore.ErrUnauthenticated)
		return
	}

	var in adminRoleIn
	if !decodeBody(w, r, &in) {
		return
	}
	role := authcore.Role(in.Role)
	if !role.Valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid role"})
		return
	}

	if err := a.engine.SetRole(r.Context(), actor.ID, in.AccountID, role); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}
