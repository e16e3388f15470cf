package httpapi

import (
	"net/http"

	authcore "github.com/polylab/authcore"
	"github.com/polylab/authcore/csrf"
	"github.com/polylab/authcore/logging"
	"github.com/polylab/authcore/middleware"
)

// API serves the /auth route group.
type API struct {
	engine *authcore.Engine
	guard  *csrf.Guard
	cfg    authcore.Config
	log    logging.Logger
}

// New creates the API around a built engine.
func New(engine *authcore.Engine, log logging.Logger) *API {
	if log == nil {
		log = logging.Nop{}
	}
	cfg := engine.Config()
	return &API{
		engine: engine,
		guard:  csrf.New(cfg.Cookies.CSRFName, cfg.Cookies.Path, !cfg.Security.Debug),
		cfg:    cfg,
		log:    log,
	}
}

// csrfExempt lists routes a browser can reach before it holds a CSRF token.
// Session establishment and termination are exempt: login and signup are
// self-authenticating, and logout must work even when the CSRF cookie was
// never fetched or has been lost. The token endpoints are gated by the
// single-use token itself.
func csrfExempt() []string {
	return []string{
		"/auth/csrf",
		"/auth/signup",
		"/auth/login",
		"/auth/logout",
		"/auth/verify-email",
		"/auth/reset",
		"/auth/reset/confirm",
		"/auth/mfa/totp/verify",
	}
}

// Handler returns the fully wired /auth handler: security headers, rate
// limit, CSRF, then routing.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	a.Register(mux)

	var h http.Handler = mux
	h = a.guard.Middleware(csrfExempt(), func(r *http.Request) {
		a.engine.RecordCSRFFailure(r.Context())
	})(h)
	h = middleware.RateLimit(a.engine)(h)
	h = middleware.SecurityHeaders(middleware.HeadersConfig{
		EnableHSTS:            a.cfg.Security.EnableHSTS && !a.cfg.Security.Debug,
		ContentSecurityPolicy: contentSecurityPolicy(a.cfg.Security.FrontendOrigin),
	})(h)
	return h
}

// contentSecurityPolicy admits the configured frontend origin for API calls
// while keeping everything else same-origin.
func contentSecurityPolicy(frontendOrigin string) string {
	if frontendOrigin == "" {
		return ""
	}
	return "default-src 'self'; connect-src 'self' " + frontendOrigin + "; frame-ancestors 'none'"
}

// Register mounts the individual routes on mux without any gate chain.
// Callers that need to interleave their own middleware use this directly.
func (a *API) Register(mux *http.ServeMux) {
	requireAccount := middleware.RequireAccount(a.engine, a.cfg.Cookies.SessionName)
	requireAdmin := middleware.RequireRoles(authcore.RoleAdmin)

	mux.HandleFunc("GET /auth/csrf", a.handleCSRF)
	mux.HandleFunc("POST /auth/signup", a.handleSignup)
	mux.HandleFunc("POST /auth/login", a.handleLogin)
	mux.HandleFunc("POST /auth/logout", a.handleLogout)
	mux.HandleFunc("GET /auth/verify-email", a.handleVerifyEmail)
	mux.HandleFunc("POST /auth/verify-email", a.handleVerifyEmail)
	mux.HandleFunc("POST /auth/reset", a.handleResetStart)
	mux.HandleFunc("GET /auth/reset/confirm", a.handleResetConfirmRedirect)
	mux.HandleFunc("POST /auth/reset/confirm", a.handleResetConfirm)
	mux.HandleFunc("POST /auth/mfa/totp/verify", a.handleMFAVerify)

	mux.Handle("POST /auth/mfa/totp/enroll", requireAccount(http.HandlerFunc(a.handleMFAEnroll)))
	mux.Handle("POST /auth/mfa/totp/disable", requireAccount(http.HandlerFunc(a.handleMFADisable)))
	mux.Handle("GET /auth/me", requireAccount(http.HandlerFunc(a.handleMe)))
	mux.Handle("POST /auth/admin/role", requireAccount(requireAdmin(http.HandlerFunc(a.handleAdminRole))))
}

func (a *API) setSessionCookie(w http.ResponseWriter, sessionID string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.Cookies.SessionName,
		Value:    sessionID,
		Path:     a.cfg.Cookies.Path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   !a.cfg.Security.Debug,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *API) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.Cookies.SessionName,
		Value:    "",
		Path:     a.cfg.Cookies.Path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !a.cfg.Security.Debug,
		SameSite: http.SameSiteLaxMode,
	})
}
