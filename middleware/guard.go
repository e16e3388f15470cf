package middleware

import (
	"context"
	"net"
	"net/http"

	authcore "github.com/polylab/authcore"
	"github.com/polylab/authcore/session"
)

type accountContextKey struct{}
type sessionContextKey struct{}

// AccountFromContext returns the account injected by [RequireAccount].
func AccountFromContext(ctx context.Context) (*authcore.Account, bool) {
	acct, ok := ctx.Value(accountContextKey{}).(*authcore.Account)
	return acct, ok
}

// SessionFromContext returns the session injected by [RequireAccount].
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(*session.Session)
	return sess, ok
}

// RequireAccount reads the session cookie, resolves it through the engine,
// and injects the account and session into the request context. Requests
// without a live session get 401.
func RequireAccount(engine *authcore.Engine, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			sessionID := sessionCookie(r, cookieName)
			if sessionID == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			acct, sess, err := engine.Resolve(r.Context(), sessionID)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), accountContextKey{}, acct)
			ctx = context.WithValue(ctx, sessionContextKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles rejects authenticated requests whose account role is not in
// the allow list. It must be mounted inside [RequireAccount].
func RequireRoles(roles ...authcore.Role) func(http.Handler) http.Handler {
	allowed := make(map[authcore.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			acct, ok := AccountFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if _, ok := allowed[acct.Role]; !ok {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit applies the engine's per-client window keyed by remote IP before
// the request reaches the handler.
func RateLimit(engine *authcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			ctx := authcore.WithClientIP(r.Context(), ip)
			ctx = authcore.WithUserAgent(ctx, r.UserAgent())
			if err := engine.Admit(ctx, ip); err != nil {
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP extracts the remote IP, preferring X-Forwarded-For when present.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for i := 0; i < len(fwd); i++ {
			if fwd[i] == ',' {
				return fwd[:i]
			}
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func sessionCookie(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
