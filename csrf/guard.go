package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
)

// ErrMismatch is returned when the header token is missing or does not match
// the cookie.
var ErrMismatch = errors.New("csrf token mismatch")

// HeaderName is the request header state-changing calls must carry.
const HeaderName = "X-CSRF-Token"

const tokenBytes = 32

// Guard issues and checks double-submit tokens. The zero value is not
// usable; construct it with [New].
type Guard struct {
	cookieName string
	path       string
	secure     bool
}

// New creates a Guard writing tokens into the named cookie. The cookie is
// deliberately NOT HttpOnly: the frontend must read it to fill the header.
func New(cookieName, path string, secure bool) *Guard {
	if path == "" {
		path = "/"
	}
	return &Guard{
		cookieName: cookieName,
		path:       path,
		secure:     secure,
	}
}

// Issue generates a fresh token and sets it as a cookie on the response.
// The token is also returned so handlers can include it in the body.
func (g *Guard) Issue(w http.ResponseWriter) (string, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	http.SetCookie(w, &http.Cookie{
		Name:     g.cookieName,
		Value:    token,
		Path:     g.path,
		Secure:   g.secure,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// Check validates the double-submit pair on r. Safe methods always pass.
func (g *Guard) Check(r *http.Request) error {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return nil
	}

	cookie, err := r.Cookie(g.cookieName)
	if err != nil || cookie.Value == "" {
		return ErrMismatch
	}
	header := r.Header.Get(HeaderName)
	if header == "" {
		return ErrMismatch
	}
	if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) != 1 {
		return ErrMismatch
	}
	return nil
}

// Middleware enforces Check on every request except the listed exempt paths.
// onReject, when non-nil, observes each rejected request before the 403 is
// written.
func (g *Guard) Middleware(exempt []string, onReject func(r *http.Request)) func(http.Handler) http.Handler {
	exemptSet := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		exemptSet[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptSet[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			if err := g.Check(r); err != nil {
				if onReject != nil {
					onReject(r)
				}
				http.Error(w, "csrf token mismatch", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
