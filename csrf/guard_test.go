package csrf

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func issueToken(t *testing.T, g *Guard) (string, *http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	token, err := g.Issue(rec)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	return token, cookies[0]
}

func TestIssueSetsReadableCookie(t *testing.T) {
	g := New("csrf_token", "/", false)
	token, cookie := issueToken(t, g)

	if cookie.Name != "csrf_token" {
		t.Errorf("cookie name = %q", cookie.Name)
	}
	if cookie.Value != token {
		t.Errorf("cookie value does not match returned token")
	}
	if cookie.HttpOnly {
		t.Error("csrf cookie must not be HttpOnly")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", cookie.SameSite)
	}
}

func TestCheckSafeMethodsPass(t *testing.T) {
	g := New("csrf_token", "/", false)
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		r := httptest.NewRequest(method, "/x", nil)
		if err := g.Check(r); err != nil {
			t.Errorf("%s: err = %v, want nil", method, err)
		}
	}
}

func TestCheckMatchingPair(t *testing.T) {
	g := New("csrf_token", "/", false)
	token, cookie := issueToken(t, g)

	r := httptest.NewRequest(http.MethodPost, "/x", nil)
	r.AddCookie(cookie)
	r.Header.Set(HeaderName, token)

	if err := g.Check(r); err != nil {
		t.Errorf("Check: %v", err)
	}
}

func TestCheckRejections(t *testing.T) {
	g := New("csrf_token", "/", false)
	token, cookie := issueToken(t, g)

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"missing cookie", func(r *http.Request) {
			r.Header.Set(HeaderName, token)
		}},
		{"missing header", func(r *http.Request) {
			r.AddCookie(cookie)
		}},
		{"mismatched header", func(r *http.Request) {
			r.AddCookie(cookie)
			r.Header.Set(HeaderName, "not-the-token")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/x", nil)
			tt.setup(r)
			if err := g.Check(r); !errors.Is(err, ErrMismatch) {
				t.Errorf("err = %v, want ErrMismatch", err)
			}
		})
	}
}

func TestMiddlewareExemptAndReject(t *testing.T) {
	g := New("csrf_token", "/", false)

	var rejected int
	handler := g.Middleware([]string{"/auth/login"}, func(*http.Request) { rejected++ })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

	// Exempt path passes without any token.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("exempt path status = %d", rec.Code)
	}

	// Protected path without tokens is rejected and observed.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("protected path status = %d, want 403", rec.Code)
	}
	if rejected != 1 {
		t.Errorf("onReject called %d times, want 1", rejected)
	}
}
