package authcore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// fakeAccounts is a minimal in-memory AccountStore for engine tests.
type fakeAccounts struct {
	mu      sync.Mutex
	byID    map[string]*Account
	byEmail map[string]string
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{
		byID:    make(map[string]*Account),
		byEmail: make(map[string]string),
	}
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *f.byID[id]
	return &cp, nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *acct
	return &cp, nil
}

func (f *fakeAccounts) Create(_ context.Context, acct *Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byEmail[acct.Email]; exists {
		return ErrDuplicateEmail
	}
	cp := *acct
	f.byID[cp.ID] = &cp
	f.byEmail[cp.Email] = cp.ID
	return nil
}

func (f *fakeAccounts) mutate(id string, fn func(*Account) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.byID[id]
	if !ok {
		return ErrNotFound
	}
	return fn(acct)
}

func (f *fakeAccounts) UpdatePasswordHash(_ context.Context, id, newHash string) error {
	return f.mutate(id, func(a *Account) error { a.PasswordHash = newHash; return nil })
}

func (f *fakeAccounts) MarkEmailVerified(_ context.Context, id string) error {
	return f.mutate(id, func(a *Account) error { a.EmailVerified = true; return nil })
}

func (f *fakeAccounts) SetPendingTOTPSecret(_ context.Context, id, secret string) error {
	return f.mutate(id, func(a *Account) error { a.PendingTOTPSecret = secret; return nil })
}

func (f *fakeAccounts) PromoteTOTPSecret(_ context.Context, id string) error {
	return f.mutate(id, func(a *Account) error {
		if a.PendingTOTPSecret == "" {
			return ErrNotFound
		}
		a.TOTPSecret = a.PendingTOTPSecret
		a.PendingTOTPSecret = ""
		a.TOTPEnabled = true
		return nil
	})
}

func (f *fakeAccounts) ClearTOTP(_ context.Context, id string) error {
	return f.mutate(id, func(a *Account) error {
		a.TOTPEnabled = false
		a.TOTPSecret = ""
		a.PendingTOTPSecret = ""
		return nil
	})
}

func (f *fakeAccounts) SetRole(_ context.Context, id string, role Role) error {
	return f.mutate(id, func(a *Account) error { a.Role = role; return nil })
}

func (f *fakeAccounts) SetActive(_ context.Context, id string, active bool) error {
	return f.mutate(id, func(a *Account) error { a.Active = active; return nil })
}

func testConfig() Config {
	cfg := DefaultConfig()
	// Cheap argon2 so the suite stays fast.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.RateLimit.Enabled = false
	cfg.Audit.Enabled = false
	cfg.Security.Debug = true
	return cfg
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *fakeAccounts, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	accounts := newFakeAccounts()
	engine, err := New().
		WithConfig(cfg).
		WithRedis(client).
		WithAccounts(accounts).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, accounts, mr
}

const (
	testEmail    = "student@example.edu"
	testPassword = "Sup3r-Secret!"
)

// signupVerified registers and verifies an account, returning its id.
func signupVerified(t *testing.T, e *Engine) string {
	t.Helper()
	ctx := context.Background()

	res, err := e.Signup(ctx, testEmail, testPassword)
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if err := e.VerifyEmail(ctx, res.VerifyToken); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	return res.AccountID
}

func TestSignupCreatesUnverifiedStudent(t *testing.T) {
	engine, accounts, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	res, err := engine.Signup(ctx, "  "+testEmail+" ", testPassword)
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if res.VerifyToken == "" {
		t.Fatal("expected a verification token")
	}

	// Surrounding whitespace is trimmed before the address is stored.
	acct, err := accounts.GetByEmail(ctx, testEmail)
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if acct.Role != RoleStudent {
		t.Errorf("role = %s, want student", acct.Role)
	}
	if acct.EmailVerified {
		t.Error("new account must not be pre-verified")
	}
	if acct.PasswordHash == testPassword || !strings.HasPrefix(acct.PasswordHash, "$argon2id$") {
		t.Errorf("password not stored as argon2id hash: %q", acct.PasswordHash)
	}
}

func TestSignupRejections(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	if _, err := engine.Signup(ctx, testEmail, "short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("weak password: err = %v", err)
	}
	if _, err := engine.Signup(ctx, "not-an-email", testPassword); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("malformed email: err = %v", err)
	}

	if _, err := engine.Signup(ctx, testEmail, testPassword); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := engine.Signup(ctx, testEmail, testPassword); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("duplicate email: err = %v", err)
	}
}

func TestEmailsAreCaseSensitive(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()
	signupVerified(t, engine)

	// A differently cased address is a distinct key, not a duplicate.
	res, err := engine.Signup(ctx, "Student@Example.EDU", testPassword)
	if err != nil {
		t.Fatalf("distinct-case signup: %v", err)
	}
	if err := engine.VerifyEmail(ctx, res.VerifyToken); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}

	// Each login resolves to its own account.
	sess, err := engine.Login(ctx, "Student@Example.EDU", testPassword, "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.AccountID != res.AccountID {
		t.Errorf("login resolved account %s, want %s", sess.AccountID, res.AccountID)
	}

	if _, err := engine.Login(ctx, "STUDENT@example.edu", testPassword, ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unregistered casing: err = %v", err)
	}
}

func TestLoginRequiresVerifiedEmail(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	if _, err := engine.Signup(ctx, testEmail, testPassword); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if _, err := engine.Login(ctx, testEmail, testPassword, ""); !errors.Is(err, ErrEmailNotVerified) {
		t.Errorf("err = %v, want ErrEmailNotVerified", err)
	}
}

func TestLoginUniformFailures(t *testing.T) {
	engine, accounts, _ := newTestEngine(t, testConfig())
	ctx := context.Background()
	accountID := signupVerified(t, engine)

	if _, err := engine.Login(ctx, "nobody@example.edu", testPassword, ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: err = %v", err)
	}
	if _, err := engine.Login(ctx, testEmail, "wrong-password", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v", err)
	}

	if err := accounts.SetActive(ctx, accountID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if _, err := engine.Login(ctx, testEmail, testPassword, ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("deactivated account: err = %v", err)
	}
}

func TestLoginResolveLogout(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()
	accountID := signupVerified(t, engine)

	res, err := engine.Login(ctx, testEmail, testPassword, "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.SessionID == "" {
		t.Fatal("expected a session id")
	}

	acct, sess, err := engine.Resolve(ctx, res.SessionID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if acct.ID != accountID || sess.AccountID != accountID {
		t.Errorf("resolved wrong account: %s / %s, want %s", acct.ID, sess.AccountID, accountID)
	}

	if err := engine.Logout(ctx, res.SessionID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := engine.Logout(ctx, res.SessionID); err != nil {
		t.Fatalf("repeat Logout: %v", err)
	}
	if _, _, err := engine.Resolve(ctx, res.SessionID); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("resolve after logout: err = %v", err)
	}
}

func TestResolveRejectsExpiredSession(t *testing.T) {
	cfg := testConfig()
	cfg.Session.TTL = time.Hour
	engine, _, mr := newTestEngine(t, cfg)
	ctx := context.Background()
	signupVerified(t, engine)

	res, err := engine.Login(ctx, testEmail, testPassword, "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	mr.FastForward(2 * time.Hour)

	if _, _, err := engine.Resolve(ctx, res.SessionID); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expired session: err = %v", err)
	}
}

func TestResolveRejectsDeactivatedAccount(t *testing.T) {
	engine, accounts, _ := newTestEngine(t, testConfig())
	ctx := context.Background()
	accountID := signupVerified(t, engine)

	res, err := engine.Login(ctx, testEmail, testPassword, "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := accounts.SetActive(ctx, accountID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if _, _, err := engine.Resolve(ctx, res.SessionID); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("deactivated account session: err = %v", err)
	}
}

func TestAdmitRateLimitWindow(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.Window = time.Minute
	cfg.RateLimit.Limit = 5
	engine, _, _ := newTestEngine(t, cfg)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := engine.Admit(ctx, "10.0.0.1"); err != nil {
			t.Fatalf("Admit %d: %v", i, err)
		}
	}
	if err := engine.Admit(ctx, "10.0.0.1"); !errors.Is(err, ErrTooManyRequests) {
		t.Errorf("over-limit: err = %v", err)
	}
	// An unrelated client is unaffected.
	if err := engine.Admit(ctx, "10.0.0.2"); err != nil {
		t.Errorf("other client: %v", err)
	}
}

func TestMetricsCountLogins(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()
	signupVerified(t, engine)

	if _, err := engine.Login(ctx, testEmail, testPassword, ""); err != nil {
		t.Fatalf("Login: %v", err)
	}
	_, _ = engine.Login(ctx, testEmail, "wrong", "")

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricLoginSuccess] != 1 {
		t.Errorf("login success counter = %d, want 1", snap.Counters[MetricLoginSuccess])
	}
	if snap.Counters[MetricLoginFailure] != 1 {
		t.Errorf("login failure counter = %d, want 1", snap.Counters[MetricLoginFailure])
	}
}
