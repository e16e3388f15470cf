package authcore

import (
	"context"
	"errors"
	"testing"
)

func TestSetRole(t *testing.T) {
	engine, accounts, _ := newTestEngine(t, testConfig())
	ctx := context.Background()
	accountID := signupVerified(t, engine)

	adminID, err := engine.EnsureAdmin(ctx, "admin@example.edu", testPassword)
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	if err := engine.SetRole(ctx, adminID, accountID, RoleInstructor); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	acct, err := accounts.GetByID(ctx, accountID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if acct.Role != RoleInstructor {
		t.Errorf("role = %s, want instructor", acct.Role)
	}

	if err := engine.SetRole(ctx, adminID, accountID, Role("janitor")); !errors.Is(err, ErrForbidden) {
		t.Errorf("unknown role: err = %v", err)
	}
	if err := engine.SetRole(ctx, adminID, "missing", RoleStudent); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown account: err = %v", err)
	}
}

func TestSetActiveRevokesSessions(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()
	accountID := signupVerified(t, engine)

	res, err := engine.Login(ctx, testEmail, testPassword, "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := engine.SetActive(ctx, "admin", accountID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if _, _, err := engine.Resolve(ctx, res.SessionID); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("session after deactivation: err = %v", err)
	}
	if _, err := engine.Login(ctx, testEmail, testPassword, ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("login while deactivated: err = %v", err)
	}

	if err := engine.SetActive(ctx, "admin", accountID, true); err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if _, err := engine.Login(ctx, testEmail, testPassword, ""); err != nil {
		t.Errorf("login after reactivation: %v", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	engine, accounts, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	id, err := engine.EnsureAdmin(ctx, "admin@example.edu", testPassword)
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	acct, err := accounts.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if acct.Role != RoleAdmin || !acct.EmailVerified || !acct.Active {
		t.Errorf("admin state = %+v", acct)
	}

	// The bootstrap account can log in without a verification round trip.
	if _, err := engine.Login(ctx, "admin@example.edu", testPassword, ""); err != nil {
		t.Errorf("admin login: %v", err)
	}

	// A second call is idempotent and leaves the account untouched.
	again, err := engine.EnsureAdmin(ctx, "admin@example.edu", "Different-Secret-9!")
	if err != nil {
		t.Fatalf("second EnsureAdmin: %v", err)
	}
	if again != id {
		t.Errorf("second call returned %s, want %s", again, id)
	}
	if _, err := engine.Login(ctx, "admin@example.edu", testPassword, ""); err != nil {
		t.Errorf("original password after re-ensure: %v", err)
	}

	if _, err := engine.EnsureAdmin(ctx, "admin2@example.edu", "weak"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("weak bootstrap password: err = %v", err)
	}
}
