package memstore

import (
	"context"
	"errors"
	"testing"

	authcore "github.com/polylab/authcore"
)

func seed(t *testing.T, s *Store) *authcore.Account {
	t.Helper()
	acct := &authcore.Account{
		ID:     "acct-1",
		Email:  "Student@Example.EDU",
		Role:   authcore.RoleStudent,
		Active: true,
	}
	if err := s.Create(context.Background(), acct); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return acct
}

func TestCreateAndLookup(t *testing.T) {
	s := New()
	ctx := context.Background()
	seed(t, s)

	// The address is an exact-match key, stored verbatim.
	acct, err := s.GetByEmail(ctx, "Student@Example.EDU")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if acct.Email != "Student@Example.EDU" {
		t.Errorf("stored email = %q", acct.Email)
	}
	if _, err := s.GetByEmail(ctx, "student@example.edu"); !errors.Is(err, authcore.ErrNotFound) {
		t.Errorf("case-folded lookup: err = %v", err)
	}

	if _, err := s.GetByID(ctx, "acct-1"); err != nil {
		t.Errorf("GetByID: %v", err)
	}
	if _, err := s.GetByID(ctx, "missing"); !errors.Is(err, authcore.ErrNotFound) {
		t.Errorf("missing id: err = %v", err)
	}

	dup := &authcore.Account{ID: "acct-2", Email: "Student@Example.EDU"}
	if err := s.Create(ctx, dup); !errors.Is(err, authcore.ErrDuplicateEmail) {
		t.Errorf("duplicate email: err = %v", err)
	}

	// A differently cased address is a distinct account.
	other := &authcore.Account{ID: "acct-3", Email: "student@example.edu"}
	if err := s.Create(ctx, other); err != nil {
		t.Errorf("distinct-case create: err = %v", err)
	}
}

func TestReadsReturnCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	seed(t, s)

	acct, err := s.GetByID(ctx, "acct-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	acct.PasswordHash = "tampered"

	fresh, err := s.GetByID(ctx, "acct-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fresh.PasswordHash == "tampered" {
		t.Error("mutating a returned account reached stored state")
	}
}

func TestTOTPLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()
	seed(t, s)

	// Promotion without a pending secret has nothing to promote.
	if err := s.PromoteTOTPSecret(ctx, "acct-1"); !errors.Is(err, authcore.ErrNotFound) {
		t.Errorf("premature promote: err = %v", err)
	}

	if err := s.SetPendingTOTPSecret(ctx, "acct-1", "SECRET"); err != nil {
		t.Fatalf("SetPendingTOTPSecret: %v", err)
	}
	if err := s.PromoteTOTPSecret(ctx, "acct-1"); err != nil {
		t.Fatalf("PromoteTOTPSecret: %v", err)
	}

	acct, _ := s.GetByID(ctx, "acct-1")
	if !acct.TOTPEnabled || acct.TOTPSecret != "SECRET" || acct.PendingTOTPSecret != "" {
		t.Errorf("post-promotion state = %+v", acct)
	}

	if err := s.ClearTOTP(ctx, "acct-1"); err != nil {
		t.Fatalf("ClearTOTP: %v", err)
	}
	acct, _ = s.GetByID(ctx, "acct-1")
	if acct.TOTPEnabled || acct.TOTPSecret != "" {
		t.Errorf("post-clear state = %+v", acct)
	}
}

func TestUpdatesUnknownID(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.MarkEmailVerified(ctx, "missing"); !errors.Is(err, authcore.ErrNotFound) {
		t.Errorf("MarkEmailVerified: err = %v", err)
	}
	if err := s.SetRole(ctx, "missing", authcore.RoleAdmin); !errors.Is(err, authcore.ErrNotFound) {
		t.Errorf("SetRole: err = %v", err)
	}
}
