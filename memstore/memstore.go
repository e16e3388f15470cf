// Package memstore provides an in-memory authcore.AccountStore. It is the
// reference implementation used by the test suites and the development
// server; production deployments implement AccountStore against a real
// database instead.
package memstore

import (
	"context"
	"sync"

	authcore "github.com/polylab/authcore"
)

// Store keeps accounts in two maps guarded by one mutex. Reads return
// copies, so callers can never mutate stored state through a leaked pointer.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]*authcore.Account
	byEmail map[string]string
}

func New() *Store {
	return &Store{
		byID:    make(map[string]*authcore.Account),
		byEmail: make(map[string]string),
	}
}

func (s *Store) GetByEmail(_ context.Context, email string) (*authcore.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, authcore.ErrNotFound
	}
	return copyAccount(s.byID[id]), nil
}

func (s *Store) GetByID(_ context.Context, id string) (*authcore.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.byID[id]
	if !ok {
		return nil, authcore.ErrNotFound
	}
	return copyAccount(acct), nil
}

func (s *Store) Create(_ context.Context, acct *authcore.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Emails are exact-match keys, so "A@x.edu" and "a@x.edu" are distinct.
	if _, exists := s.byEmail[acct.Email]; exists {
		return authcore.ErrDuplicateEmail
	}

	stored := copyAccount(acct)
	s.byID[stored.ID] = stored
	s.byEmail[stored.Email] = stored.ID
	return nil
}

func (s *Store) UpdatePasswordHash(_ context.Context, id, newHash string) error {
	return s.update(id, func(a *authcore.Account) error {
		a.PasswordHash = newHash
		return nil
	})
}

func (s *Store) MarkEmailVerified(_ context.Context, id string) error {
	return s.update(id, func(a *authcore.Account) error {
		a.EmailVerified = true
		return nil
	})
}

func (s *Store) SetPendingTOTPSecret(_ context.Context, id, secret string) error {
	return s.update(id, func(a *authcore.Account) error {
		a.PendingTOTPSecret = secret
		return nil
	})
}

func (s *Store) PromoteTOTPSecret(_ context.Context, id string) error {
	return s.update(id, func(a *authcore.Account) error {
		if a.PendingTOTPSecret == "" {
			return authcore.ErrNotFound
		}
		a.TOTPSecret = a.PendingTOTPSecret
		a.PendingTOTPSecret = ""
		a.TOTPEnabled = true
		return nil
	})
}

func (s *Store) ClearTOTP(_ context.Context, id string) error {
	return s.update(id, func(a *authcore.Account) error {
		a.TOTPEnabled = false
		a.TOTPSecret = ""
		a.PendingTOTPSecret = ""
		return nil
	})
}

func (s *Store) SetRole(_ context.Context, id string, role authcore.Role) error {
	return s.update(id, func(a *authcore.Account) error {
		a.Role = role
		return nil
	})
}

func (s *Store) SetActive(_ context.Context, id string, active bool) error {
	return s.update(id, func(a *authcore.Account) error {
		a.Active = active
		return nil
	})
}

func (s *Store) update(id string, fn func(*authcore.Account) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.byID[id]
	if !ok {
		return authcore.ErrNotFound
	}
	return fn(acct)
}

func copyAccount(a *authcore.Account) *authcore.Account {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}
