package session

import "errors"

var (
	// ErrSessionNotFound is returned when no record exists for the given id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when a record exists but its expiry
	// timestamp has passed. The record is removed as a side effect.
	ErrSessionExpired = errors.New("session expired")

	// ErrStoreUnavailable wraps backend faults from the session store.
	ErrStoreUnavailable = errors.New("session store unavailable")
)
