// Package authcore provides the authentication and session-security core for
// a classroom service: argon2id password storage, opaque cookie sessions in
// Redis, single-use purpose tokens for email verification, password reset and
// MFA bridging, a TOTP second factor, per-client rate limiting, and a
// double-submit CSRF guard.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (Account, LoginResult, MetricsSnapshot, etc.). Internal
// coordination (token storage, session encoding, rate limiting, audit
// dispatch) lives under internal/ and is never exported.
//
// Account persistence is the caller's concern: implement [AccountStore]
// against your database and hand it to the Builder. The memstore sub-package
// ships an in-memory reference implementation.
package authcore
