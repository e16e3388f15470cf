// Package middleware exposes HTTP adapters on top of authcore.Engine:
// session-cookie authentication, role checks, per-client rate limiting, and
// the browser security headers.
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself; all decisions are delegated to
// Engine.Resolve and Engine.Admit.
package middleware
