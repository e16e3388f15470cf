// Package csrf implements double-submit cookie protection: the server issues
// a random token in a script-readable cookie, and state-changing requests
// must echo it back in a header. A cross-site attacker can force the browser
// to send the cookie but cannot read it to fill in the header.
//
// This package translates HTTP semantics only; it holds no server-side state
// and never touches Redis.
package csrf
