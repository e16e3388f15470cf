// Package tokens implements the one-shot purpose-token ledger.
//
// A token is an opaque 256-bit value bound to exactly one account and one
// purpose (email verification, password reset, or MFA enrollment). Storage
// holds only the SHA-256 digest of the token value; consumption validates,
// deletes, and returns the bound account atomically, so a token can be spent
// at most once even under concurrent attempts.
package tokens
