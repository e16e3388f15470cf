// Package password provides one-way credential hashing (argon2id in PHC
// string format) and a composable password-strength policy.
//
// Hashing uses a per-call random salt and constant-time verification. The
// policy is a pure predicate: it never returns errors, callers decide how a
// weak password surfaces.
package password
