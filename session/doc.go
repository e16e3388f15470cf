// Package session stores server-side login sessions in Redis.
//
// A session is an opaque identifier bound to one account with a fixed
// expiry. Records are binary-encoded with a leading format version byte and
// indexed per account so that expired rows can be pruned opportunistically
// when the account logs in again. Expiry is enforced by the record's own
// timestamp on read; the Redis TTL is only a sweep backstop.
package session
