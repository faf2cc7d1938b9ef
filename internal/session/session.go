// Package session implements the server-side session records that back
// cookie authentication.  Sessions live in Redis, keyed by an opaque random
// id; the relational store knows nothing about them and no referential
// integrity exists between the two (a deleted user's sessions simply age
// out).
package session

// Session is an ephemeral authorization record.  Timestamps are
// milliseconds since the Unix epoch, matching the wire format the store
// persists.  Lifetime is fixed at creation; there is no sliding renewal.
type Session struct {
	ID        string // opaque random identifier, never reused
	UserID    uint64 // owning user id (reference, not ownership)
	IssuedAt  int64  // creation time, ms since epoch
	ExpiresAt int64  // IssuedAt + fixed lifetime, ms since epoch
}
