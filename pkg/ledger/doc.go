// Package ledger persists which users have already been notified about
// which posts, and the read markers for private conversations.
//
// The notified ledger is the fan-out pipeline's idempotency gate. Entries
// are keyed by (post, user) and are notifier-agnostic: once any fan-out
// run has ledgered a user for a post, later runs skip that user for every
// channel. Uniqueness is enforced by the storage layer, not by in-process
// locking, so concurrent duplicate runs converge on a single entry.
// A duplicate insert is the expected signal, surfaced as created=false.
//
// Read markers drive unread counts for private topics. Marking a post
// unread rewinds the marker to the preceding post's creation time
// (thread order: CreatedAt, then ID); marking the earliest post unread
// deletes the marker entirely.
//
// Backends: MemoryStore (tests/development), PgStore (Postgres unique
// index + SQLSTATE 23505), MongoStore (unique index + duplicate-key error).
package ledger
