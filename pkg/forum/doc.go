// Package forum defines the discussion-board domain model and its storage
// boundaries: messageboards, public topics with follower-derived audiences,
// private conversations with explicit membership, and posts ordered
// deterministically within their thread.
//
// # Thread ordering
//
// Posts are ordered by the (CreatedAt, ID) composite, with the ID tie-break
// comparing uuid bytes. The same order is produced in-process (SortPosts,
// SortPrivatePosts) and by the Postgres store's ORDER BY created_at, id,
// so "the post preceding P" is well defined even with duplicate or
// disordered timestamps.
//
// # Storage
//
// Repository interfaces are satisfied by MemoryStore (development, tests)
// and PgStore (production, pgx). UserRepository is the boundary to the host
// application's user store: the engine never owns users, it only resolves
// IDs to delivery addresses.
package forum
