// Package pg provides the engine's PostgreSQL plumbing: pooled connection
// setup with retry, embedded goose schema migrations, health probes, and
// error classifiers.
//
// IsDuplicateKeyError deserves a note: the notified ledger's
// insert-if-absent semantics are built on the unique key of
// forumkit_user_post_notifications, and this helper is how a SQLSTATE
// 23505 violation becomes the ledger's "already existed" return value
// instead of an error.
//
// Hosts typically wire it as:
//
//	pool, err := pg.Connect(ctx, cfg)
//	// handle err
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//	    // handle err
//	}
package pg
