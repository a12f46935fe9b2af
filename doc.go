// Package forumkit is an embeddable discussion-board engine for Go
// applications. It provides public messageboards with followable topics,
// private conversations with explicit membership, per-user unread
// tracking, and a notification fan-out pipeline that delivers new-post
// notifications through pluggable channels exactly once per user and
// post.
//
// The root package exposes the Engine facade; the pkg/ subpackages are
// usable on their own when an application only needs a slice of the
// functionality:
//
//   - pkg/forum: domain model, repositories, thread ordering
//   - pkg/preferences: three-layer notification preference resolution
//   - pkg/ledger: notified-user ledger and private read state
//   - pkg/notifier: channel interface, registry, email channel
//   - pkg/fanout: the fan-out commands themselves
//   - pkg/queue: background task queue for off-request fan-out
//   - pkg/mailer, pkg/search, pkg/i18n: delivery, indexing, translations
//   - pkg/pg, pkg/redis, pkg/mongo, pkg/opensearch: storage backends
//
// A minimal in-memory setup:
//
//	store := forum.NewMemoryStore()
//	engine, err := forumkit.New(
//		store, store,
//		preferences.NewMemoryStore(),
//		ledger.NewMemoryStore(),
//		forumkit.WithNotifiers(emailNotifier),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	post, err := engine.CreatePost(ctx, topicID, authorID, "hello")
//
// Swapping the memory stores for the Postgres ones (and adding WithQueue
// for background dispatch) is a construction-time change only; the
// Engine API is identical.
package forumkit
