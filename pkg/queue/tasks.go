package queue

import "github.com/dmitrymomot/forumkit/pkg/forum"

// The engine enqueues one task per post-creation event. Payloads carry the
// full post identity (post, parent thread, author) so a worker can run the
// fan-out without a storage round-trip, and re-running a task is safe: the
// notified ledger makes fan-out idempotent.

// NotifyFollowingUsersTask triggers public post fan-out.
type NotifyFollowingUsersTask struct {
	Post forum.Post `json:"post"`
}

// NotifyPrivateTopicUsersTask triggers private post fan-out.
type NotifyPrivateTopicUsersTask struct {
	Post forum.PrivatePost `json:"post"`
}
