package notifier

import (
	"context"

	"github.com/dmitrymomot/forumkit/pkg/forum"
)

// Notifier is a channel capable of delivering forum notifications.
// Implementations conform structurally - there is no base type to embed.
//
// Key must be stable across releases: it is persisted in user preferences.
// Implementations must not mutate the recipients slice and must report
// delivery failure via the returned error rather than dropping silently.
// Delivery methods are pure dispatch; a Notifier holds no per-call state.
type Notifier interface {
	// Key is the stable identifier used in persisted preferences.
	Key() string

	// HumanName is the display name shown on preference screens.
	HumanName() string

	// NewPost delivers a new public post to the given users.
	NewPost(ctx context.Context, post forum.Post, users []forum.User) error

	// NewPrivatePost delivers a new private post to the given users.
	NewPrivatePost(ctx context.Context, post forum.PrivatePost, users []forum.User) error
}
