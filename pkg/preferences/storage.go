package preferences

import (
	"context"

	"github.com/google/uuid"
)

// Store persists the three preference layers. Getters return nil when the
// user has no explicit setting; "absent" is distinct from "false" and is
// what lets the resolver fall through to the next layer.
type Store interface {
	// GlobalForFollowedTopics returns the user's global setting for posts in
	// followed topics under the given notifier, or nil if unset.
	GlobalForFollowedTopics(ctx context.Context, userID uuid.UUID, notifierKey string) (*bool, error)

	// GlobalForPrivateTopics returns the user's global setting for private
	// conversation posts under the given notifier, or nil if unset.
	GlobalForPrivateTopics(ctx context.Context, userID uuid.UUID, notifierKey string) (*bool, error)

	// MessageboardForFollowedTopics returns the per-messageboard override,
	// or nil if unset.
	MessageboardForFollowedTopics(ctx context.Context, userID, messageboardID uuid.UUID, notifierKey string) (*bool, error)

	// SetGlobalForFollowedTopics upserts the global followed-topics setting.
	SetGlobalForFollowedTopics(ctx context.Context, userID uuid.UUID, notifierKey string, enabled bool) error

	// SetGlobalForPrivateTopics upserts the global private-topics setting.
	SetGlobalForPrivateTopics(ctx context.Context, userID uuid.UUID, notifierKey string, enabled bool) error

	// SetMessageboardForFollowedTopics upserts the per-messageboard override.
	SetMessageboardForFollowedTopics(ctx context.Context, userID, messageboardID uuid.UUID, notifierKey string, enabled bool) error
}
