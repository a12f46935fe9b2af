package preferences

import (
	"context"

	"github.com/google/uuid"
)

// defaultEnabled is the hardcoded fallback when no preference layer has an
// explicit value. Notifications are opt-out: enabled unless disabled.
const defaultEnabled = true

// ScopeKind distinguishes the two notification scopes a preference can target.
type ScopeKind string

const (
	ScopeFollowedTopics ScopeKind = "followed_topics"
	ScopePrivateTopics  ScopeKind = "private_topics"
)

// Scope identifies what kind of notification a preference applies to.
// Followed-topic scopes carry the messageboard whose override layer applies;
// private-topic scopes have no messageboard layer.
type Scope struct {
	kind           ScopeKind
	messageboardID uuid.UUID
}

// FollowedTopics returns the scope for posts in followed public topics on
// the given messageboard.
func FollowedTopics(messageboardID uuid.UUID) Scope {
	return Scope{kind: ScopeFollowedTopics, messageboardID: messageboardID}
}

// PrivateTopics returns the scope for posts in private conversations.
func PrivateTopics() Scope {
	return Scope{kind: ScopePrivateTopics}
}

// Kind returns the scope kind.
func (s Scope) Kind() ScopeKind { return s.kind }

// Resolver computes the effective notification preference for a
// (user, notifier, scope) triple by walking the override layers in
// precedence order: messageboard override, then global setting, then the
// opt-out default. The followed-topics and private-topics settings never
// fall back to each other.
type Resolver struct {
	store Store
}

// NewResolver creates a resolver over the given preference store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// source yields one preference layer's value: nil means "no explicit setting".
type source func(ctx context.Context) (*bool, error)

// Resolved returns the effective enabled/disabled value. It performs reads
// only; storage errors propagate unmodified, never silently defaulted.
func (r *Resolver) Resolved(ctx context.Context, userID uuid.UUID, notifierKey string, scope Scope) (bool, error) {
	var sources []source
	switch scope.kind {
	case ScopePrivateTopics:
		sources = []source{
			func(ctx context.Context) (*bool, error) {
				return r.store.GlobalForPrivateTopics(ctx, userID, notifierKey)
			},
		}
	default:
		sources = []source{
			func(ctx context.Context) (*bool, error) {
				return r.store.MessageboardForFollowedTopics(ctx, userID, scope.messageboardID, notifierKey)
			},
			func(ctx context.Context) (*bool, error) {
				return r.store.GlobalForFollowedTopics(ctx, userID, notifierKey)
			},
		}
	}
	return firstNonAbsent(ctx, sources)
}

func firstNonAbsent(ctx context.Context, sources []source) (bool, error) {
	for _, src := range sources {
		v, err := src(ctx)
		if err != nil {
			return false, err
		}
		if v != nil {
			return *v, nil
		}
	}
	return defaultEnabled, nil
}
