package fanout

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/dmitrymomot/forumkit/pkg/forum"
	"github.com/dmitrymomot/forumkit/pkg/ledger"
	"github.com/dmitrymomot/forumkit/pkg/notifier"
	"github.com/dmitrymomot/forumkit/pkg/preferences"
)

// Commands orchestrates notification fan-out for new posts: gather
// candidate recipients, filter through preferences and the notified
// ledger, dispatch to each registered channel, then record ledger entries.
//
// All dependencies are injected; in particular the notifier registry is an
// explicit parameter of construction, never an ambient global, so tests
// substitute channels by building their own Commands.
type Commands struct {
	registry *notifier.Registry
	resolver *preferences.Resolver
	ledger   *ledger.Ledger
	follows  forum.FollowRepository
	members  forum.PrivateTopicRepository
	users    forum.UserRepository
	log      *slog.Logger
}

// Option configures Commands.
type Option func(*Commands)

// WithLogger sets the logger used for fan-out run reporting.
func WithLogger(log *slog.Logger) Option {
	return func(c *Commands) { c.log = log }
}

// New creates the fan-out commands. Every collaborator is required.
func New(
	registry *notifier.Registry,
	resolver *preferences.Resolver,
	led *ledger.Ledger,
	follows forum.FollowRepository,
	members forum.PrivateTopicRepository,
	users forum.UserRepository,
	opts ...Option,
) (*Commands, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if resolver == nil {
		return nil, ErrNilResolver
	}
	if led == nil {
		return nil, ErrNilLedger
	}
	if follows == nil || members == nil || users == nil {
		return nil, ErrNilRepository
	}

	c := &Commands{
		registry: registry,
		resolver: resolver,
		ledger:   led,
		follows:  follows,
		members:  members,
		users:    users,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NotifyFollowingUsers fans a new public post out to the followers of its
// topic. Channels are dispatched in registry order; ledger entries for the
// union of all targeted users are written only after every channel has
// been dispatched, so a retry after a mid-run failure re-derives its
// targets from the ledger and converges without duplicate deliveries.
//
// A channel delivery error aborts the run before any ledger write and
// propagates to the caller; retries are safe because nothing was ledgered.
func (c *Commands) NotifyFollowingUsers(ctx context.Context, post forum.Post) error {
	followerIDs, err := c.follows.FollowersOf(ctx, post.TopicID)
	if err != nil {
		return fmt.Errorf("failed to load followers: %w", err)
	}

	candidates, err := c.candidates(ctx, post.ID, post.AuthorID, followerIDs)
	if err != nil {
		return err
	}

	scope := preferences.FollowedTopics(post.MessageboardID)
	notifiedIDs := make(map[uuid.UUID]struct{})
	for _, n := range c.registry.All() {
		targeted, err := c.filterByPreference(ctx, candidates, n.Key(), scope)
		if err != nil {
			return err
		}
		if len(targeted) == 0 {
			continue
		}
		if err := n.NewPost(ctx, post, targeted); err != nil {
			return fmt.Errorf("notifier %q delivery failed: %w", n.Key(), err)
		}
		c.log.LogAttrs(ctx, slog.LevelInfo, "Dispatched new post notification",
			slog.String("notifier", n.Key()),
			slog.String("post_id", post.ID.String()),
			slog.Int("recipients", len(targeted)),
		)
		for _, u := range targeted {
			notifiedIDs[u.ID] = struct{}{}
		}
	}

	return c.writeLedger(ctx, post.ID, notifiedIDs)
}

// NotifyPrivateTopicUsers fans a new private post out to the members of
// its conversation. Same shape as NotifyFollowingUsers with the
// private-topics preference scope and NewPrivatePost dispatch.
func (c *Commands) NotifyPrivateTopicUsers(ctx context.Context, post forum.PrivatePost) error {
	memberIDs, err := c.members.MembersOf(ctx, post.PrivateTopicID)
	if err != nil {
		return fmt.Errorf("failed to load conversation members: %w", err)
	}

	candidates, err := c.candidates(ctx, post.ID, post.AuthorID, memberIDs)
	if err != nil {
		return err
	}

	scope := preferences.PrivateTopics()
	notifiedIDs := make(map[uuid.UUID]struct{})
	for _, n := range c.registry.All() {
		targeted, err := c.filterByPreference(ctx, candidates, n.Key(), scope)
		if err != nil {
			return err
		}
		if len(targeted) == 0 {
			continue
		}
		if err := n.NewPrivatePost(ctx, post, targeted); err != nil {
			return fmt.Errorf("notifier %q delivery failed: %w", n.Key(), err)
		}
		c.log.LogAttrs(ctx, slog.LevelInfo, "Dispatched new private post notification",
			slog.String("notifier", n.Key()),
			slog.String("post_id", post.ID.String()),
			slog.Int("recipients", len(targeted)),
		)
		for _, u := range targeted {
			notifiedIDs[u.ID] = struct{}{}
		}
	}

	return c.writeLedger(ctx, post.ID, notifiedIDs)
}

// TargetedUsers computes the recipients one channel would receive for a
// public post, without dispatching or ledgering. Exposed for preference
// debugging and host test suites.
func (c *Commands) TargetedUsers(ctx context.Context, post forum.Post, n notifier.Notifier) ([]forum.User, error) {
	followerIDs, err := c.follows.FollowersOf(ctx, post.TopicID)
	if err != nil {
		return nil, err
	}
	candidates, err := c.candidates(ctx, post.ID, post.AuthorID, followerIDs)
	if err != nil {
		return nil, err
	}
	return c.filterByPreference(ctx, candidates, n.Key(), preferences.FollowedTopics(post.MessageboardID))
}

// TargetedPrivateTopicUsers is TargetedUsers for private posts.
func (c *Commands) TargetedPrivateTopicUsers(ctx context.Context, post forum.PrivatePost, n notifier.Notifier) ([]forum.User, error) {
	memberIDs, err := c.members.MembersOf(ctx, post.PrivateTopicID)
	if err != nil {
		return nil, err
	}
	candidates, err := c.candidates(ctx, post.ID, post.AuthorID, memberIDs)
	if err != nil {
		return nil, err
	}
	return c.filterByPreference(ctx, candidates, n.Key(), preferences.PrivateTopics())
}

// candidates resolves the base recipient set for a post: the given user
// IDs minus the author and anyone already ledgered for the post, in a
// deterministic order.
func (c *Commands) candidates(ctx context.Context, postID, authorID uuid.UUID, userIDs []uuid.UUID) ([]forum.User, error) {
	alreadyNotified, err := c.ledger.NotifiedUserIDs(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load notified ledger: %w", err)
	}
	exclude := make(map[uuid.UUID]struct{}, len(alreadyNotified)+1)
	exclude[authorID] = struct{}{}
	for _, id := range alreadyNotified {
		exclude[id] = struct{}{}
	}

	ids := make([]uuid.UUID, 0, len(userIDs))
	for _, id := range userIDs {
		if _, skip := exclude[id]; skip {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })

	users, err := c.users.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve users: %w", err)
	}
	sort.Slice(users, func(i, j int) bool { return bytes.Compare(users[i].ID[:], users[j].ID[:]) < 0 })
	return users, nil
}

// filterByPreference keeps candidates whose resolved preference enables the
// channel. Resolution errors propagate: silently defaulting could over- or
// under-notify.
func (c *Commands) filterByPreference(ctx context.Context, candidates []forum.User, notifierKey string, scope preferences.Scope) ([]forum.User, error) {
	targeted := make([]forum.User, 0, len(candidates))
	for _, user := range candidates {
		enabled, err := c.resolver.Resolved(ctx, user.ID, notifierKey, scope)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve preference for user %s: %w", user.ID, err)
		}
		if enabled {
			targeted = append(targeted, user)
		}
	}
	return targeted, nil
}

// writeLedger records one entry per notified user. Duplicate entries from
// a racing run are expected no-ops.
func (c *Commands) writeLedger(ctx context.Context, postID uuid.UUID, userIDs map[uuid.UUID]struct{}) error {
	for id := range userIDs {
		if _, err := c.ledger.CreateIfAbsent(ctx, postID, id); err != nil {
			return fmt.Errorf("failed to write notified ledger entry: %w", err)
		}
	}
	return nil
}
