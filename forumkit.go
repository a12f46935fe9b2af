package forumkit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/forumkit/pkg/fanout"
	"github.com/dmitrymomot/forumkit/pkg/forum"
	"github.com/dmitrymomot/forumkit/pkg/ledger"
	"github.com/dmitrymomot/forumkit/pkg/notifier"
	"github.com/dmitrymomot/forumkit/pkg/preferences"
	"github.com/dmitrymomot/forumkit/pkg/queue"
	"github.com/dmitrymomot/forumkit/pkg/search"
)

// Store aggregates the forum repositories an Engine persists through.
// Both forum.MemoryStore and forum.PgStore satisfy it.
type Store interface {
	forum.TopicRepository
	forum.PostRepository
	forum.PrivateTopicRepository
	forum.PrivatePostRepository
	forum.FollowRepository
}

// Engine is the facade over the forum packages: it persists content,
// maintains follows and read state, and dispatches notification fan-out.
type Engine struct {
	store    Store
	users    forum.UserRepository
	prefs    preferences.Store
	resolver *preferences.Resolver
	ledger   *ledger.Ledger
	registry *notifier.Registry
	commands *fanout.Commands
	enqueuer *queue.Enqueuer
	index    *search.Index
	log      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithNotifiers sets the notification channels, in dispatch order.
func WithNotifiers(notifiers ...notifier.Notifier) Option {
	return func(e *Engine) {
		e.registry = notifier.MustNewRegistry(notifiers...)
	}
}

// WithQueue makes post creation enqueue fan-out as a background task
// instead of running it inline. Pair with RegisterFanoutHandlers on the
// worker that drains the same repository.
func WithQueue(enq *queue.Enqueuer) Option {
	return func(e *Engine) { e.enqueuer = enq }
}

// WithSearch enables full-text indexing of public posts.
func WithSearch(idx *search.Index) Option {
	return func(e *Engine) { e.index = idx }
}

// New assembles an Engine. Store, user repository, preference store, and
// ledger store are required; notifiers, queue, and search are optional.
func New(store Store, users forum.UserRepository, prefs preferences.Store, ledgerStore ledger.Store, opts ...Option) (*Engine, error) {
	if store == nil || users == nil || prefs == nil || ledgerStore == nil {
		return nil, ErrMissingDependency
	}

	e := &Engine{
		store:    store,
		users:    users,
		prefs:    prefs,
		resolver: preferences.NewResolver(prefs),
		ledger:   ledger.New(ledgerStore, store),
		registry: notifier.MustNewRegistry(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	commands, err := fanout.New(e.registry, e.resolver, e.ledger, store, store, users,
		fanout.WithLogger(e.log))
	if err != nil {
		return nil, fmt.Errorf("failed to build fan-out commands: %w", err)
	}
	e.commands = commands
	return e, nil
}

// CreateMessageboard creates a messageboard.
func (e *Engine) CreateMessageboard(ctx context.Context, name, description string) (forum.Messageboard, error) {
	mb := forum.Messageboard{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := e.store.CreateMessageboard(ctx, mb); err != nil {
		return forum.Messageboard{}, fmt.Errorf("failed to create messageboard: %w", err)
	}
	return mb, nil
}

// CreateTopic creates a public topic with its first post. The author is
// auto-followed to the topic and fan-out runs for the post.
func (e *Engine) CreateTopic(ctx context.Context, messageboardID, authorID uuid.UUID, title, content string) (forum.Topic, forum.Post, error) {
	topic := forum.Topic{
		ID:             uuid.New(),
		MessageboardID: messageboardID,
		Title:          title,
		CreatedAt:      time.Now(),
	}
	if err := e.store.CreateTopic(ctx, topic); err != nil {
		return forum.Topic{}, forum.Post{}, fmt.Errorf("failed to create topic: %w", err)
	}

	post, err := e.CreatePost(ctx, topic.ID, authorID, content)
	if err != nil {
		return forum.Topic{}, forum.Post{}, err
	}
	return topic, post, nil
}

// CreatePost appends a post to a public topic: it persists the post,
// auto-follows the author, indexes the post when search is enabled, and
// dispatches notification fan-out to the topic's followers.
func (e *Engine) CreatePost(ctx context.Context, topicID, authorID uuid.UUID, content string) (forum.Post, error) {
	topic, err := e.store.TopicByID(ctx, topicID)
	if err != nil {
		return forum.Post{}, fmt.Errorf("failed to load topic: %w", err)
	}

	post := forum.Post{
		ID:             uuid.New(),
		TopicID:        topicID,
		MessageboardID: topic.MessageboardID,
		AuthorID:       authorID,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	if err := e.store.CreatePost(ctx, post); err != nil {
		return forum.Post{}, fmt.Errorf("failed to create post: %w", err)
	}

	// Posting follows the topic, but never downgrades a manual follow.
	if err := e.store.Follow(ctx, authorID, topicID, forum.FollowReasonPosted); err != nil {
		return forum.Post{}, fmt.Errorf("failed to auto-follow author: %w", err)
	}

	if e.index != nil {
		if err := e.index.IndexPost(ctx, post, topic.Title); err != nil {
			// Indexing is best-effort; the post and its notifications
			// must not depend on the search cluster.
			e.log.WarnContext(ctx, "failed to index post",
				slog.String("post_id", post.ID.String()),
				slog.Any("error", err))
		}
	}

	if err := e.dispatchPublic(ctx, post); err != nil {
		return forum.Post{}, err
	}
	return post, nil
}

// CreatePrivateTopic creates a private conversation with its first post.
func (e *Engine) CreatePrivateTopic(ctx context.Context, authorID uuid.UUID, title string, memberIDs []uuid.UUID, content string) (forum.PrivateTopic, forum.PrivatePost, error) {
	topic := forum.PrivateTopic{
		ID:        uuid.New(),
		Title:     title,
		CreatedAt: time.Now(),
	}
	members := memberIDs
	if !containsID(members, authorID) {
		members = append(append([]uuid.UUID{}, memberIDs...), authorID)
	}
	if err := e.store.CreatePrivateTopic(ctx, topic, members); err != nil {
		return forum.PrivateTopic{}, forum.PrivatePost{}, fmt.Errorf("failed to create private topic: %w", err)
	}

	post, err := e.CreatePrivatePost(ctx, topic.ID, authorID, content)
	if err != nil {
		return forum.PrivateTopic{}, forum.PrivatePost{}, err
	}
	return topic, post, nil
}

// CreatePrivatePost appends a post to a private conversation and
// dispatches notification fan-out to its members.
func (e *Engine) CreatePrivatePost(ctx context.Context, privateTopicID, authorID uuid.UUID, content string) (forum.PrivatePost, error) {
	post := forum.PrivatePost{
		ID:             uuid.New(),
		PrivateTopicID: privateTopicID,
		AuthorID:       authorID,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	if err := e.store.CreatePrivatePost(ctx, post); err != nil {
		return forum.PrivatePost{}, fmt.Errorf("failed to create private post: %w", err)
	}

	if err := e.dispatchPrivate(ctx, post); err != nil {
		return forum.PrivatePost{}, err
	}
	return post, nil
}

// FollowTopic subscribes the user to a public topic.
func (e *Engine) FollowTopic(ctx context.Context, userID, topicID uuid.UUID) error {
	return e.store.Follow(ctx, userID, topicID, forum.FollowReasonManual)
}

// UnfollowTopic removes the user's subscription to a public topic.
func (e *Engine) UnfollowTopic(ctx context.Context, userID, topicID uuid.UUID) error {
	return e.store.Unfollow(ctx, userID, topicID)
}

// SetNotificationsEnabled sets the user's global preference for posts in
// followed topics under one notifier channel.
func (e *Engine) SetNotificationsEnabled(ctx context.Context, userID uuid.UUID, notifierKey string, enabled bool) error {
	return e.prefs.SetGlobalForFollowedTopics(ctx, userID, notifierKey, enabled)
}

// SetPrivateNotificationsEnabled sets the user's global preference for
// private conversation posts under one notifier channel.
func (e *Engine) SetPrivateNotificationsEnabled(ctx context.Context, userID uuid.UUID, notifierKey string, enabled bool) error {
	return e.prefs.SetGlobalForPrivateTopics(ctx, userID, notifierKey, enabled)
}

// SetMessageboardNotificationsEnabled sets the user's per-messageboard
// override for posts in followed topics under one notifier channel.
func (e *Engine) SetMessageboardNotificationsEnabled(ctx context.Context, userID, messageboardID uuid.UUID, notifierKey string, enabled bool) error {
	return e.prefs.SetMessageboardForFollowedTopics(ctx, userID, messageboardID, notifierKey, enabled)
}

// MarkUnread rewinds the user's read marker in a private conversation so
// the given post and everything after it read as unread.
func (e *Engine) MarkUnread(ctx context.Context, post forum.PrivatePost, userID uuid.UUID) error {
	return e.ledger.MarkUnread(ctx, post, userID)
}

// MarkRead advances the user's read marker to the given post.
func (e *Engine) MarkRead(ctx context.Context, post forum.PrivatePost, userID uuid.UUID) error {
	return e.ledger.MarkRead(ctx, post, userID)
}

// UnreadCount returns how many posts in the conversation the user has not
// read yet.
func (e *Engine) UnreadCount(ctx context.Context, privateTopicID, userID uuid.UUID) (int, error) {
	return e.ledger.UnreadCount(ctx, privateTopicID, userID)
}

// SearchPosts queries the full-text index scoped to one messageboard.
func (e *Engine) SearchPosts(ctx context.Context, messageboardID uuid.UUID, query string) ([]search.Hit, error) {
	if e.index == nil {
		return nil, ErrSearchDisabled
	}
	return e.index.Search(ctx, messageboardID, query)
}

// Fanout exposes the underlying fan-out commands, mainly so queue workers
// and tests can drive them directly.
func (e *Engine) Fanout() *fanout.Commands { return e.commands }

// RegisterFanoutHandlers registers the engine's fan-out task handlers on a
// queue worker. Required when the engine was built with WithQueue.
func (e *Engine) RegisterFanoutHandlers(w *queue.Worker) error {
	if err := w.RegisterHandler(queue.NewTaskHandler(
		func(ctx context.Context, t queue.NotifyFollowingUsersTask) error {
			return e.commands.NotifyFollowingUsers(ctx, t.Post)
		},
	)); err != nil {
		return err
	}
	return w.RegisterHandler(queue.NewTaskHandler(
		func(ctx context.Context, t queue.NotifyPrivateTopicUsersTask) error {
			return e.commands.NotifyPrivateTopicUsers(ctx, t.Post)
		},
	))
}

func (e *Engine) dispatchPublic(ctx context.Context, post forum.Post) error {
	if e.enqueuer != nil {
		if err := e.enqueuer.Enqueue(ctx, queue.NotifyFollowingUsersTask{Post: post}); err != nil {
			return fmt.Errorf("failed to enqueue fan-out: %w", err)
		}
		return nil
	}
	if err := e.commands.NotifyFollowingUsers(ctx, post); err != nil {
		return fmt.Errorf("fan-out failed: %w", err)
	}
	return nil
}

func (e *Engine) dispatchPrivate(ctx context.Context, post forum.PrivatePost) error {
	if e.enqueuer != nil {
		if err := e.enqueuer.Enqueue(ctx, queue.NotifyPrivateTopicUsersTask{Post: post}); err != nil {
			return fmt.Errorf("failed to enqueue fan-out: %w", err)
		}
		return nil
	}
	if err := e.commands.NotifyPrivateTopicUsers(ctx, post); err != nil {
		return fmt.Errorf("fan-out failed: %w", err)
	}
	return nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
