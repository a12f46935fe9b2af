package forumkit_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/forumkit"
	"github.com/dmitrymomot/forumkit/pkg/forum"
	"github.com/dmitrymomot/forumkit/pkg/ledger"
	"github.com/dmitrymomot/forumkit/pkg/notifier"
	"github.com/dmitrymomot/forumkit/pkg/preferences"
	"github.com/dmitrymomot/forumkit/pkg/queue"
)

type engineFixture struct {
	store  *forum.MemoryStore
	prefs  *preferences.MemoryStore
	mock   *notifier.MockNotifier
	engine *forumkit.Engine
}

func newEngineFixture(t *testing.T, opts ...forumkit.Option) *engineFixture {
	t.Helper()

	f := &engineFixture{
		store: forum.NewMemoryStore(),
		prefs: preferences.NewMemoryStore(),
		mock:  notifier.NewMockNotifier(),
	}
	opts = append([]forumkit.Option{forumkit.WithNotifiers(f.mock)}, opts...)

	engine, err := forumkit.New(f.store, f.store, f.prefs, ledger.NewMemoryStore(), opts...)
	require.NoError(t, err)
	f.engine = engine
	return f
}

func (f *engineFixture) addUser(t *testing.T) forum.User {
	t.Helper()
	u := forum.User{ID: uuid.New(), Name: "User", Email: "user@example.com"}
	f.store.AddUser(u)
	return u
}

func userIDOf(users []forum.User) []uuid.UUID {
	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	store := forum.NewMemoryStore()
	_, err := forumkit.New(nil, store, preferences.NewMemoryStore(), ledger.NewMemoryStore())
	require.ErrorIs(t, err, forumkit.ErrMissingDependency)

	_, err = forumkit.New(store, store, nil, ledger.NewMemoryStore())
	require.ErrorIs(t, err, forumkit.ErrMissingDependency)
}

func TestEngineCreatePost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("persists, auto-follows, and notifies followers", func(t *testing.T) {
		t.Parallel()
		f := newEngineFixture(t)
		author := f.addUser(t)
		follower := f.addUser(t)

		mb, err := f.engine.CreateMessageboard(ctx, "general", "")
		require.NoError(t, err)
		topic, _, err := f.engine.CreateTopic(ctx, mb.ID, author.ID, "hello", "first post")
		require.NoError(t, err)

		require.NoError(t, f.engine.FollowTopic(ctx, follower.ID, topic.ID))

		post, err := f.engine.CreatePost(ctx, topic.ID, author.ID, "second post")
		require.NoError(t, err)
		assert.Equal(t, mb.ID, post.MessageboardID)

		posts, err := f.store.PostsInTopic(ctx, topic.ID)
		require.NoError(t, err)
		assert.Len(t, posts, 2)

		notified := f.mock.NotifiedOfNewPost()
		assert.Contains(t, userIDOf(notified), follower.ID)
		assert.NotContains(t, userIDOf(notified), author.ID)

		followers, err := f.store.FollowersOf(ctx, topic.ID)
		require.NoError(t, err)
		assert.Contains(t, followers, author.ID, "posting follows the topic")
	})

	t.Run("unknown topic fails", func(t *testing.T) {
		t.Parallel()
		f := newEngineFixture(t)
		author := f.addUser(t)

		_, err := f.engine.CreatePost(ctx, uuid.New(), author.ID, "orphan")
		require.ErrorIs(t, err, forum.ErrTopicNotFound)
	})

	t.Run("unfollowed user is not notified", func(t *testing.T) {
		t.Parallel()
		f := newEngineFixture(t)
		author := f.addUser(t)
		follower := f.addUser(t)

		mb, err := f.engine.CreateMessageboard(ctx, "general", "")
		require.NoError(t, err)
		topic, _, err := f.engine.CreateTopic(ctx, mb.ID, author.ID, "hello", "first")
		require.NoError(t, err)

		require.NoError(t, f.engine.FollowTopic(ctx, follower.ID, topic.ID))
		require.NoError(t, f.engine.UnfollowTopic(ctx, follower.ID, topic.ID))

		_, err = f.engine.CreatePost(ctx, topic.ID, author.ID, "update")
		require.NoError(t, err)
		assert.NotContains(t, userIDOf(f.mock.NotifiedOfNewPost()), follower.ID)
	})

	t.Run("preference setters mute channels", func(t *testing.T) {
		t.Parallel()
		f := newEngineFixture(t)
		author := f.addUser(t)
		follower := f.addUser(t)

		mb, err := f.engine.CreateMessageboard(ctx, "general", "")
		require.NoError(t, err)
		topic, _, err := f.engine.CreateTopic(ctx, mb.ID, author.ID, "hello", "first")
		require.NoError(t, err)
		require.NoError(t, f.engine.FollowTopic(ctx, follower.ID, topic.ID))

		require.NoError(t, f.engine.SetNotificationsEnabled(ctx, follower.ID, f.mock.Key(), false))
		_, err = f.engine.CreatePost(ctx, topic.ID, author.ID, "muted")
		require.NoError(t, err)
		assert.NotContains(t, userIDOf(f.mock.NotifiedOfNewPost()), follower.ID)

		// A board override re-enables delivery for this board only.
		require.NoError(t, f.engine.SetMessageboardNotificationsEnabled(ctx, follower.ID, mb.ID, f.mock.Key(), true))
		_, err = f.engine.CreatePost(ctx, topic.ID, author.ID, "unmuted")
		require.NoError(t, err)
		assert.Contains(t, userIDOf(f.mock.NotifiedOfNewPost()), follower.ID)
	})
}

func TestEnginePrivateConversations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("members are notified, author excluded and auto-joined", func(t *testing.T) {
		t.Parallel()
		f := newEngineFixture(t)
		author := f.addUser(t)
		member := f.addUser(t)

		topic, _, err := f.engine.CreatePrivateTopic(ctx, author.ID, "dm", []uuid.UUID{member.ID}, "hi there")
		require.NoError(t, err)

		members, err := f.store.MembersOf(ctx, topic.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{author.ID, member.ID}, members)

		notified := f.mock.NotifiedOfNewPrivatePost()
		assert.Equal(t, []uuid.UUID{member.ID}, userIDOf(notified))
	})

	t.Run("private scope preference applies", func(t *testing.T) {
		t.Parallel()
		f := newEngineFixture(t)
		author := f.addUser(t)
		member := f.addUser(t)
		require.NoError(t, f.engine.SetPrivateNotificationsEnabled(ctx, member.ID, f.mock.Key(), false))

		_, _, err := f.engine.CreatePrivateTopic(ctx, author.ID, "dm", []uuid.UUID{member.ID}, "hi")
		require.NoError(t, err)
		assert.Empty(t, f.mock.NotifiedOfNewPrivatePost())
	})

	t.Run("read state round trip", func(t *testing.T) {
		t.Parallel()
		f := newEngineFixture(t)
		author := f.addUser(t)
		member := f.addUser(t)

		topic, first, err := f.engine.CreatePrivateTopic(ctx, author.ID, "dm", []uuid.UUID{member.ID}, "one")
		require.NoError(t, err)
		second, err := f.engine.CreatePrivatePost(ctx, topic.ID, author.ID, "two")
		require.NoError(t, err)

		count, err := f.engine.UnreadCount(ctx, topic.ID, member.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		require.NoError(t, f.engine.MarkRead(ctx, second, member.ID))
		count, err = f.engine.UnreadCount(ctx, topic.ID, member.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		require.NoError(t, f.engine.MarkUnread(ctx, second, member.ID))
		count, err = f.engine.UnreadCount(ctx, topic.ID, member.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		require.NoError(t, f.engine.MarkUnread(ctx, first, member.ID))
		count, err = f.engine.UnreadCount(ctx, topic.ID, member.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}

func TestEngineWithQueue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := queue.NewMemoryTaskRepository()
	enq, err := queue.NewEnqueuer(repo)
	require.NoError(t, err)

	f := newEngineFixture(t, forumkit.WithQueue(enq))
	author := f.addUser(t)
	follower := f.addUser(t)

	mb, err := f.engine.CreateMessageboard(ctx, "general", "")
	require.NoError(t, err)
	topic, _, err := f.engine.CreateTopic(ctx, mb.ID, author.ID, "hello", "first")
	require.NoError(t, err)
	require.NoError(t, f.engine.FollowTopic(ctx, follower.ID, topic.ID))

	_, err = f.engine.CreatePost(ctx, topic.ID, author.ID, "queued")
	require.NoError(t, err)

	assert.Empty(t, f.mock.NotifiedOfNewPost(), "delivery deferred to the worker")

	worker, err := queue.NewWorker(repo, queue.WithPullInterval(10*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, f.engine.RegisterFanoutHandlers(worker))

	worker.Start(ctx)
	defer worker.Stop()

	require.Eventually(t, func() bool {
		return len(f.mock.NotifiedOfNewPost()) > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, userIDOf(f.mock.NotifiedOfNewPost()), follower.ID)

	// Two tasks: the topic's first post and the follow-up.
	require.Eventually(t, func() bool {
		for _, task := range repo.Tasks() {
			if task.Status != queue.TaskStatusCompleted {
				return false
			}
		}
		return len(repo.Tasks()) == 2
	}, 2*time.Second, 10*time.Millisecond)
}
