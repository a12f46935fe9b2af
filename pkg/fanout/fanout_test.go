package fanout_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/forumkit/pkg/fanout"
	"github.com/dmitrymomot/forumkit/pkg/forum"
	"github.com/dmitrymomot/forumkit/pkg/ledger"
	"github.com/dmitrymomot/forumkit/pkg/notifier"
	"github.com/dmitrymomot/forumkit/pkg/preferences"
)

// fixture wires fan-out commands over in-memory stores with one topic,
// its author, and a set of followers.
type fixture struct {
	store    *forum.MemoryStore
	prefs    *preferences.MemoryStore
	ledger   *ledger.Ledger
	commands *fanout.Commands

	board     forum.Messageboard
	topic     forum.Topic
	author    forum.User
	followers []forum.User
}

func newFixture(t *testing.T, followerCount int, notifiers ...notifier.Notifier) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		store: forum.NewMemoryStore(),
		prefs: preferences.NewMemoryStore(),
	}
	f.ledger = ledger.New(ledger.NewMemoryStore(), f.store)

	f.board = forum.Messageboard{ID: uuid.New(), Name: "general", CreatedAt: time.Now()}
	require.NoError(t, f.store.CreateMessageboard(ctx, f.board))

	f.topic = forum.Topic{ID: uuid.New(), MessageboardID: f.board.ID, Title: "hello", CreatedAt: time.Now()}
	require.NoError(t, f.store.CreateTopic(ctx, f.topic))

	f.author = forum.User{ID: uuid.New(), Name: "Author", Email: "author@example.com"}
	f.store.AddUser(f.author)
	require.NoError(t, f.store.Follow(ctx, f.author.ID, f.topic.ID, forum.FollowReasonPosted))

	for i := 0; i < followerCount; i++ {
		u := forum.User{ID: uuid.New(), Name: "Follower", Email: "follower@example.com"}
		f.store.AddUser(u)
		require.NoError(t, f.store.Follow(ctx, u.ID, f.topic.ID, forum.FollowReasonManual))
		f.followers = append(f.followers, u)
	}

	commands, err := fanout.New(
		notifier.MustNewRegistry(notifiers...),
		preferences.NewResolver(f.prefs),
		f.ledger,
		f.store, f.store, f.store,
	)
	require.NoError(t, err)
	f.commands = commands
	return f
}

func (f *fixture) post() forum.Post {
	return forum.Post{
		ID:             uuid.New(),
		TopicID:        f.topic.ID,
		MessageboardID: f.board.ID,
		AuthorID:       f.author.ID,
		Content:        "new post",
		CreatedAt:      time.Now(),
	}
}

func userIDs(users []forum.User) []uuid.UUID {
	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}

func TestNewCommands(t *testing.T) {
	t.Parallel()

	store := forum.NewMemoryStore()
	led := ledger.New(ledger.NewMemoryStore(), store)
	resolver := preferences.NewResolver(preferences.NewMemoryStore())
	registry := notifier.MustNewRegistry()

	for name, build := range map[string]func() error{
		"nil registry": func() error {
			_, err := fanout.New(nil, resolver, led, store, store, store)
			return err
		},
		"nil resolver": func() error {
			_, err := fanout.New(registry, nil, led, store, store, store)
			return err
		},
		"nil ledger": func() error {
			_, err := fanout.New(registry, resolver, nil, store, store, store)
			return err
		},
		"nil repository": func() error {
			_, err := fanout.New(registry, resolver, led, nil, store, store)
			return err
		},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			require.Error(t, build())
		})
	}
}

func TestNotifyFollowingUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("notifies followers, never the author", func(t *testing.T) {
		t.Parallel()
		mock := notifier.NewMockNotifier()
		f := newFixture(t, 2, mock)

		require.NoError(t, f.commands.NotifyFollowingUsers(ctx, f.post()))

		notified := mock.NotifiedOfNewPost()
		assert.ElementsMatch(t, userIDs(f.followers), userIDs(notified))
		assert.NotContains(t, userIDs(notified), f.author.ID)
	})

	t.Run("second run delivers nothing", func(t *testing.T) {
		t.Parallel()
		mock := notifier.NewMockNotifier()
		f := newFixture(t, 2, mock)
		post := f.post()

		require.NoError(t, f.commands.NotifyFollowingUsers(ctx, post))
		require.NoError(t, f.commands.NotifyFollowingUsers(ctx, post))

		assert.Len(t, mock.NotifiedOfNewPost(), 2, "no duplicate deliveries across runs")
	})

	t.Run("new follower between runs is picked up", func(t *testing.T) {
		t.Parallel()
		mock := notifier.NewMockNotifier()
		f := newFixture(t, 1, mock)
		post := f.post()

		require.NoError(t, f.commands.NotifyFollowingUsers(ctx, post))

		late := forum.User{ID: uuid.New(), Name: "Late", Email: "late@example.com"}
		f.store.AddUser(late)
		require.NoError(t, f.store.Follow(ctx, late.ID, f.topic.ID, forum.FollowReasonManual))

		require.NoError(t, f.commands.NotifyFollowingUsers(ctx, post))

		notified := mock.NotifiedOfNewPost()
		require.Len(t, notified, 2)
		assert.Contains(t, userIDs(notified), late.ID)
	})

	t.Run("disabled preference excludes the user", func(t *testing.T) {
		t.Parallel()
		mock := notifier.NewMockNotifier()
		f := newFixture(t, 2, mock)
		muted := f.followers[0]
		require.NoError(t, f.prefs.SetGlobalForFollowedTopics(ctx, muted.ID, mock.Key(), false))

		require.NoError(t, f.commands.NotifyFollowingUsers(ctx, f.post()))

		notified := mock.NotifiedOfNewPost()
		require.Len(t, notified, 1)
		assert.Equal(t, f.followers[1].ID, notified[0].ID)
	})

	t.Run("messageboard override re-enables over disabled global", func(t *testing.T) {
		t.Parallel()
		mock := notifier.NewMockNotifier()
		f := newFixture(t, 1, mock)
		follower := f.followers[0]
		require.NoError(t, f.prefs.SetGlobalForFollowedTopics(ctx, follower.ID, mock.Key(), false))
		require.NoError(t, f.prefs.SetMessageboardForFollowedTopics(ctx, follower.ID, f.board.ID, mock.Key(), true))

		require.NoError(t, f.commands.NotifyFollowingUsers(ctx, f.post()))

		assert.Len(t, mock.NotifiedOfNewPost(), 1)
	})

	t.Run("preferences filter per channel independently", func(t *testing.T) {
		t.Parallel()
		email := notifier.NewMockNotifierWithKey("email")
		webhook := notifier.NewMockNotifierWithKey("webhook")
		f := newFixture(t, 2, email, webhook)
		picky := f.followers[0]
		require.NoError(t, f.prefs.SetGlobalForFollowedTopics(ctx, picky.ID, "email", false))

		require.NoError(t, f.commands.NotifyFollowingUsers(ctx, f.post()))

		assert.NotContains(t, userIDs(email.NotifiedOfNewPost()), picky.ID)
		assert.Contains(t, userIDs(webhook.NotifiedOfNewPost()), picky.ID)
	})

	t.Run("delivery failure aborts before any ledger write", func(t *testing.T) {
		t.Parallel()
		mock := notifier.NewMockNotifier()
		f := newFixture(t, 2, mock)
		post := f.post()

		boom := errors.New("smtp down")
		mock.FailWith(boom)
		err := f.commands.NotifyFollowingUsers(ctx, post)
		require.ErrorIs(t, err, boom)

		ledgered, err := f.ledger.NotifiedUserIDs(ctx, post.ID)
		require.NoError(t, err)
		assert.Empty(t, ledgered, "nothing ledgered on a failed run")

		// The retry converges: every follower is delivered exactly once.
		mock.FailWith(nil)
		require.NoError(t, f.commands.NotifyFollowingUsers(ctx, post))
		assert.Len(t, mock.NotifiedOfNewPost(), 2)
	})

	t.Run("all followers muted is a clean no-op", func(t *testing.T) {
		t.Parallel()
		mock := notifier.NewMockNotifier()
		f := newFixture(t, 1, mock)
		require.NoError(t, f.prefs.SetGlobalForFollowedTopics(ctx, f.followers[0].ID, mock.Key(), false))

		require.NoError(t, f.commands.NotifyFollowingUsers(ctx, f.post()))
		assert.Empty(t, mock.UsersNotifiedOfNewPost, "channel not invoked with an empty batch")
	})
}

func TestNotifyPrivateTopicUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// privateFixture builds a conversation between an author and two members.
	type privateFixture struct {
		f       *fixture
		topicID uuid.UUID
		members []forum.User
	}
	build := func(t *testing.T, notifiers ...notifier.Notifier) privateFixture {
		t.Helper()
		f := newFixture(t, 0, notifiers...)

		members := []forum.User{
			{ID: uuid.New(), Name: "Member A", Email: "a@example.com"},
			{ID: uuid.New(), Name: "Member B", Email: "b@example.com"},
		}
		for _, m := range members {
			f.store.AddUser(m)
		}
		topic := forum.PrivateTopic{ID: uuid.New(), Title: "dm", CreatedAt: time.Now()}
		require.NoError(t, f.store.CreatePrivateTopic(ctx, topic,
			[]uuid.UUID{f.author.ID, members[0].ID, members[1].ID}))
		return privateFixture{f: f, topicID: topic.ID, members: members}
	}
	privatePost := func(pf privateFixture) forum.PrivatePost {
		return forum.PrivatePost{
			ID:             uuid.New(),
			PrivateTopicID: pf.topicID,
			AuthorID:       pf.f.author.ID,
			Content:        "psst",
			CreatedAt:      time.Now(),
		}
	}

	t.Run("notifies members, never the author", func(t *testing.T) {
		t.Parallel()
		mock := notifier.NewMockNotifier()
		pf := build(t, mock)

		require.NoError(t, pf.f.commands.NotifyPrivateTopicUsers(ctx, privatePost(pf)))

		notified := mock.NotifiedOfNewPrivatePost()
		assert.ElementsMatch(t, userIDs(pf.members), userIDs(notified))
	})

	t.Run("repeat run delivers nothing", func(t *testing.T) {
		t.Parallel()
		mock := notifier.NewMockNotifier()
		pf := build(t, mock)
		post := privatePost(pf)

		require.NoError(t, pf.f.commands.NotifyPrivateTopicUsers(ctx, post))
		require.NoError(t, pf.f.commands.NotifyPrivateTopicUsers(ctx, post))

		assert.Len(t, mock.NotifiedOfNewPrivatePost(), 2)
	})

	t.Run("uses the private-topics preference scope", func(t *testing.T) {
		t.Parallel()
		mock := notifier.NewMockNotifier()
		pf := build(t, mock)
		muted := pf.members[0]

		// Disabling the followed-topics scope must not affect private posts.
		require.NoError(t, pf.f.prefs.SetGlobalForFollowedTopics(ctx, muted.ID, mock.Key(), false))
		require.NoError(t, pf.f.commands.NotifyPrivateTopicUsers(ctx, privatePost(pf)))
		assert.Len(t, mock.NotifiedOfNewPrivatePost(), 2)

		// Disabling the private scope does.
		require.NoError(t, pf.f.prefs.SetGlobalForPrivateTopics(ctx, muted.ID, mock.Key(), false))
		require.NoError(t, pf.f.commands.NotifyPrivateTopicUsers(ctx, privatePost(pf)))
		notified := mock.UsersNotifiedOfNewPrivatePost
		require.Len(t, notified, 2)
		assert.NotContains(t, userIDs(notified[1]), muted.ID)
	})
}

func TestTargetedUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("deterministic order by ID bytes", func(t *testing.T) {
		t.Parallel()
		mock := notifier.NewMockNotifier()
		f := newFixture(t, 5, mock)

		post := f.post()
		first, err := f.commands.TargetedUsers(ctx, post, mock)
		require.NoError(t, err)
		second, err := f.commands.TargetedUsers(ctx, post, mock)
		require.NoError(t, err)

		require.Len(t, first, 5)
		assert.Equal(t, first, second)
	})

	t.Run("computing targets does not ledger", func(t *testing.T) {
		t.Parallel()
		mock := notifier.NewMockNotifier()
		f := newFixture(t, 2, mock)
		post := f.post()

		_, err := f.commands.TargetedUsers(ctx, post, mock)
		require.NoError(t, err)

		ledgered, err := f.ledger.NotifiedUserIDs(ctx, post.ID)
		require.NoError(t, err)
		assert.Empty(t, ledgered)
	})
}
