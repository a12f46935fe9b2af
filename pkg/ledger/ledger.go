package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/forumkit/pkg/forum"
)

// Ledger wraps a Store with the read-marker arithmetic that depends on
// thread order. The notified ledger itself is a thin pass-through; the
// interesting part is mark-as-unread, which rewinds the marker to the post
// preceding the given one in (CreatedAt, ID) order.
type Ledger struct {
	store Store
	posts forum.PrivatePostRepository
}

// New creates a Ledger over the given store and private post repository.
func New(store Store, posts forum.PrivatePostRepository) *Ledger {
	return &Ledger{store: store, posts: posts}
}

// CreateIfAbsent records a sent notification. See Store.CreateIfAbsent.
func (l *Ledger) CreateIfAbsent(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	return l.store.CreateIfAbsent(ctx, postID, userID)
}

// NotifiedUserIDs returns the users already ledgered for the post.
func (l *Ledger) NotifiedUserIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	return l.store.NotifiedUserIDs(ctx, postID)
}

// MarkUnread rewinds the user's read marker so the given post (and
// everything after it) counts as unread.
//
// If the post is the earliest in its thread the marker is deleted entirely:
// nothing has been read. Otherwise the marker is set to the creation time
// of the post immediately preceding it in thread order, creating the marker
// if none exists. A post that cannot be located in its thread also deletes
// the marker rather than erroring.
func (l *Ledger) MarkUnread(ctx context.Context, post forum.PrivatePost, userID uuid.UUID) error {
	posts, err := l.posts.PostsInPrivateTopic(ctx, post.PrivateTopicID)
	if err != nil {
		return fmt.Errorf("failed to load thread posts: %w", err)
	}

	preceding := forum.PrecedingPrivatePost(posts, post)
	if preceding == nil {
		return l.store.DeleteReadState(ctx, post.PrivateTopicID, userID)
	}

	return l.store.UpsertReadState(ctx, ReadState{
		PrivateTopicID: post.PrivateTopicID,
		UserID:         userID,
		ReadAt:         preceding.CreatedAt,
	})
}

// MarkRead moves the user's read marker to the given post's creation time.
// Markers only move forward; re-reading an old post does not rewind.
func (l *Ledger) MarkRead(ctx context.Context, post forum.PrivatePost, userID uuid.UUID) error {
	state, err := l.store.FindReadState(ctx, post.PrivateTopicID, userID)
	if err != nil {
		return err
	}
	if state != nil && !post.CreatedAt.After(state.ReadAt) {
		return nil
	}
	return l.store.UpsertReadState(ctx, ReadState{
		PrivateTopicID: post.PrivateTopicID,
		UserID:         userID,
		ReadAt:         post.CreatedAt,
	})
}

// UnreadCount returns how many posts in the conversation the user has not
// read yet. Without a marker every post is unread.
func (l *Ledger) UnreadCount(ctx context.Context, privateTopicID, userID uuid.UUID) (int, error) {
	posts, err := l.posts.PostsInPrivateTopic(ctx, privateTopicID)
	if err != nil {
		return 0, err
	}
	state, err := l.store.FindReadState(ctx, privateTopicID, userID)
	if err != nil {
		return 0, err
	}
	if state == nil {
		return len(posts), nil
	}

	count := 0
	for _, p := range posts {
		if p.CreatedAt.After(state.ReadAt) {
			count++
		}
	}
	return count, nil
}
