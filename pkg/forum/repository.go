package forum

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository resolves user identities to deliverable users.
// Backed by the host application's user store.
type UserRepository interface {
	// UsersByIDs returns the users for the given IDs. Unknown IDs are
	// silently skipped; the result order is unspecified.
	UsersByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)
}

// FollowRepository manages the (user, topic) follow relation.
type FollowRepository interface {
	// Follow creates the relation if absent. An existing manual follow is
	// never downgraded to an auto-follow.
	Follow(ctx context.Context, userID, topicID uuid.UUID, reason FollowReason) error

	// Unfollow removes the relation. Removing an absent follow is a no-op.
	Unfollow(ctx context.Context, userID, topicID uuid.UUID) error

	// FollowersOf returns the IDs of all users following the topic.
	FollowersOf(ctx context.Context, topicID uuid.UUID) ([]uuid.UUID, error)
}

// PostRepository persists public posts.
type PostRepository interface {
	CreatePost(ctx context.Context, post Post) error

	// PostsInTopic returns the topic's posts in thread order.
	PostsInTopic(ctx context.Context, topicID uuid.UUID) ([]Post, error)
}

// PrivatePostRepository persists private posts.
type PrivatePostRepository interface {
	CreatePrivatePost(ctx context.Context, post PrivatePost) error

	// PostsInPrivateTopic returns the conversation's posts in thread order.
	PostsInPrivateTopic(ctx context.Context, privateTopicID uuid.UUID) ([]PrivatePost, error)
}

// PrivateTopicRepository manages private conversations and their members.
type PrivateTopicRepository interface {
	CreatePrivateTopic(ctx context.Context, topic PrivateTopic, memberIDs []uuid.UUID) error
	AddMember(ctx context.Context, privateTopicID, userID uuid.UUID) error

	// MembersOf returns the IDs of the conversation's members.
	MembersOf(ctx context.Context, privateTopicID uuid.UUID) ([]uuid.UUID, error)
}

// TopicRepository persists messageboards and public topics.
type TopicRepository interface {
	CreateMessageboard(ctx context.Context, mb Messageboard) error
	CreateTopic(ctx context.Context, topic Topic) error
	TopicByID(ctx context.Context, topicID uuid.UUID) (*Topic, error)
}
