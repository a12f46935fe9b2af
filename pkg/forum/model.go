package forum

import (
	"time"

	"github.com/google/uuid"
)

// User is the externally-owned identity the engine notifies.
// The host application owns the user lifecycle; the engine only needs
// a stable ID and a delivery address.
type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Messageboard groups public topics and scopes per-messageboard
// notification preference overrides.
type Messageboard struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Topic is a public discussion thread. Recipients of its posts are
// derived from the Follow relation, not an explicit member set.
type Topic struct {
	ID             uuid.UUID `json:"id"`
	MessageboardID uuid.UUID `json:"messageboard_id"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"created_at"`
}

// PrivateTopic is a private conversation with an explicit membership set.
type PrivateTopic struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Post belongs to exactly one public Topic.
type Post struct {
	ID             uuid.UUID `json:"id"`
	TopicID        uuid.UUID `json:"topic_id"`
	MessageboardID uuid.UUID `json:"messageboard_id"`
	AuthorID       uuid.UUID `json:"author_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// PrivatePost belongs to exactly one PrivateTopic.
type PrivatePost struct {
	ID             uuid.UUID `json:"id"`
	PrivateTopicID uuid.UUID `json:"private_topic_id"`
	AuthorID       uuid.UUID `json:"author_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// FollowReason records why a follow exists. A manual follow survives
// auto-follow bookkeeping; an auto-follow from posting must not downgrade
// a manual one.
type FollowReason string

const (
	FollowReasonManual FollowReason = "manual"
	FollowReasonPosted FollowReason = "posted"
)

// Follow is the (user, topic) subscription relation for public topics.
type Follow struct {
	UserID    uuid.UUID    `json:"user_id"`
	TopicID   uuid.UUID    `json:"topic_id"`
	Reason    FollowReason `json:"reason"`
	CreatedAt time.Time    `json:"created_at"`
}
