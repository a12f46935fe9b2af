package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReadState is the per-user read marker for a private conversation.
// ReadAt points at the creation time of the newest post the user has read;
// posts after (ReadAt, marker order) are unread.
type ReadState struct {
	PrivateTopicID uuid.UUID `json:"private_topic_id"`
	UserID         uuid.UUID `json:"user_id"`
	ReadAt         time.Time `json:"read_at"`
}

// Store persists the notified ledger and private-topic read markers.
//
// CreateIfAbsent is the engine's sole concurrency-control primitive: the
// backing store must enforce (post_id, user_id) uniqueness so that two
// racing fan-out runs cannot both observe "created". A duplicate insert is
// reported as created=false, never as an error.
type Store interface {
	// CreateIfAbsent records that the user was notified about the post.
	// Returns true when a new entry was created, false when one existed.
	CreateIfAbsent(ctx context.Context, postID, userID uuid.UUID) (bool, error)

	// NotifiedUserIDs returns the users already ledgered for the post.
	NotifiedUserIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error)

	// FindReadState returns the read marker, or nil when none exists.
	FindReadState(ctx context.Context, privateTopicID, userID uuid.UUID) (*ReadState, error)

	// UpsertReadState creates or moves the read marker.
	UpsertReadState(ctx context.Context, state ReadState) error

	// DeleteReadState removes the read marker. Deleting an absent marker
	// is a no-op.
	DeleteReadState(ctx context.Context, privateTopicID, userID uuid.UUID) error
}
