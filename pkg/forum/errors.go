package forum

import "errors"

var (
	// ErrTopicNotFound is returned when a topic lookup finds no row.
	ErrTopicNotFound = errors.New("topic not found")

	// ErrPrivateTopicNotFound is returned when a private topic lookup finds no row.
	ErrPrivateTopicNotFound = errors.New("private topic not found")

	// ErrPostNotFound is returned when a post lookup finds no row.
	ErrPostNotFound = errors.New("post not found")

	// ErrInvalidPost is returned when a post is missing required identity fields.
	ErrInvalidPost = errors.New("post is missing required fields")
)
