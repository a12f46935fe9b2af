package forumkit

import "errors"

var (
	// ErrMissingDependency is returned by New when a required collaborator
	// is nil.
	ErrMissingDependency = errors.New("missing required dependency")

	// ErrSearchDisabled is returned by SearchPosts when the engine was
	// built without a search index.
	ErrSearchDisabled = errors.New("search is not enabled")
)
