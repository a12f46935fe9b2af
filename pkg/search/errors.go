package search

import "errors"

var (
	// ErrNilClient is returned when no OpenSearch client is provided.
	ErrNilClient = errors.New("opensearch client cannot be nil")

	// ErrEmptyIndexName is returned when the index name is empty.
	ErrEmptyIndexName = errors.New("search index name cannot be empty")

	// ErrIndexingFailed is returned when a document write is rejected.
	ErrIndexingFailed = errors.New("failed to index post")

	// ErrSearchFailed is returned when a query cannot be executed or parsed.
	ErrSearchFailed = errors.New("search query failed")
)
