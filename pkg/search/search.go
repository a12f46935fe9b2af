package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/dmitrymomot/forumkit/pkg/forum"
)

// Config holds the search index settings.
type Config struct {
	Index string `env:"FORUM_SEARCH_INDEX" envDefault:"forumkit-posts"`
}

// Document is the indexed representation of a post.
type Document struct {
	PostID         string `json:"post_id"`
	TopicID        string `json:"topic_id"`
	MessageboardID string `json:"messageboard_id"`
	TopicTitle     string `json:"topic_title"`
	Content        string `json:"content"`
	CreatedAt      string `json:"created_at"`
}

// Hit is one search result.
type Hit struct {
	PostID     uuid.UUID
	TopicID    uuid.UUID
	TopicTitle string
}

// Index maintains the full-text index over public posts and answers
// per-messageboard topic searches.
type Index struct {
	client *opensearch.Client
	index  string
}

// New creates a post index. Construction fails fast on a missing client or
// index name so a half-configured search never reaches request time.
func New(client *opensearch.Client, cfg Config) (*Index, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if cfg.Index == "" {
		return nil, ErrEmptyIndexName
	}
	return &Index{client: client, index: cfg.Index}, nil
}

// IndexPost adds or replaces a post document. Indexing failures are
// reported to the caller; search stays eventually consistent with storage
// and is never the source of truth.
func (i *Index) IndexPost(ctx context.Context, post forum.Post, topicTitle string) error {
	doc := Document{
		PostID:         post.ID.String(),
		TopicID:        post.TopicID.String(),
		MessageboardID: post.MessageboardID.String(),
		TopicTitle:     normalize(topicTitle),
		Content:        normalize(post.Content),
		CreatedAt:      post.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	res, err := i.client.Index(
		i.index,
		bytes.NewReader(body),
		i.client.Index.WithContext(ctx),
		i.client.Index.WithDocumentID(doc.PostID),
		i.client.Index.WithRefresh("false"),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexingFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrIndexingFailed, res.String())
	}
	return nil
}

// DeletePost removes a post document. Deleting an unindexed post is a no-op.
func (i *Index) DeletePost(ctx context.Context, postID uuid.UUID) error {
	res, err := i.client.Delete(
		i.index,
		postID.String(),
		i.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexingFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("%w: %s", ErrIndexingFailed, res.String())
	}
	return nil
}

// Search returns posts on the given messageboard matching the query,
// best match first.
func (i *Index) Search(ctx context.Context, messageboardID uuid.UUID, query string) ([]Hit, error) {
	q := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  normalize(query),
						"fields": []string{"content", "topic_title^2"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"messageboard_id": messageboardID.String()},
				},
			},
		},
	}
	body, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.index),
		i.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchFailed, res.String())
	}

	return decodeHits(res.Body)
}

func decodeHits(r io.Reader) ([]Hit, error) {
	var parsed struct {
		Hits struct {
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	hits := make([]Hit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		postID, err := uuid.Parse(h.Source.PostID)
		if err != nil {
			continue
		}
		topicID, err := uuid.Parse(h.Source.TopicID)
		if err != nil {
			continue
		}
		hits = append(hits, Hit{PostID: postID, TopicID: topicID, TopicTitle: h.Source.TopicTitle})
	}
	return hits, nil
}

// normalize applies NFKC normalization and lowercasing so visually
// identical strings (composed vs decomposed, fullwidth forms) index and
// match identically.
func normalize(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}
