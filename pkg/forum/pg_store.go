package forum

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is the Postgres implementation of the forum repositories,
// backed by the schema shipped in pkg/pg/migrations. It does not implement
// UserRepository: users live in the host application's store.
//
// Thread order relies on Postgres comparing uuid values bytewise, which
// matches the in-process tie-break in ordering.go.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore wraps a connection pool. The pool is owned by the caller.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) CreateMessageboard(ctx context.Context, mb Messageboard) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO forumkit_messageboards (id, name, description, created_at) VALUES ($1, $2, $3, $4)`,
		mb.ID, mb.Name, mb.Description, mb.CreatedAt)
	return err
}

func (s *PgStore) CreateTopic(ctx context.Context, topic Topic) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO forumkit_topics (id, messageboard_id, title, created_at) VALUES ($1, $2, $3, $4)`,
		topic.ID, topic.MessageboardID, topic.Title, topic.CreatedAt)
	return err
}

func (s *PgStore) TopicByID(ctx context.Context, topicID uuid.UUID) (*Topic, error) {
	var topic Topic
	err := s.pool.QueryRow(ctx,
		`SELECT id, messageboard_id, title, created_at FROM forumkit_topics WHERE id = $1`,
		topicID).Scan(&topic.ID, &topic.MessageboardID, &topic.Title, &topic.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}
	return &topic, nil
}

func (s *PgStore) Follow(ctx context.Context, userID, topicID uuid.UUID, reason FollowReason) error {
	// Manual follows are sticky: an auto-follow never overwrites one, while
	// an explicit follow upgrades a previous auto-follow.
	_, err := s.pool.Exec(ctx,
		`INSERT INTO forumkit_follows (user_id, topic_id, reason, created_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (user_id, topic_id) DO UPDATE SET reason = EXCLUDED.reason
		 WHERE forumkit_follows.reason <> 'manual' AND EXCLUDED.reason = 'manual'`,
		userID, topicID, reason)
	return err
}

func (s *PgStore) Unfollow(ctx context.Context, userID, topicID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM forumkit_follows WHERE user_id = $1 AND topic_id = $2`,
		userID, topicID)
	return err
}

func (s *PgStore) FollowersOf(ctx context.Context, topicID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id FROM forumkit_follows WHERE topic_id = $1`, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PgStore) CreatePost(ctx context.Context, post Post) error {
	if post.ID == uuid.Nil || post.TopicID == uuid.Nil || post.AuthorID == uuid.Nil {
		return ErrInvalidPost
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO forumkit_posts (id, topic_id, messageboard_id, author_id, content, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		post.ID, post.TopicID, post.MessageboardID, post.AuthorID, post.Content, post.CreatedAt)
	return err
}

func (s *PgStore) PostsInTopic(ctx context.Context, topicID uuid.UUID) ([]Post, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, topic_id, messageboard_id, author_id, content, created_at
		 FROM forumkit_posts WHERE topic_id = $1 ORDER BY created_at, id`, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.TopicID, &p.MessageboardID, &p.AuthorID, &p.Content, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *PgStore) CreatePrivateTopic(ctx context.Context, topic PrivateTopic, memberIDs []uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx,
		`INSERT INTO forumkit_private_topics (id, title, created_at) VALUES ($1, $2, $3)`,
		topic.ID, topic.Title, topic.CreatedAt); err != nil {
		return err
	}
	for _, memberID := range memberIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO forumkit_private_topic_members (private_topic_id, user_id)
			 VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			topic.ID, memberID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *PgStore) AddMember(ctx context.Context, privateTopicID, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO forumkit_private_topic_members (private_topic_id, user_id)
		 SELECT id, $2 FROM forumkit_private_topics WHERE id = $1
		 ON CONFLICT DO NOTHING`,
		privateTopicID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either the topic is missing or the membership already exists;
		// distinguish so callers get a real error for the former.
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM forumkit_private_topics WHERE id = $1)`,
			privateTopicID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrPrivateTopicNotFound
		}
	}
	return nil
}

func (s *PgStore) MembersOf(ctx context.Context, privateTopicID uuid.UUID) ([]uuid.UUID, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM forumkit_private_topics WHERE id = $1)`,
		privateTopicID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrPrivateTopicNotFound
	}

	rows, err := s.pool.Query(ctx,
		`SELECT user_id FROM forumkit_private_topic_members WHERE private_topic_id = $1`,
		privateTopicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PgStore) CreatePrivatePost(ctx context.Context, post PrivatePost) error {
	if post.ID == uuid.Nil || post.PrivateTopicID == uuid.Nil || post.AuthorID == uuid.Nil {
		return ErrInvalidPost
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO forumkit_private_posts (id, private_topic_id, author_id, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		post.ID, post.PrivateTopicID, post.AuthorID, post.Content, post.CreatedAt)
	return err
}

func (s *PgStore) PostsInPrivateTopic(ctx context.Context, privateTopicID uuid.UUID) ([]PrivatePost, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, private_topic_id, author_id, content, created_at
		 FROM forumkit_private_posts WHERE private_topic_id = $1 ORDER BY created_at, id`,
		privateTopicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []PrivatePost
	for rows.Next() {
		var p PrivatePost
		if err := rows.Scan(&p.ID, &p.PrivateTopicID, &p.AuthorID, &p.Content, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
