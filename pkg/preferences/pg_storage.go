package preferences

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is the Postgres implementation of Store. Global settings live in
// one row per (user, notifier) with independent nullable columns for the
// followed and private scopes, so "never set" and "explicitly disabled"
// stay distinguishable.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore wraps a connection pool. The pool is owned by the caller.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) GlobalForFollowedTopics(ctx context.Context, userID uuid.UUID, notifierKey string) (*bool, error) {
	return s.scanOptional(ctx,
		`SELECT followed_topics_enabled FROM forumkit_notification_preferences
		 WHERE user_id = $1 AND notifier_key = $2`,
		userID, notifierKey)
}

func (s *PgStore) GlobalForPrivateTopics(ctx context.Context, userID uuid.UUID, notifierKey string) (*bool, error) {
	return s.scanOptional(ctx,
		`SELECT private_topics_enabled FROM forumkit_notification_preferences
		 WHERE user_id = $1 AND notifier_key = $2`,
		userID, notifierKey)
}

func (s *PgStore) MessageboardForFollowedTopics(ctx context.Context, userID, messageboardID uuid.UUID, notifierKey string) (*bool, error) {
	return s.scanOptional(ctx,
		`SELECT enabled FROM forumkit_messageboard_notification_preferences
		 WHERE user_id = $1 AND messageboard_id = $2 AND notifier_key = $3`,
		userID, messageboardID, notifierKey)
}

// scanOptional maps both "no row" and "NULL column" to absent (nil).
func (s *PgStore) scanOptional(ctx context.Context, query string, args ...any) (*bool, error) {
	var enabled *bool
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&enabled); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return enabled, nil
}

func (s *PgStore) SetGlobalForFollowedTopics(ctx context.Context, userID uuid.UUID, notifierKey string, enabled bool) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO forumkit_notification_preferences (user_id, notifier_key, followed_topics_enabled)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, notifier_key) DO UPDATE SET followed_topics_enabled = EXCLUDED.followed_topics_enabled`,
		userID, notifierKey, enabled)
	return err
}

func (s *PgStore) SetGlobalForPrivateTopics(ctx context.Context, userID uuid.UUID, notifierKey string, enabled bool) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO forumkit_notification_preferences (user_id, notifier_key, private_topics_enabled)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, notifier_key) DO UPDATE SET private_topics_enabled = EXCLUDED.private_topics_enabled`,
		userID, notifierKey, enabled)
	return err
}

func (s *PgStore) SetMessageboardForFollowedTopics(ctx context.Context, userID, messageboardID uuid.UUID, notifierKey string, enabled bool) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO forumkit_messageboard_notification_preferences (user_id, messageboard_id, notifier_key, enabled)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, messageboard_id, notifier_key) DO UPDATE SET enabled = EXCLUDED.enabled`,
		userID, messageboardID, notifierKey, enabled)
	return err
}
