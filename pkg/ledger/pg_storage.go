package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/forumkit/pkg/pg"
)

// PgStore is the Postgres implementation of Store. The unique index on
// (post_id, user_id) is the concurrency-control primitive: a duplicate
// insert surfaces as SQLSTATE 23505 and is translated to created=false,
// so racing fan-out runs converge on one entry without erroring.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore wraps a connection pool. The pool is owned by the caller.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) CreateIfAbsent(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO forumkit_user_post_notifications (post_id, user_id, created_at)
		 VALUES ($1, $2, now())`,
		postID, userID)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *PgStore) NotifiedUserIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id FROM forumkit_user_post_notifications WHERE post_id = $1`, postID)
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

func (s *PgStore) FindReadState(ctx context.Context, privateTopicID, userID uuid.UUID) (*ReadState, error) {
	var state ReadState
	err := s.pool.QueryRow(ctx,
		`SELECT private_topic_id, user_id, read_at FROM forumkit_private_topic_read_states
		 WHERE private_topic_id = $1 AND user_id = $2`,
		privateTopicID, userID).Scan(&state.PrivateTopicID, &state.UserID, &state.ReadAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

func (s *PgStore) UpsertReadState(ctx context.Context, state ReadState) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO forumkit_private_topic_read_states (private_topic_id, user_id, read_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (private_topic_id, user_id) DO UPDATE SET read_at = EXCLUDED.read_at`,
		state.PrivateTopicID, state.UserID, state.ReadAt)
	return err
}

func (s *PgStore) DeleteReadState(ctx context.Context, privateTopicID, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM forumkit_private_topic_read_states WHERE private_topic_id = $1 AND user_id = $2`,
		privateTopicID, userID)
	return err
}
