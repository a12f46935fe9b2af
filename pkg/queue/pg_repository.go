package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGTaskRepository stores tasks in the forumkit_tasks table. Claims use
// FOR UPDATE SKIP LOCKED so concurrent workers never hand out the same
// task twice.
type PGTaskRepository struct {
	pool *pgxpool.Pool
}

// NewPGTaskRepository creates a repository over the given pool.
func NewPGTaskRepository(pool *pgxpool.Pool) (*PGTaskRepository, error) {
	if pool == nil {
		return nil, ErrRepositoryNil
	}
	return &PGTaskRepository{pool: pool}, nil
}

func (r *PGTaskRepository) CreateTask(ctx context.Context, task *Task) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO forumkit_tasks (id, name, payload, status, retry_count, max_retries, scheduled_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		task.ID, task.Name, task.Payload, task.Status,
		task.RetryCount, task.MaxRetries, task.ScheduledAt, task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (r *PGTaskRepository) ClaimPending(ctx context.Context, now time.Time) (*Task, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin claim: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		SELECT id, name, payload, status, retry_count, max_retries, scheduled_at, created_at
		FROM forumkit_tasks
		WHERE status = $1 AND scheduled_at <= $2
		ORDER BY scheduled_at
		LIMIT 1
		FOR UPDATE SKIP LOCKED`,
		TaskStatusPending, now,
	)

	var task Task
	err = row.Scan(&task.ID, &task.Name, &task.Payload, &task.Status,
		&task.RetryCount, &task.MaxRetries, &task.ScheduledAt, &task.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE forumkit_tasks SET status = $1 WHERE id = $2`,
		TaskStatusProcessing, task.ID); err != nil {
		return nil, fmt.Errorf("failed to mark task processing: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}

	task.Status = TaskStatusProcessing
	return &task, nil
}

func (r *PGTaskRepository) CompleteTask(ctx context.Context, task *Task) error {
	return r.setStatus(ctx, task, TaskStatusCompleted, "")
}

func (r *PGTaskRepository) RetryTask(ctx context.Context, task *Task, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE forumkit_tasks
		SET status = $1, retry_count = retry_count + 1, scheduled_at = $2
		WHERE id = $3`,
		TaskStatusPending, at, task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to schedule retry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *PGTaskRepository) FailTask(ctx context.Context, task *Task, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return r.setStatus(ctx, task, TaskStatusFailed, msg)
}

func (r *PGTaskRepository) setStatus(ctx context.Context, task *Task, status TaskStatus, errMsg string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE forumkit_tasks SET status = $1, error = $2 WHERE id = $3`,
		status, errMsg, task.ID)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}
