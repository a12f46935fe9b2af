package queue

import (
	"context"
	"time"
)

// TaskRepository persists tasks between enqueue and execution.
//
// ClaimPending must hand a given task to at most one caller: concurrent
// workers polling the same backend race on the claim, and the backend's
// atomic remove/update decides the winner.
type TaskRepository interface {
	// CreateTask stores a new pending task.
	CreateTask(ctx context.Context, task *Task) error

	// ClaimPending atomically claims the next task whose ScheduledAt is
	// due, or returns nil when none is ready.
	ClaimPending(ctx context.Context, now time.Time) (*Task, error)

	// CompleteTask marks a claimed task as done.
	CompleteTask(ctx context.Context, task *Task) error

	// RetryTask returns a claimed task to the pending set with an updated
	// retry count, error message, and next attempt time.
	RetryTask(ctx context.Context, task *Task, at time.Time) error

	// FailTask marks a claimed task as permanently failed, recording the
	// cause.
	FailTask(ctx context.Context, task *Task, cause error) error
}
