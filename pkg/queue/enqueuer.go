package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Enqueuer schedules tasks for execution.
type Enqueuer struct {
	repo       TaskRepository
	maxRetries int8
}

// EnqueuerOption configures an Enqueuer.
type EnqueuerOption func(*Enqueuer)

// WithMaxRetries sets how many times a failing task is retried before it
// is marked failed permanently.
func WithMaxRetries(n int8) EnqueuerOption {
	return func(e *Enqueuer) { e.maxRetries = n }
}

// NewEnqueuer creates an Enqueuer over the given repository.
func NewEnqueuer(repo TaskRepository, opts ...EnqueuerOption) (*Enqueuer, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}
	e := &Enqueuer{repo: repo, maxRetries: 3}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Enqueue schedules the payload for immediate execution.
func (e *Enqueuer) Enqueue(ctx context.Context, payload any) error {
	return e.EnqueueAt(ctx, payload, time.Now())
}

// EnqueueAt schedules the payload for execution at the given time.
func (e *Enqueuer) EnqueueAt(ctx context.Context, payload any, at time.Time) error {
	if payload == nil {
		return ErrPayloadNil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPayloadMarshal, err)
	}

	task := &Task{
		ID:          uuid.New(),
		Name:        taskName(payload),
		Payload:     data,
		Status:      TaskStatusPending,
		MaxRetries:  e.maxRetries,
		ScheduledAt: at,
		CreatedAt:   time.Now(),
	}
	if err := e.repo.CreateTask(ctx, task); err != nil {
		return fmt.Errorf("%w: %v", ErrTaskCreate, err)
	}
	return nil
}
