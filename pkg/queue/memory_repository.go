package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryTaskRepository is an in-memory TaskRepository for tests and
// single-process deployments.
type MemoryTaskRepository struct {
	mu    sync.Mutex
	tasks []*Task
}

// NewMemoryTaskRepository creates an empty in-memory repository.
func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{}
}

func (r *MemoryTaskRepository) CreateTask(_ context.Context, task *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *task
	r.tasks = append(r.tasks, &cp)
	return nil
}

func (r *MemoryTaskRepository) ClaimPending(_ context.Context, now time.Time) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var next *Task
	for _, t := range r.tasks {
		if t.Status != TaskStatusPending || t.ScheduledAt.After(now) {
			continue
		}
		if next == nil || t.ScheduledAt.Before(next.ScheduledAt) {
			next = t
		}
	}
	if next == nil {
		return nil, nil
	}
	next.Status = TaskStatusProcessing
	cp := *next
	return &cp, nil
}

func (r *MemoryTaskRepository) CompleteTask(_ context.Context, task *Task) error {
	return r.update(task.ID, func(t *Task) {
		t.Status = TaskStatusCompleted
	})
}

func (r *MemoryTaskRepository) RetryTask(_ context.Context, task *Task, at time.Time) error {
	return r.update(task.ID, func(t *Task) {
		t.Status = TaskStatusPending
		t.RetryCount++
		t.ScheduledAt = at
	})
}

func (r *MemoryTaskRepository) FailTask(_ context.Context, task *Task, cause error) error {
	return r.update(task.ID, func(t *Task) {
		t.Status = TaskStatusFailed
		if cause != nil {
			t.Error = cause.Error()
		}
	})
}

// Tasks returns a snapshot of all stored tasks, useful in tests.
func (r *MemoryTaskRepository) Tasks() []Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, *t)
	}
	return out
}

func (r *MemoryTaskRepository) update(id uuid.UUID, fn func(*Task)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		if t.ID == id {
			fn(t)
			return nil
		}
	}
	return ErrTaskNotFound
}
