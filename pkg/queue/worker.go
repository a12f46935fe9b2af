package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Worker polls the task repository and dispatches claimed tasks to
// registered handlers. Failed tasks are retried with a doubling delay
// until MaxRetries is exhausted.
type Worker struct {
	repo         TaskRepository
	handlers     map[string]Handler
	log          *slog.Logger
	pullInterval time.Duration
	retryDelay   time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithPullInterval sets how often the worker polls for pending tasks.
func WithPullInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.pullInterval = d
		}
	}
}

// WithRetryDelay sets the base delay before a failed task is retried.
// The delay doubles with each attempt.
func WithRetryDelay(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.retryDelay = d
		}
	}
}

// WithWorkerLogger sets the logger used by the worker.
func WithWorkerLogger(log *slog.Logger) WorkerOption {
	return func(w *Worker) {
		if log != nil {
			w.log = log
		}
	}
}

// NewWorker creates a Worker over the given repository.
func NewWorker(repo TaskRepository, opts ...WorkerOption) (*Worker, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}
	w := &Worker{
		repo:         repo,
		handlers:     make(map[string]Handler),
		log:          slog.Default(),
		pullInterval: time.Second,
		retryDelay:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// RegisterHandler registers a handler for its task name. Registering two
// handlers for the same name is an error.
func (w *Worker) RegisterHandler(h Handler) error {
	if h == nil {
		return ErrHandlerNil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.handlers[h.Name()]; ok {
		return ErrDuplicateHandler
	}
	w.handlers[h.Name()] = h
	return nil
}

// Start begins polling in a background goroutine. It returns immediately.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	w.running = true
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.run(ctx)
}

// Stop cancels the polling loop and waits for the in-flight task, if any,
// to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel, done := w.cancel, w.done
	w.running = false
	w.mu.Unlock()

	cancel()
	<-done
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.pullInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain claims and processes pending tasks until none remain or the
// context is cancelled.
func (w *Worker) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		task, err := w.repo.ClaimPending(ctx, time.Now())
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				w.log.ErrorContext(ctx, "failed to claim task", slog.Any("error", err))
			}
			return
		}
		if task == nil {
			return
		}
		w.process(ctx, task)
	}
}

func (w *Worker) process(ctx context.Context, task *Task) {
	handler, ok := w.handlerFor(task.Name)
	if !ok {
		w.log.ErrorContext(ctx, "no handler for task",
			slog.String("task", task.Name),
			slog.String("task_id", task.ID.String()))
		if err := w.repo.FailTask(ctx, task, ErrHandlerNotFound); err != nil {
			w.log.ErrorContext(ctx, "failed to mark task failed", slog.Any("error", err))
		}
		return
	}

	if err := handler.Handle(ctx, task.Payload); err != nil {
		w.handleFailure(ctx, task, err)
		return
	}

	if err := w.repo.CompleteTask(ctx, task); err != nil {
		w.log.ErrorContext(ctx, "failed to complete task",
			slog.String("task", task.Name),
			slog.Any("error", err))
	}
}

func (w *Worker) handleFailure(ctx context.Context, task *Task, cause error) {
	if task.RetryCount >= task.MaxRetries {
		w.log.ErrorContext(ctx, "task failed permanently",
			slog.String("task", task.Name),
			slog.String("task_id", task.ID.String()),
			slog.Int("retries", int(task.RetryCount)),
			slog.Any("error", cause))
		if err := w.repo.FailTask(ctx, task, cause); err != nil {
			w.log.ErrorContext(ctx, "failed to mark task failed", slog.Any("error", err))
		}
		return
	}

	delay := w.retryDelay << task.RetryCount
	w.log.WarnContext(ctx, "task failed, scheduling retry",
		slog.String("task", task.Name),
		slog.String("task_id", task.ID.String()),
		slog.Int("retry", int(task.RetryCount)+1),
		slog.Duration("delay", delay),
		slog.Any("error", cause))
	if err := w.repo.RetryTask(ctx, task, time.Now().Add(delay)); err != nil {
		w.log.ErrorContext(ctx, "failed to schedule retry", slog.Any("error", err))
	}
}

func (w *Worker) handlerFor(name string) (Handler, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	h, ok := w.handlers[name]
	return h, ok
}
