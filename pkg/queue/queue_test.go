package queue_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/forumkit/pkg/forum"
	"github.com/dmitrymomot/forumkit/pkg/queue"
)

func TestEnqueuer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("requires a repository", func(t *testing.T) {
		t.Parallel()
		_, err := queue.NewEnqueuer(nil)
		require.ErrorIs(t, err, queue.ErrRepositoryNil)
	})

	t.Run("rejects nil payload", func(t *testing.T) {
		t.Parallel()
		enq, err := queue.NewEnqueuer(queue.NewMemoryTaskRepository())
		require.NoError(t, err)
		require.ErrorIs(t, enq.Enqueue(ctx, nil), queue.ErrPayloadNil)
	})

	t.Run("stores a pending task named after the payload type", func(t *testing.T) {
		t.Parallel()
		repo := queue.NewMemoryTaskRepository()
		enq, err := queue.NewEnqueuer(repo)
		require.NoError(t, err)

		post := forum.Post{ID: uuid.New(), TopicID: uuid.New(), AuthorID: uuid.New(), CreatedAt: time.Now()}
		require.NoError(t, enq.Enqueue(ctx, queue.NotifyFollowingUsersTask{Post: post}))

		tasks := repo.Tasks()
		require.Len(t, tasks, 1)
		assert.Equal(t, queue.TaskStatusPending, tasks[0].Status)
		assert.Contains(t, tasks[0].Name, "NotifyFollowingUsersTask")
		assert.NotEmpty(t, tasks[0].Payload)
	})

	t.Run("delayed tasks are not claimable early", func(t *testing.T) {
		t.Parallel()
		repo := queue.NewMemoryTaskRepository()
		enq, err := queue.NewEnqueuer(repo)
		require.NoError(t, err)

		now := time.Now()
		require.NoError(t, enq.EnqueueAt(ctx, queue.NotifyFollowingUsersTask{}, now.Add(time.Hour)))

		task, err := repo.ClaimPending(ctx, now)
		require.NoError(t, err)
		assert.Nil(t, task)

		task, err = repo.ClaimPending(ctx, now.Add(2*time.Hour))
		require.NoError(t, err)
		assert.NotNil(t, task)
	})
}

func TestMemoryTaskRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newTask := func(at time.Time) *queue.Task {
		return &queue.Task{
			ID:          uuid.New(),
			Name:        "test",
			Payload:     []byte(`{}`),
			Status:      queue.TaskStatusPending,
			MaxRetries:  3,
			ScheduledAt: at,
			CreatedAt:   time.Now(),
		}
	}

	t.Run("claims the earliest due task once", func(t *testing.T) {
		t.Parallel()
		repo := queue.NewMemoryTaskRepository()
		now := time.Now()
		early := newTask(now.Add(-2 * time.Minute))
		late := newTask(now.Add(-time.Minute))
		require.NoError(t, repo.CreateTask(ctx, late))
		require.NoError(t, repo.CreateTask(ctx, early))

		claimed, err := repo.ClaimPending(ctx, now)
		require.NoError(t, err)
		require.NotNil(t, claimed)
		assert.Equal(t, early.ID, claimed.ID)
		assert.Equal(t, queue.TaskStatusProcessing, claimed.Status)

		second, err := repo.ClaimPending(ctx, now)
		require.NoError(t, err)
		require.NotNil(t, second)
		assert.Equal(t, late.ID, second.ID)

		third, err := repo.ClaimPending(ctx, now)
		require.NoError(t, err)
		assert.Nil(t, third)
	})

	t.Run("retry returns the task to the pending set", func(t *testing.T) {
		t.Parallel()
		repo := queue.NewMemoryTaskRepository()
		now := time.Now()
		task := newTask(now.Add(-time.Minute))
		require.NoError(t, repo.CreateTask(ctx, task))

		claimed, err := repo.ClaimPending(ctx, now)
		require.NoError(t, err)
		require.NotNil(t, claimed)

		retryAt := now.Add(time.Minute)
		require.NoError(t, repo.RetryTask(ctx, claimed, retryAt))

		tasks := repo.Tasks()
		require.Len(t, tasks, 1)
		assert.Equal(t, queue.TaskStatusPending, tasks[0].Status)
		assert.Equal(t, int8(1), tasks[0].RetryCount)

		early, err := repo.ClaimPending(ctx, now)
		require.NoError(t, err)
		assert.Nil(t, early, "not due until the retry time")

		due, err := repo.ClaimPending(ctx, retryAt.Add(time.Second))
		require.NoError(t, err)
		assert.NotNil(t, due)
	})

	t.Run("fail records the cause", func(t *testing.T) {
		t.Parallel()
		repo := queue.NewMemoryTaskRepository()
		task := newTask(time.Now())
		require.NoError(t, repo.CreateTask(ctx, task))
		require.NoError(t, repo.FailTask(ctx, task, errors.New("no handler")))

		tasks := repo.Tasks()
		require.Len(t, tasks, 1)
		assert.Equal(t, queue.TaskStatusFailed, tasks[0].Status)
		assert.Equal(t, "no handler", tasks[0].Error)
	})

	t.Run("updating an unknown task errors", func(t *testing.T) {
		t.Parallel()
		repo := queue.NewMemoryTaskRepository()
		err := repo.CompleteTask(ctx, newTask(time.Now()))
		require.ErrorIs(t, err, queue.ErrTaskNotFound)
	})
}

func TestTaskHandler(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("decodes the payload and delegates", func(t *testing.T) {
		t.Parallel()
		var got queue.NotifyFollowingUsersTask
		h := queue.NewTaskHandler(func(ctx context.Context, task queue.NotifyFollowingUsersTask) error {
			got = task
			return nil
		})
		assert.Contains(t, h.Name(), "NotifyFollowingUsersTask")

		postID := uuid.New()
		payload := []byte(`{"post":{"id":"` + postID.String() + `"}}`)
		require.NoError(t, h.Handle(ctx, payload))
		assert.Equal(t, postID, got.Post.ID)
	})

	t.Run("malformed payload errors", func(t *testing.T) {
		t.Parallel()
		h := queue.NewTaskHandler(func(ctx context.Context, task queue.NotifyFollowingUsersTask) error {
			t.Fatal("handler must not run")
			return nil
		})
		err := h.Handle(ctx, []byte(`{`))
		require.ErrorIs(t, err, queue.ErrPayloadUnmarshal)
	})
}

func TestWorker(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("requires a repository", func(t *testing.T) {
		t.Parallel()
		_, err := queue.NewWorker(nil)
		require.ErrorIs(t, err, queue.ErrRepositoryNil)
	})

	t.Run("rejects duplicate handlers", func(t *testing.T) {
		t.Parallel()
		w, err := queue.NewWorker(queue.NewMemoryTaskRepository())
		require.NoError(t, err)

		h := queue.NewTaskHandler(func(ctx context.Context, task queue.NotifyFollowingUsersTask) error {
			return nil
		})
		require.NoError(t, w.RegisterHandler(h))
		require.ErrorIs(t, w.RegisterHandler(h), queue.ErrDuplicateHandler)
	})

	t.Run("processes enqueued tasks", func(t *testing.T) {
		t.Parallel()
		repo := queue.NewMemoryTaskRepository()
		enq, err := queue.NewEnqueuer(repo)
		require.NoError(t, err)

		done := make(chan uuid.UUID, 1)
		w, err := queue.NewWorker(repo, queue.WithPullInterval(10*time.Millisecond))
		require.NoError(t, err)
		require.NoError(t, w.RegisterHandler(queue.NewTaskHandler(
			func(ctx context.Context, task queue.NotifyFollowingUsersTask) error {
				done <- task.Post.ID
				return nil
			},
		)))

		post := forum.Post{ID: uuid.New(), TopicID: uuid.New(), AuthorID: uuid.New(), CreatedAt: time.Now()}
		require.NoError(t, enq.Enqueue(ctx, queue.NotifyFollowingUsersTask{Post: post}))

		w.Start(ctx)
		defer w.Stop()

		select {
		case id := <-done:
			assert.Equal(t, post.ID, id)
		case <-time.After(2 * time.Second):
			t.Fatal("task was not processed")
		}

		require.Eventually(t, func() bool {
			tasks := repo.Tasks()
			return len(tasks) == 1 && tasks[0].Status == queue.TaskStatusCompleted
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("retries until MaxRetries then fails", func(t *testing.T) {
		t.Parallel()
		repo := queue.NewMemoryTaskRepository()
		enq, err := queue.NewEnqueuer(repo, queue.WithMaxRetries(1))
		require.NoError(t, err)

		w, err := queue.NewWorker(repo,
			queue.WithPullInterval(10*time.Millisecond),
			queue.WithRetryDelay(10*time.Millisecond),
		)
		require.NoError(t, err)

		var attempts atomic.Int32
		require.NoError(t, w.RegisterHandler(queue.NewTaskHandler(
			func(ctx context.Context, task queue.NotifyPrivateTopicUsersTask) error {
				attempts.Add(1)
				return errors.New("delivery failed")
			},
		)))

		require.NoError(t, enq.Enqueue(ctx, queue.NotifyPrivateTopicUsersTask{}))

		w.Start(ctx)
		defer w.Stop()

		require.Eventually(t, func() bool {
			tasks := repo.Tasks()
			return len(tasks) == 1 && tasks[0].Status == queue.TaskStatusFailed
		}, 3*time.Second, 10*time.Millisecond)

		assert.Equal(t, int32(2), attempts.Load(), "initial attempt plus one retry")
		assert.Equal(t, "delivery failed", repo.Tasks()[0].Error)
	})

	t.Run("unhandled task is failed, not retried", func(t *testing.T) {
		t.Parallel()
		repo := queue.NewMemoryTaskRepository()
		enq, err := queue.NewEnqueuer(repo)
		require.NoError(t, err)
		require.NoError(t, enq.Enqueue(ctx, queue.NotifyFollowingUsersTask{}))

		w, err := queue.NewWorker(repo, queue.WithPullInterval(10*time.Millisecond))
		require.NoError(t, err)

		w.Start(ctx)
		defer w.Stop()

		require.Eventually(t, func() bool {
			tasks := repo.Tasks()
			return len(tasks) == 1 && tasks[0].Status == queue.TaskStatusFailed
		}, 2*time.Second, 10*time.Millisecond)
	})
}
