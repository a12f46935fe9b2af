// Package queue provides a small background task queue used to run
// notification fan-out off the request path.
//
// A task is a JSON-encoded typed payload. The Enqueuer stores it through a
// TaskRepository; a Worker polls the repository, claims due tasks, and
// dispatches them to handlers registered by payload type:
//
//	repo := queue.NewMemoryTaskRepository()
//	enq, _ := queue.NewEnqueuer(repo)
//	worker, _ := queue.NewWorker(repo)
//	_ = worker.RegisterHandler(queue.NewTaskHandler(
//		func(ctx context.Context, t queue.NotifyFollowingUsersTask) error {
//			return commands.NotifyFollowingUsers(ctx, t.Post)
//		},
//	))
//	worker.Start(ctx)
//	defer worker.Stop()
//
//	_ = enq.Enqueue(ctx, queue.NotifyFollowingUsersTask{Post: post})
//
// Failed tasks are retried with a doubling delay until MaxRetries is
// exhausted, then marked failed with the last error recorded. Because
// notification fan-out is idempotent, re-running a partially delivered
// task only notifies the users who were not reached before.
//
// Three repositories are provided: in-memory for tests, Postgres using
// FOR UPDATE SKIP LOCKED, and Redis using a sorted set scored by the
// task's ready time.
package queue
