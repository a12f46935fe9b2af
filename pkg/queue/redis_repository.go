package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pendingKey = "forumkit:queue:pending"
	taskKeyFmt = "forumkit:queue:task:%s"
)

// completedTaskTTL bounds how long finished task records linger for
// inspection before Redis expires them.
const completedTaskTTL = 24 * time.Hour

// RedisTaskRepository stores tasks in Redis. Pending task IDs live in a
// sorted set scored by ScheduledAt; the task body lives in a plain key.
// A claim removes the ID from the sorted set, and the ZREM reply decides
// the winner when several workers race for the same task.
type RedisTaskRepository struct {
	client redis.UniversalClient
}

// NewRedisTaskRepository creates a repository over the given client.
func NewRedisTaskRepository(client redis.UniversalClient) (*RedisTaskRepository, error) {
	if client == nil {
		return nil, ErrRepositoryNil
	}
	return &RedisTaskRepository{client: client}, nil
}

func (r *RedisTaskRepository) CreateTask(ctx context.Context, task *Task) error {
	if err := r.saveTask(ctx, task, 0); err != nil {
		return err
	}
	return r.client.ZAdd(ctx, pendingKey, redis.Z{
		Score:  float64(task.ScheduledAt.UnixMilli()),
		Member: task.ID.String(),
	}).Err()
}

func (r *RedisTaskRepository) ClaimPending(ctx context.Context, now time.Time) (*Task, error) {
	ids, err := r.client.ZRangeByScore(ctx, pendingKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   fmt.Sprintf("%d", now.UnixMilli()),
		Count: 10,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list due tasks: %w", err)
	}

	for _, id := range ids {
		removed, err := r.client.ZRem(ctx, pendingKey, id).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to claim task %s: %w", id, err)
		}
		if removed == 0 {
			// Another worker won this task.
			continue
		}

		task, err := r.loadTask(ctx, id)
		if err != nil {
			return nil, err
		}
		task.Status = TaskStatusProcessing
		if err := r.saveTask(ctx, task, 0); err != nil {
			return nil, err
		}
		return task, nil
	}
	return nil, nil
}

func (r *RedisTaskRepository) CompleteTask(ctx context.Context, task *Task) error {
	task.Status = TaskStatusCompleted
	return r.saveTask(ctx, task, completedTaskTTL)
}

func (r *RedisTaskRepository) RetryTask(ctx context.Context, task *Task, at time.Time) error {
	task.Status = TaskStatusPending
	task.RetryCount++
	task.ScheduledAt = at
	if err := r.saveTask(ctx, task, 0); err != nil {
		return err
	}
	return r.client.ZAdd(ctx, pendingKey, redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: task.ID.String(),
	}).Err()
}

func (r *RedisTaskRepository) FailTask(ctx context.Context, task *Task, cause error) error {
	task.Status = TaskStatusFailed
	if cause != nil {
		task.Error = cause.Error()
	}
	return r.saveTask(ctx, task, completedTaskTTL)
}

func (r *RedisTaskRepository) saveTask(ctx context.Context, task *Task, ttl time.Duration) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}
	key := fmt.Sprintf(taskKeyFmt, task.ID)
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *RedisTaskRepository) loadTask(ctx context.Context, id string) (*Task, error) {
	data, err := r.client.Get(ctx, fmt.Sprintf(taskKeyFmt, id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to load task %s: %w", id, err)
	}
	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to decode task %s: %w", id, err)
	}
	return &task, nil
}
