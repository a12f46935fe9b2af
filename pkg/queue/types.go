package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task is one scheduled unit of work, typically a notification fan-out for
// a single post. Payload is the JSON encoding of a typed task struct; Name
// identifies which handler decodes it.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Payload     []byte     `json:"payload,omitempty"`
	Status      TaskStatus `json:"status"`
	RetryCount  int8       `json:"retry_count"`
	MaxRetries  int8       `json:"max_retries"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	CreatedAt   time.Time  `json:"created_at"`
	Error       string     `json:"error,omitempty"`
}

// taskName derives the handler name from a payload's type, so enqueue and
// handler registration agree without string constants.
func taskName(payload any) string {
	return strings.TrimLeft(fmt.Sprintf("%T", payload), "*")
}
