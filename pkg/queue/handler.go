package queue

import (
	"context"
	"encoding/json"
	"fmt"
)

// Handler processes a single task type identified by Name.
type Handler interface {
	Name() string
	Handle(ctx context.Context, payload json.RawMessage) error
}

// TaskHandlerFunc handles a decoded task payload of type T.
type TaskHandlerFunc[T any] func(ctx context.Context, payload T) error

type taskHandler[T any] struct {
	name    string
	handler TaskHandlerFunc[T]
}

// NewTaskHandler wraps a typed handler function into a Handler. The handler
// name is derived from the payload type, matching the name used when the
// task was enqueued.
func NewTaskHandler[T any](handler TaskHandlerFunc[T]) Handler {
	var zero T
	return &taskHandler[T]{
		name:    taskName(zero),
		handler: handler,
	}
}

func (h *taskHandler[T]) Name() string { return h.name }

func (h *taskHandler[T]) Handle(ctx context.Context, payload json.RawMessage) error {
	var data T
	if err := json.Unmarshal(payload, &data); err != nil {
		return fmt.Errorf("%w: %v", ErrPayloadUnmarshal, err)
	}
	return h.handler(ctx, data)
}
