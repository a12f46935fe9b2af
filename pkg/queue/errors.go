package queue

import "errors"

var (
	ErrRepositoryNil    = errors.New("task repository is nil")
	ErrPayloadNil       = errors.New("task payload is nil")
	ErrPayloadMarshal   = errors.New("failed to marshal task payload")
	ErrPayloadUnmarshal = errors.New("failed to unmarshal task payload")
	ErrTaskCreate       = errors.New("failed to create task")
	ErrTaskNotFound     = errors.New("task not found")
	ErrHandlerNil       = errors.New("task handler is nil")
	ErrHandlerNotFound  = errors.New("no handler registered for task")
	ErrDuplicateHandler = errors.New("handler already registered for task")
)
