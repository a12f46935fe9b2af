// Package redis provides the Redis connection helper used by the engine's
// task queue backend (pkg/queue).
package redis
