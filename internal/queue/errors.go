package queue

import "errors"

var (
	// ErrQueueUnavailable means the backing database could not be reached.
	// Enqueue callers treat this as a transient condition.
	ErrQueueUnavailable = errors.New("queue is unavailable")

	// ErrJobNotFound means a Complete/Retry/Fail targeted a job ID that no
	// longer exists
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidPayload means a dequeued job's payload could not be decoded
	ErrInvalidPayload = errors.New("invalid job payload")
)
