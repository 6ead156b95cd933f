package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolClosed is returned for any operation attempted after Close.
	ErrPoolClosed = errors.New("connection pool is closed")
	// ErrAcquireTimeout is returned when no connection became available within
	// the caller's deadline and the pool is at capacity.
	ErrAcquireTimeout = errors.New("timed out waiting for a connection")
	// ErrCreationFailed is returned when the connector could not produce a
	// connection and the pool had no other way to satisfy the request.
	ErrCreationFailed = errors.New("connection creation failed")
	// ErrHealthCheckFailed marks a connection that failed its liveness probe.
	// It is surfaced to callers only when replacement also fails.
	ErrHealthCheckFailed = errors.New("connection failed health check")
)

// PoolError wraps errors from pool operations with the pool name and the
// operation that failed.
type PoolError struct {
	Pool string
	Op   string
	Err  error
}

func (e *PoolError) Error() string {
	return fmt.Sprintf("pool %s: %s: %v", e.Pool, e.Op, e.Err)
}

func (e *PoolError) Unwrap() error {
	return e.Err
}

// IsPoolError checks if an error originated inside a connection pool.
func IsPoolError(err error) bool {
	var target *PoolError
	return errors.As(err, &target)
}

// IsTimeout checks if an error is an acquire timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrAcquireTimeout)
}

// IsClosed checks if an error was caused by operating on a closed pool.
func IsClosed(err error) bool {
	return errors.Is(err, ErrPoolClosed)
}

// errType maps a pool error to the label used on the pool_errors counter.
func errType(err error) string {
	switch {
	case errors.Is(err, ErrAcquireTimeout):
		return "timeout"
	case errors.Is(err, ErrPoolClosed):
		return "closed"
	case errors.Is(err, ErrHealthCheckFailed):
		return "health_check_failed"
	case errors.Is(err, ErrCreationFailed):
		return "creation_failed"
	default:
		return "other"
	}
}
