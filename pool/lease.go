package pool

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Lease is a borrowed connection plus the obligation to return it. Release
// is safe to call any number of times but returns the connection exactly
// once, so `defer lease.Release()` covers every exit path including panics.
// Holding on to the connection after Release is a use-after-free bug.
type Lease[C any] struct {
	pool       *Pool[C]
	rec        *record[C]
	acquiredAt time.Time
	released   atomic.Bool
}

// Conn returns the borrowed connection.
func (l *Lease[C]) Conn() C {
	return l.rec.conn
}

// ConnID identifies the underlying pooled connection, mainly for logging.
func (l *Lease[C]) ConnID() uuid.UUID {
	return l.rec.id
}

// Release hands the connection back to the pool and records the checkout
// duration. Only the first call has any effect.
func (l *Lease[C]) Release() {
	if !l.released.CompareAndSwap(false, true) {
		return
	}
	l.pool.release(l.rec, time.Since(l.acquiredAt))
}
