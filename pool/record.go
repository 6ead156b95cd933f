package pool

import (
	"time"

	"github.com/google/uuid"
)

// ConnectionState describes where a pooled connection is in its lifecycle.
type ConnectionState int

const (
	// StateIdle means the connection sits in the availability queue.
	StateIdle ConnectionState = iota
	// StateActive means the connection is checked out by exactly one caller.
	StateActive
	// StateUnhealthy means the connection failed validation and is pending removal.
	StateUnhealthy
	// StateClosed means the connection has been torn down.
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateUnhealthy:
		return "unhealthy"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// connStats tracks per-connection usage. It is only ever mutated by whichever
// entity currently owns the record (the caller holding it Active, or the
// health monitor while it is Idle), so it needs no lock of its own.
type connStats struct {
	createdAt      time.Time
	lastUsedAt     time.Time
	totalUses      uint64
	totalErrors    uint64
	lastError      string
	healthFailures int
}

// record pairs one raw connection with its state and bookkeeping. Records are
// created and destroyed only by the pool; the Active state is the mutual
// exclusion marker guaranteeing a single holder at a time.
type record[C any] struct {
	id       uuid.UUID
	conn     C
	state    ConnectionState
	stats    connStats
	poolName string
}

func newRecord[C any](conn C, poolName string) *record[C] {
	now := time.Now()
	return &record[C]{
		id:       uuid.New(),
		conn:     conn,
		state:    StateIdle,
		poolName: poolName,
		stats: connStats{
			createdAt:  now,
			lastUsedAt: now,
		},
	}
}

// markActive transitions Idle -> Active and bumps usage counters. The pool
// only calls this on records it just dequeued or freshly created, so the
// record cannot be observed by anyone else.
func (r *record[C]) markActive() {
	r.state = StateActive
	r.stats.totalUses++
	r.stats.lastUsedAt = time.Now()
}

// markIdle transitions Active -> Idle.
func (r *record[C]) markIdle() {
	r.state = StateIdle
}

// markUnhealthy records a failure and moves the record to Unhealthy from any state.
func (r *record[C]) markUnhealthy(err error) {
	r.state = StateUnhealthy
	r.stats.totalErrors++
	if err != nil {
		r.stats.lastError = err.Error()
	}
}

// isStale reports whether an idle record has gone unused longer than maxIdle.
func (r *record[C]) isStale(maxIdle time.Duration) bool {
	return r.state == StateIdle && time.Since(r.stats.lastUsedAt) > maxIdle
}
