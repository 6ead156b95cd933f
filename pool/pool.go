// Package pool provides a generic, protocol-agnostic connection pool with
// bounded capacity, acquisition backpressure, background health monitoring
// and automatic replacement of unhealthy or stale connections.
package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Connector supplies the three lifecycle hooks the pool needs for a
// connection type. Hooks may block on I/O; the pool never invokes them while
// holding its internal lock.
//
// Close must tolerate being called more than once for the same connection: a
// connection checked out during pool shutdown is torn down by Close() and
// again when its lease is released.
type Connector[C any] interface {
	// Connect establishes one new raw connection.
	Connect(ctx context.Context) (C, error)
	// CheckHealth runs a lightweight liveness probe. nil means healthy.
	CheckHealth(ctx context.Context, conn C) error
	// Close tears the connection down. Best effort; implementations log
	// their own failures.
	Close(conn C)
}

// errAtCapacity is an internal signal that the pool cannot grow further.
var errAtCapacity = errors.New("pool is at capacity")

// Pool manages a bounded set of reusable connections of type C. Construct
// with New, then call Initialize before acquiring. A Pool is a plain value
// owned by whichever component needs it; there is no global registry of
// pools inside this package.
type Pool[C any] struct {
	cfg       Config
	connector Connector[C]
	log       *slog.Logger
	obs       Observer

	mu      sync.Mutex
	records map[uuid.UUID]*record[C]
	pending int // connections being created, counted against MaxSize
	started bool

	// Usage counters of retired records, folded in so Stats stays cumulative.
	retiredUses   uint64
	retiredErrors uint64

	idle   chan *record[C]
	closed atomic.Bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// New creates a pool over the given connector. Missing config fields are
// filled with defaults. The pool is inert until Initialize is called.
func New[C any](cfg Config, connector Connector[C]) *Pool[C] {
	cfg = cfg.withDefaults()
	return &Pool[C]{
		cfg:       cfg,
		connector: connector,
		log:       cfg.Logger.With("pool", cfg.Name),
		obs:       cfg.Observer,
		records:   make(map[uuid.UUID]*record[C]),
		idle:      make(chan *record[C], cfg.MaxSize),
		done:      make(chan struct{}),
	}
}

// Name returns the pool's configured name.
func (p *Pool[C]) Name() string {
	return p.cfg.Name
}

// Initialize pre-creates up to MinSize connections and starts the health
// monitor. Creation failures are logged and tolerated: in a degraded
// environment the pool may start below MinSize and the monitor refills it
// once the backend recovers. Calling Initialize again is a no-op.
func (p *Pool[C]) Initialize(ctx context.Context) error {
	if p.closed.Load() {
		return &PoolError{Pool: p.cfg.Name, Op: "initialize", Err: ErrPoolClosed}
	}

	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return nil
	}
	p.started = true
	p.mu.Unlock()

	created := 0
	for i := 0; i < p.cfg.MinSize; i++ {
		rec, err := p.createTracked(ctx)
		if err != nil {
			p.log.Warn("failed to create initial connection", "error", err)
			continue
		}
		p.enqueue(rec)
		created++
	}

	p.log.Info("pool initialized",
		"connections", created,
		"min_size", p.cfg.MinSize,
		"max_size", p.cfg.MaxSize)

	p.wg.Add(1)
	go p.runMonitor()
	return nil
}

// Acquire borrows a connection, waiting up to the configured AcquireTimeout.
func (p *Pool[C]) Acquire(ctx context.Context) (*Lease[C], error) {
	return p.AcquireTimeout(ctx, p.cfg.AcquireTimeout)
}

// AcquireTimeout borrows a connection, waiting up to the given timeout for
// one to become available. If the queue stays empty for the full wait and
// the pool is below MaxSize, one connection is created on demand; at
// capacity the caller receives ErrAcquireTimeout. A dequeued connection is
// re-validated before being handed out and replaced (with one bounded retry)
// if the probe fails.
func (p *Pool[C]) AcquireTimeout(ctx context.Context, timeout time.Duration) (*Lease[C], error) {
	start := time.Now()
	retried := false

	for {
		remaining := timeout - time.Since(start)
		if remaining < 0 {
			remaining = 0
		}

		rec, fresh, err := p.take(ctx, remaining)
		if err != nil {
			p.obs.PoolError(p.cfg.Name, errType(err))
			return nil, &PoolError{Pool: p.cfg.Name, Op: "acquire", Err: err}
		}

		if !fresh {
			// A successful dequeue does not guarantee the connection is
			// still usable; it may have died since its last release.
			if herr := p.connector.CheckHealth(ctx, rec.conn); herr != nil {
				p.obs.HealthCheck(p.cfg.Name, false)
				p.mu.Lock()
				rec.markUnhealthy(herr)
				p.mu.Unlock()
				p.log.Warn("acquired connection failed validation", "conn_id", rec.id, "error", herr)

				p.retire(rec)
				repl, cerr := p.createTracked(ctx)
				if cerr != nil {
					p.obs.PoolError(p.cfg.Name, "creation_failed")
					return nil, &PoolError{
						Pool: p.cfg.Name,
						Op:   "acquire",
						Err:  fmt.Errorf("%w: replacement: %v", ErrCreationFailed, cerr),
					}
				}
				if !retried {
					retried = true
					p.enqueue(repl)
					continue
				}
				// Second bad dequeue in a row: hand out the fresh
				// replacement directly instead of looping again.
				rec = repl
			} else {
				p.obs.HealthCheck(p.cfg.Name, true)
				p.mu.Lock()
				rec.stats.healthFailures = 0
				p.mu.Unlock()
			}
		}

		p.mu.Lock()
		rec.markActive()
		p.mu.Unlock()
		p.publishSizes()
		p.obs.WaitTime(p.cfg.Name, time.Since(start))

		return &Lease[C]{pool: p, rec: rec, acquiredAt: time.Now()}, nil
	}
}

// With acquires a connection, runs fn with it and releases it on every exit
// path, including panics. This is the sanctioned way to use the pool for
// call-scoped work.
func (p *Pool[C]) With(ctx context.Context, fn func(conn C) error) error {
	lease, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer lease.Release()
	return fn(lease.Conn())
}

// take dequeues an idle record, waiting up to timeout, falling back to
// on-demand creation once the wait expires. fresh reports whether the record
// came straight from the connector and therefore needs no re-validation.
func (p *Pool[C]) take(ctx context.Context, timeout time.Duration) (rec *record[C], fresh bool, err error) {
	if p.closed.Load() {
		return nil, false, ErrPoolClosed
	}

	select {
	case rec := <-p.idle:
		return rec, false, nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case rec := <-p.idle:
		return rec, false, nil
	case <-p.done:
		return nil, false, ErrPoolClosed
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, false, ErrAcquireTimeout
		}
		return nil, false, ctx.Err()
	case <-timer.C:
	}

	created, cerr := p.createTracked(ctx)
	if cerr != nil {
		if errors.Is(cerr, errAtCapacity) {
			return nil, false, ErrAcquireTimeout
		}
		return nil, false, cerr
	}
	return created, true, nil
}

// createTracked reserves capacity, dials a connection outside the lock and
// registers the resulting record. It fails with errAtCapacity when the pool
// cannot grow and ErrPoolClosed when shutdown has begun.
func (p *Pool[C]) createTracked(ctx context.Context) (*record[C], error) {
	p.mu.Lock()
	if p.closed.Load() {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if len(p.records)+p.pending >= p.cfg.MaxSize {
		p.mu.Unlock()
		return nil, errAtCapacity
	}
	p.pending++
	p.mu.Unlock()

	conn, err := p.connector.Connect(ctx)

	p.mu.Lock()
	p.pending--
	if err != nil {
		p.mu.Unlock()
		p.obs.PoolError(p.cfg.Name, "creation_failed")
		return nil, fmt.Errorf("%w: %v", ErrCreationFailed, err)
	}
	if p.closed.Load() {
		p.mu.Unlock()
		p.connector.Close(conn)
		return nil, ErrPoolClosed
	}
	rec := newRecord(conn, p.cfg.Name)
	p.records[rec.id] = rec
	p.mu.Unlock()

	p.publishSizes()
	return rec, nil
}

// enqueue marks a record idle and offers it to the availability queue. If
// the queue is unexpectedly full the record is dropped instead of blocking
// the caller.
func (p *Pool[C]) enqueue(rec *record[C]) {
	p.mu.Lock()
	rec.markIdle()
	p.mu.Unlock()

	select {
	case p.idle <- rec:
		p.publishSizes()
	default:
		p.retire(rec)
	}
}

// retire removes a record from tracking and tears down its connection. The
// close hook runs outside the lock.
func (p *Pool[C]) retire(rec *record[C]) {
	p.mu.Lock()
	delete(p.records, rec.id)
	rec.state = StateClosed
	p.retiredUses += rec.stats.totalUses
	p.retiredErrors += rec.stats.totalErrors
	p.mu.Unlock()

	p.connector.Close(rec.conn)
	p.publishSizes()
}

// release returns a borrowed connection to the pool. Called by Lease.Release
// exactly once per lease; never blocks beyond a non-blocking enqueue.
func (p *Pool[C]) release(rec *record[C], held time.Duration) {
	p.obs.UsageTime(p.cfg.Name, held)

	if p.closed.Load() {
		p.mu.Lock()
		rec.state = StateClosed
		p.mu.Unlock()
		p.connector.Close(rec.conn)
		return
	}

	p.mu.Lock()
	_, tracked := p.records[rec.id]
	if !tracked {
		rec.state = StateClosed
	}
	p.mu.Unlock()
	if !tracked {
		// Removed while checked out; nothing to book-keep.
		p.connector.Close(rec.conn)
		return
	}

	if herr := p.connector.CheckHealth(context.Background(), rec.conn); herr != nil {
		p.obs.HealthCheck(p.cfg.Name, false)
		p.mu.Lock()
		rec.markUnhealthy(herr)
		p.mu.Unlock()
		p.log.Warn("released connection failed validation", "conn_id", rec.id, "error", herr)

		p.retire(rec)
		repl, cerr := p.createTracked(context.Background())
		if cerr != nil {
			if !errors.Is(cerr, ErrPoolClosed) && !errors.Is(cerr, errAtCapacity) {
				p.log.Warn("failed to replace connection", "error", cerr)
			}
			return
		}
		p.enqueue(repl)
		return
	}

	p.obs.HealthCheck(p.cfg.Name, true)
	p.mu.Lock()
	rec.stats.healthFailures = 0
	p.mu.Unlock()
	p.enqueue(rec)
}

// Close shuts the pool down: the health monitor is cancelled and joined,
// every tracked connection is torn down and further acquisitions fail with
// ErrPoolClosed. Close is idempotent and safe to call concurrently with
// in-flight acquires and releases. Teardown errors never propagate; shutdown
// always completes.
func (p *Pool[C]) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}

	close(p.done)
	p.wg.Wait()

	// Drain the availability queue; the records themselves are torn down
	// below via the record table.
	for {
		select {
		case <-p.idle:
			continue
		default:
		}
		break
	}

	p.mu.Lock()
	recs := make([]*record[C], 0, len(p.records))
	for _, rec := range p.records {
		rec.state = StateClosed
		p.retiredUses += rec.stats.totalUses
		p.retiredErrors += rec.stats.totalErrors
		recs = append(recs, rec)
	}
	p.records = make(map[uuid.UUID]*record[C])
	p.mu.Unlock()

	for _, rec := range recs {
		p.connector.Close(rec.conn)
	}

	for _, state := range []string{"idle", "active", "total"} {
		p.obs.PoolSize(p.cfg.Name, state, 0)
	}
	p.log.Info("pool closed", "connections_closed", len(recs))
	return nil
}

// publishSizes pushes current idle/active/total gauges to the observer.
func (p *Pool[C]) publishSizes() {
	p.mu.Lock()
	idle, active := 0, 0
	for _, rec := range p.records {
		switch rec.state {
		case StateIdle:
			idle++
		case StateActive:
			active++
		}
	}
	total := len(p.records)
	p.mu.Unlock()

	p.obs.PoolSize(p.cfg.Name, "idle", idle)
	p.obs.PoolSize(p.cfg.Name, "active", active)
	p.obs.PoolSize(p.cfg.Name, "total", total)
}

// trackedCount returns the number of records currently tracked, including
// ones mid-creation.
func (p *Pool[C]) trackedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records) + p.pending
}
