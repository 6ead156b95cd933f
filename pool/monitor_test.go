package pool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monitor tests drive sweeps directly; the configured interval is long
// enough that the background loop never fires on its own.

func TestSweepRetiresStaleConnections(t *testing.T) {
	cfg := testConfig(1, 2)
	cfg.MaxIdleTime = 10 * time.Millisecond
	p, m := newTestPool(t, cfg)

	lease, err := p.Acquire(context.Background())
	require.NoError(t, err)
	old := lease.Conn()
	lease.Release()

	time.Sleep(30 * time.Millisecond)
	p.sweep(context.Background())

	assert.True(t, old.closed.Load(), "stale connection should be retired")

	// The sweep refilled back to MinSize with a fresh connection.
	assert.Equal(t, 1, p.trackedCount())
	assert.Equal(t, 1, p.Stats().Idle)
	connects, _ := m.counts()
	assert.Equal(t, 2, connects)
}

func TestSweepKeepsFreshIdleConnections(t *testing.T) {
	cfg := testConfig(1, 2)
	cfg.MaxIdleTime = time.Hour
	p, m := newTestPool(t, cfg)

	p.sweep(context.Background())
	p.sweep(context.Background())

	connects, closes := m.counts()
	assert.Equal(t, 1, connects)
	assert.Equal(t, 0, closes)
	assert.Equal(t, 1, p.Stats().Idle)
}

func TestSweepHealthFailureThreshold(t *testing.T) {
	p, m := newTestPool(t, testConfig(1, 2))

	lease, err := p.Acquire(context.Background())
	require.NoError(t, err)
	bad := lease.Conn()
	lease.Release()

	m.setUnhealthy(bad, true)

	// One or two consecutive failures keep the connection in the pool.
	p.sweep(context.Background())
	assert.False(t, bad.closed.Load(), "one failed probe must not retire")
	p.sweep(context.Background())
	assert.False(t, bad.closed.Load(), "two failed probes must not retire")

	// The third consecutive failure retires and replaces it.
	p.sweep(context.Background())
	assert.True(t, bad.closed.Load(), "third failed probe must retire")
	assert.Equal(t, 1, p.trackedCount())
	assert.Equal(t, 1, p.Stats().Idle)
}

func TestSweepResetsFailureCountOnSuccess(t *testing.T) {
	p, m := newTestPool(t, testConfig(1, 2))

	lease, err := p.Acquire(context.Background())
	require.NoError(t, err)
	conn := lease.Conn()
	lease.Release()

	m.setUnhealthy(conn, true)
	p.sweep(context.Background())
	p.sweep(context.Background())

	// Recovery clears the consecutive-failure count, so two more failed
	// probes are again below the threshold.
	m.setUnhealthy(conn, false)
	p.sweep(context.Background())

	m.setUnhealthy(conn, true)
	p.sweep(context.Background())
	p.sweep(context.Background())
	assert.False(t, conn.closed.Load(), "failure count should have been reset")
}

func TestSweepSkipsActiveConnections(t *testing.T) {
	p, m := newTestPool(t, testConfig(1, 2))

	lease, err := p.Acquire(context.Background())
	require.NoError(t, err)
	conn := lease.Conn()
	m.setUnhealthy(conn, true)

	// The connection is checked out, so the sweep must not probe or retire it.
	p.sweep(context.Background())
	assert.False(t, conn.closed.Load())
	assert.Equal(t, StateActive, lease.rec.state)

	m.setUnhealthy(conn, false)
	lease.Release()
}

func TestSweepRefillsToMinSize(t *testing.T) {
	m := newMockConnector()
	m.failConnects = 2
	p := New(testConfig(3, 5), m)
	defer p.Close()

	require.NoError(t, p.Initialize(context.Background()))
	require.Equal(t, 1, p.trackedCount())

	// The backend recovered; the next sweep brings the pool back to MinSize.
	p.sweep(context.Background())
	assert.Equal(t, 3, p.trackedCount())
	assert.Equal(t, 3, p.Stats().Idle)
}

func TestSweepRefillFailuresAreRecoveredLocally(t *testing.T) {
	m := newMockConnector()
	m.failAll = true
	p := New(testConfig(2, 4), m)
	defer p.Close()

	require.NoError(t, p.Initialize(context.Background()))
	require.Equal(t, 0, p.trackedCount())

	// Sweeps keep failing quietly until the backend comes back.
	p.sweep(context.Background())
	assert.Equal(t, 0, p.trackedCount())

	m.setFailAll(false)
	p.sweep(context.Background())
	assert.Equal(t, 2, p.trackedCount())
}

func TestCloseStopsMonitor(t *testing.T) {
	cfg := testConfig(1, 2)
	cfg.HealthCheckInterval = 5 * time.Millisecond
	m := newMockConnector()
	p := New(cfg, m)
	require.NoError(t, p.Initialize(context.Background()))

	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		p.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not join the monitor in time")
	}

	// No goroutine is left to create connections after shutdown.
	connects, _ := m.counts()
	time.Sleep(20 * time.Millisecond)
	after, _ := m.counts()
	assert.Equal(t, connects, after)
}
