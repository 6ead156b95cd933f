package pool

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordStateTransitions(t *testing.T) {
	rec := newRecord(&mockConn{id: 1}, "test")
	assert.Equal(t, StateIdle, rec.state)
	assert.Equal(t, uint64(0), rec.stats.totalUses)

	rec.markActive()
	assert.Equal(t, StateActive, rec.state)
	assert.Equal(t, uint64(1), rec.stats.totalUses)

	rec.markIdle()
	assert.Equal(t, StateIdle, rec.state)

	rec.markUnhealthy(errors.New("probe failed"))
	assert.Equal(t, StateUnhealthy, rec.state)
	assert.Equal(t, uint64(1), rec.stats.totalErrors)
	assert.Equal(t, "probe failed", rec.stats.lastError)
}

func TestRecordIsStale(t *testing.T) {
	rec := newRecord(&mockConn{id: 1}, "test")

	assert.False(t, rec.isStale(time.Minute))

	rec.stats.lastUsedAt = time.Now().Add(-2 * time.Minute)
	assert.True(t, rec.isStale(time.Minute))

	// Only idle records can be stale.
	rec.markActive()
	rec.stats.lastUsedAt = time.Now().Add(-2 * time.Minute)
	assert.False(t, rec.isStale(time.Minute))
}

func TestConnectionStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "unhealthy", StateUnhealthy.String())
	assert.Equal(t, "closed", StateClosed.String())
}
