package pool

import "time"

// Observer receives pool measurements. Implementations decide the transport;
// the pool only names the series. All methods may be called concurrently and
// must not block.
type Observer interface {
	// PoolSize reports a gauge, with state one of "idle", "active" or "total".
	PoolSize(pool, state string, n int)
	// WaitTime reports how long an acquire waited for a connection.
	WaitTime(pool string, d time.Duration)
	// UsageTime reports how long a lease held a connection.
	UsageTime(pool string, d time.Duration)
	// PoolError counts a pool error by type.
	PoolError(pool, errType string)
	// HealthCheck counts a health probe outcome.
	HealthCheck(pool string, passed bool)
}

// NopObserver discards all measurements.
type NopObserver struct{}

func (NopObserver) PoolSize(string, string, int)        {}
func (NopObserver) WaitTime(string, time.Duration)      {}
func (NopObserver) UsageTime(string, time.Duration)     {}
func (NopObserver) PoolError(string, string)            {}
func (NopObserver) HealthCheck(string, bool)            {}
