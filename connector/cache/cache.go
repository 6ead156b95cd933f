// Package cache provides a pool connector for Redis-protocol cache stores.
//
// go-redis clients multiplex over their own internal pool; each pooled
// "connection" here is a dedicated single-socket client so that the generic
// pool, not the driver, owns sizing and health policy.
package cache

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Connector implements the pool lifecycle hooks for *redis.Client.
type Connector struct {
	opts *redis.Options
	log  *slog.Logger
}

// New creates a connector for the given cache address ("host:port").
func New(addr string) *Connector {
	return NewWithOptions(&redis.Options{Addr: addr})
}

// NewWithOptions creates a connector from full client options. The pool
// size is forced to one socket per client.
func NewWithOptions(opts *redis.Options) *Connector {
	o := *opts
	o.PoolSize = 1
	o.MinIdleConns = 0
	return &Connector{opts: &o, log: slog.Default()}
}

// WithLogger sets the logger used for teardown failures.
func (c *Connector) WithLogger(log *slog.Logger) *Connector {
	c.log = log
	return c
}

// Connect creates a client and verifies it with a ping before handing it to
// the pool.
func (c *Connector) Connect(ctx context.Context) (*redis.Client, error) {
	client := redis.NewClient(c.opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// CheckHealth pings the server.
func (c *Connector) CheckHealth(ctx context.Context, conn *redis.Client) error {
	return conn.Ping(ctx).Err()
}

// Close tears the client down. Errors are logged, never propagated;
// go-redis tolerates repeated closes.
func (c *Connector) Close(conn *redis.Client) {
	if err := conn.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		c.log.Warn("failed to close cache connection", "error", err)
	}
}
