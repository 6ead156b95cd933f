// Package postgres provides a pool connector for document-store access over
// PostgreSQL using pgx.
package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

// Connector implements the pool lifecycle hooks for *pgx.Conn.
type Connector struct {
	connString   string
	closeTimeout time.Duration
	log          *slog.Logger
}

// New creates a connector dialing the given connection string
// (e.g. "postgres://user@host:5432/db").
func New(connString string) *Connector {
	return &Connector{
		connString:   connString,
		closeTimeout: 5 * time.Second,
		log:          slog.Default(),
	}
}

// WithLogger sets the logger used for teardown failures.
func (c *Connector) WithLogger(log *slog.Logger) *Connector {
	c.log = log
	return c
}

// Connect establishes one new PostgreSQL connection.
func (c *Connector) Connect(ctx context.Context) (*pgx.Conn, error) {
	return pgx.Connect(ctx, c.connString)
}

// CheckHealth pings the server.
func (c *Connector) CheckHealth(ctx context.Context, conn *pgx.Conn) error {
	return conn.Ping(ctx)
}

// Close tears the connection down. Errors are logged, never propagated, and
// closing an already-closed connection is a no-op.
func (c *Connector) Close(conn *pgx.Conn) {
	if conn.IsClosed() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.closeTimeout)
	defer cancel()
	if err := conn.Close(ctx); err != nil {
		c.log.Warn("failed to close postgres connection", "error", err)
	}
}
