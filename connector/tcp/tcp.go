// Package tcp provides pool connectors for raw TCP and Unix-socket
// connections.
package tcp

import (
	"context"
	"errors"
	"net"
	"time"
)

// Connector dials stream connections for a fixed address and implements the
// pool lifecycle hooks for net.Conn.
type Connector struct {
	network string
	address string
	timeout time.Duration
}

// New creates a TCP connector for the given address.
func New(address string, timeout time.Duration) *Connector {
	return newConnector("tcp", address, timeout)
}

// NewUnix creates a Unix-socket connector for the given socket path.
func NewUnix(socketPath string, timeout time.Duration) *Connector {
	return newConnector("unix", socketPath, timeout)
}

func newConnector(network, address string, timeout time.Duration) *Connector {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Connector{
		network: network,
		address: address,
		timeout: timeout,
	}
}

// Connect dials one new connection, honoring both the connector's dial
// timeout and the caller's context deadline.
func (c *Connector) Connect(ctx context.Context) (net.Conn, error) {
	dialer := net.Dialer{Timeout: c.timeout}
	return dialer.DialContext(ctx, c.network, c.address)
}

// CheckHealth probes the connection with a short deadline read. A read
// timeout means the peer is simply quiet, which counts as healthy; EOF or a
// closed socket does not.
func (c *Connector) CheckHealth(ctx context.Context, conn net.Conn) error {
	if err := conn.SetReadDeadline(time.Now().Add(time.Millisecond)); err != nil {
		return err
	}
	var buf [1]byte
	_, err := conn.Read(buf[:])
	_ = conn.SetReadDeadline(time.Time{})

	if err == nil {
		// Unexpected data between requests; the stream is out of sync.
		return errors.New("unexpected data on idle connection")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return nil
	}
	return err
}

// Close tears the connection down. Repeated closes are harmless for
// net.Conn.
func (c *Connector) Close(conn net.Conn) {
	_ = conn.Close()
}
