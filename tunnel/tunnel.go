// Package tunnel reaches a serial-over-TCP bridge that is only
// reachable through an SSH gateway.  The gateway connection is opened
// once and the bridge port is dialed through it with a direct-tcpip
// channel.
package tunnel

import (
	"context"
	"net"
)

// Tunnel is an encrypted path to hosts behind a gateway.
type Tunnel interface {
	// Connect opens and authenticates the gateway connection.
	Connect(ctx context.Context) error

	// Dial opens a stream to address as seen from the gateway.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close tears down the gateway connection and every stream on it.
	Close() error

	// IsAlive reports whether the gateway connection is still up.
	IsAlive() bool
}
