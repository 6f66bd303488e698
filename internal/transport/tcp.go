package transport

import (
	"context"
	"net"
	"time"
)

// TCPDialer establishes plain TCP connections to a serial bridge.
type TCPDialer struct {
	Timeout time.Duration

	// KeepAlive is the TCP keep-alive period; zero uses the system
	// default, negative disables it.
	KeepAlive time.Duration
}

// Dial connects to address over TCP with Nagle disabled, so single
// command lines reach the bridge without delay.
func (d *TCPDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: d.Timeout, KeepAlive: d.KeepAlive}

	conn, err := dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true) //nolint:errcheck
	}
	return conn, nil
}

// Close is a no-op for stateless TCP dialers.
func (d *TCPDialer) Close() error { return nil }
