// Package transport opens the link to the device.  A device is a
// duplex byte stream whose reads are bounded by a timeout, so the
// stream reader can observe shutdown between reads.  Two kinds exist:
// a local serial port and a serial-over-TCP bridge (ser2net and
// friends), the latter optionally reached through an SSH gateway.
package transport

import (
	"context"
	"io"
	"net"
)

// Device is an open link to the device.
//
// Read blocks for at most the configured read timeout and returns
// (0, nil) when it expires with no data.  Any non-nil error is final.
// Close is safe to call more than once.
type Device interface {
	io.ReadWriteCloser

	// Name is the device as shown to the operator.
	Name() string
}

// Dialer opens outbound network connections.  Implementations include
// a plain TCP dialer and an SSH-tunnelled dialer that reaches the
// bridge through a gateway.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases any long-lived resources held by the dialer
	// (e.g. an SSH session).  Stateless dialers return nil.
	Close() error
}
