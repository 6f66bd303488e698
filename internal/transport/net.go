package transport

import (
	"context"
	"net"
	"sync"
	"time"

	ncerr "sniffterm/internal/errors"
	"sniffterm/util"
)

// NetDevice is a [Device] backed by a connection to a serial-over-TCP
// bridge.  Tunnelled connections do not support read deadlines, so a
// pump goroutine owns conn.Read and Read waits on it with a timer.
type NetDevice struct {
	conn    net.Conn
	dialer  Dialer
	name    string
	timeout time.Duration

	data chan []byte
	errc chan error
	done chan struct{}

	// Owned by the single reader.
	pending []byte
	err     error

	once     sync.Once
	closeErr error
}

// DialDevice connects to the bridge at address with dialer.  The
// dialer is closed together with the device.
func DialDevice(ctx context.Context, dialer Dialer, address, name string, readTimeout time.Duration) (*NetDevice, error) {
	conn, err := dialer.Dial(ctx, "tcp", address)
	if err != nil {
		dialer.Close()
		return nil, ncerr.Wrap("open", name, err)
	}
	return NewNetDevice(conn, dialer, name, readTimeout), nil
}

// NewNetDevice wraps an established connection.  dialer may be nil.
func NewNetDevice(conn net.Conn, dialer Dialer, name string, readTimeout time.Duration) *NetDevice {
	if readTimeout <= 0 {
		readTimeout = 10 * time.Millisecond
	}
	d := &NetDevice{
		conn:    conn,
		dialer:  dialer,
		name:    name,
		timeout: readTimeout,
		data:    make(chan []byte),
		errc:    make(chan error, 1),
		done:    make(chan struct{}),
	}
	go d.pump()
	return d
}

// pump hands every chunk read from conn to Read.  Each chunk is a
// fresh slice because ownership passes to the reader.
func (d *NetDevice) pump() {
	for {
		buf := make([]byte, util.DefaultBufSize)
		n, err := d.conn.Read(buf)
		if n > 0 {
			select {
			case d.data <- buf[:n]:
			case <-d.done:
				return
			}
		}
		if err != nil {
			select {
			case d.errc <- err:
			case <-d.done:
			}
			return
		}
	}
}

// Name returns the bridge as shown to the operator.
func (d *NetDevice) Name() string { return d.name }

// Read returns (0, nil) when nothing arrives within the read timeout.
func (d *NetDevice) Read(p []byte) (int, error) {
	if len(d.pending) > 0 {
		n := copy(p, d.pending)
		d.pending = d.pending[n:]
		return n, nil
	}
	if d.err != nil {
		return 0, d.err
	}

	t := time.NewTimer(d.timeout)
	defer t.Stop()

	select {
	case b := <-d.data:
		n := copy(p, b)
		d.pending = b[n:]
		return n, nil
	case err := <-d.errc:
		if d.isClosed() {
			d.err = ncerr.ErrDeviceClosed
		} else {
			d.err = ncerr.Wrap("read", d.name, err)
		}
		return 0, d.err
	case <-d.done:
		d.err = ncerr.ErrDeviceClosed
		return 0, d.err
	case <-t.C:
		return 0, nil
	}
}

// Write sends p to the bridge.
func (d *NetDevice) Write(p []byte) (int, error) {
	if d.isClosed() {
		return 0, ncerr.ErrDeviceClosed
	}
	n, err := d.conn.Write(p)
	if err != nil {
		return n, ncerr.Wrap("write", d.name, err)
	}
	return n, nil
}

// Close shuts the connection and the dialer.  Later calls return the
// first result.
func (d *NetDevice) Close() error {
	d.once.Do(func() {
		close(d.done)
		var connErr, dialErr error
		if err := d.conn.Close(); err != nil && !ncerr.IsClosed(err) {
			connErr = ncerr.Wrap("close", d.name, err)
		}
		if d.dialer != nil {
			dialErr = d.dialer.Close()
		}
		d.closeErr = ncerr.Join(connErr, dialErr)
	})
	return d.closeErr
}

func (d *NetDevice) isClosed() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}
