package transport

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.bug.st/serial"

	ncerr "sniffterm/internal/errors"
)

// SerialOptions describes the line settings of a local serial port.
type SerialOptions struct {
	Baud        int
	DataBits    int
	Parity      string // none, odd, even, mark, space
	StopBits    int    // 1 or 2
	ReadTimeout time.Duration
}

// SerialDevice is a [Device] backed by a local serial port.
type SerialDevice struct {
	port   serial.Port
	name   string
	closed atomic.Bool
	once   sync.Once
	err    error
}

// OpenSerial opens path with the given line settings and arms the
// bounded read timeout.
func OpenSerial(path string, opts SerialOptions) (*SerialDevice, error) {
	parity, err := parseParity(opts.Parity)
	if err != nil {
		return nil, ncerr.Wrap("open", path, err)
	}
	stop, err := parseStopBits(opts.StopBits)
	if err != nil {
		return nil, ncerr.Wrap("open", path, err)
	}

	port, err := serial.Open(path, &serial.Mode{
		BaudRate: opts.Baud,
		DataBits: opts.DataBits,
		Parity:   parity,
		StopBits: stop,
	})
	if err != nil {
		return nil, ncerr.Wrap("open", path, err)
	}

	d := newSerialDevice(port, path)
	if err := d.setReadTimeout(opts.ReadTimeout); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func newSerialDevice(port serial.Port, name string) *SerialDevice {
	return &SerialDevice{port: port, name: name}
}

func (d *SerialDevice) setReadTimeout(t time.Duration) error {
	if t <= 0 {
		return ncerr.Wrap("open", d.name, fmt.Errorf("read timeout must be positive"))
	}
	if err := d.port.SetReadTimeout(t); err != nil {
		return ncerr.Wrap("open", d.name, err)
	}
	return nil
}

// Name returns the port path.
func (d *SerialDevice) Name() string { return d.name }

// Read returns (0, nil) when the read timeout expires.  Drivers that
// report the expiry as a timeout error get the same treatment.
func (d *SerialDevice) Read(p []byte) (int, error) {
	n, err := d.port.Read(p)
	if err != nil {
		if ncerr.IsTimeout(err) {
			return n, nil
		}
		if d.closed.Load() {
			return n, ncerr.ErrDeviceClosed
		}
		return n, ncerr.Wrap("read", d.name, err)
	}
	return n, nil
}

// Write sends p in full or reports why it could not.
func (d *SerialDevice) Write(p []byte) (int, error) {
	if d.closed.Load() {
		return 0, ncerr.ErrDeviceClosed
	}
	var total int
	for total < len(p) {
		n, err := d.port.Write(p[total:])
		total += n
		if err != nil {
			return total, ncerr.Wrap("write", d.name, err)
		}
		if n == 0 {
			return total, ncerr.Wrap("write", d.name, fmt.Errorf("short write"))
		}
	}
	return total, nil
}

// Close releases the port.  Later calls return the first result.
func (d *SerialDevice) Close() error {
	d.once.Do(func() {
		d.closed.Store(true)
		if err := d.port.Close(); err != nil {
			d.err = ncerr.Wrap("close", d.name, err)
		}
	})
	return d.err
}

// ── line settings ────────────────────────────────────────────────────

func parseParity(s string) (serial.Parity, error) {
	switch strings.ToLower(s) {
	case "", "none", "n":
		return serial.NoParity, nil
	case "odd", "o":
		return serial.OddParity, nil
	case "even", "e":
		return serial.EvenParity, nil
	case "mark", "m":
		return serial.MarkParity, nil
	case "space", "s":
		return serial.SpaceParity, nil
	default:
		return serial.NoParity, fmt.Errorf("invalid parity %q: use none, odd, even, mark, or space", s)
	}
}

func parseStopBits(n int) (serial.StopBits, error) {
	switch n {
	case 0, 1:
		return serial.OneStopBit, nil
	case 2:
		return serial.TwoStopBits, nil
	default:
		return serial.OneStopBit, fmt.Errorf("invalid stop bits %d: use 1 or 2", n)
	}
}
