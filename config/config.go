// Package config defines the runtime configuration for sniffterm and
// provides helpers for parsing device and tunnel specifications.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ncerr "sniffterm/internal/errors"
)

// Config holds every tuneable for a single terminal run.
type Config struct {
	// ── Device ───────────────────────────────────────────────────────
	Port     string // -p: serial path or tcp://host:port
	Baud     int
	DataBits int
	Parity   string // none, odd, even, mark, space
	StopBits int

	// Derived from Port by ParseDevice.
	Device DeviceSpec

	// ── Stream timing ────────────────────────────────────────────────
	ReadTimeout time.Duration
	FlushIdle   time.Duration
	IdlePause   time.Duration
	ReadSize    int
	JoinTimeout time.Duration

	// ── Capture ──────────────────────────────────────────────────────
	OutDir     string
	CaptureExt string
	Trigger    string
	Stop       string
	PreCapture time.Duration
	PostStop   time.Duration

	// ── SSH tunnel (tcp:// devices only) ─────────────────────────────
	TunnelSpec     string // raw user@host[:port] from -T
	TunnelEnabled  bool
	TunnelUser     string
	TunnelHost     string
	TunnelPort     int
	SSHKeyPath     string
	SSHPassword    bool // true → prompt interactively
	UseSSHAgent    bool
	StrictHostKey  bool
	KnownHostsPath string
	ConnTimeout    time.Duration

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
	DryRun  bool

	// ConfigFile is the YAML file that was loaded (empty if none).
	ConfigFile string
}

// ── Device helpers ───────────────────────────────────────────────────

// DeviceKind tells the transport layer how to open a device.
type DeviceKind int

const (
	DeviceSerial DeviceKind = iota
	DeviceTCP
)

func (k DeviceKind) String() string {
	switch k {
	case DeviceSerial:
		return "serial"
	case DeviceTCP:
		return "tcp"
	default:
		return "unknown"
	}
}

// DeviceSpec is the parsed form of --port.
type DeviceSpec struct {
	Kind DeviceKind
	Path string // serial device path
	Host string // tcp bridge host
	Port int    // tcp bridge port
}

// String returns the form shown to the operator.
func (d DeviceSpec) String() string {
	if d.Kind == DeviceTCP {
		return "tcp://" + d.Host + ":" + strconv.Itoa(d.Port)
	}
	return d.Path
}

// ParseDevice accepts a serial path ("/dev/ttyUSB0", "COM5") or a
// serial-over-TCP bridge address ("tcp://host:port").
func ParseDevice(spec string) (DeviceSpec, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return DeviceSpec{}, fmt.Errorf("device is required")
	}

	rest, ok := strings.CutPrefix(spec, "tcp://")
	if !ok {
		return DeviceSpec{Kind: DeviceSerial, Path: spec}, nil
	}

	i := strings.LastIndex(rest, ":")
	if i <= 0 || i == len(rest)-1 {
		return DeviceSpec{}, fmt.Errorf("invalid device %q – expected tcp://host:port", spec)
	}
	host := strings.Trim(rest[:i], "[]")
	port, err := strconv.Atoi(rest[i+1:])
	if err != nil || port < 1 || port > 65535 {
		return DeviceSpec{}, fmt.Errorf("invalid device port %q", rest[i+1:])
	}
	return DeviceSpec{Kind: DeviceTCP, Host: host, Port: port}, nil
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe matches [user@]host[:port].
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host, and port from a string such as
// "pi@lab-gateway:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q – expected [user@]host[:port]", spec)
	}
	user, host, port = m[1], m[2], DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	return user, host, port, nil
}

// ── Validation ───────────────────────────────────────────────────────

var validParity = map[string]bool{
	"none": true, "odd": true, "even": true, "mark": true, "space": true,
}

// Validate checks that the configuration is internally consistent and
// fills in the derived Device field.
func (c *Config) Validate() error {
	dev, err := ParseDevice(c.Port)
	if err != nil {
		return &ncerr.ConfigError{
			Field:   "port",
			Value:   nilIfEmpty(c.Port),
			Message: err.Error(),
			Hint:    "pass a serial device (-p /dev/ttyUSB0) or a bridge (-p tcp://host:4000)",
		}
	}
	c.Device = dev

	if c.Baud <= 0 {
		return &ncerr.ConfigError{Field: "baud", Value: c.Baud, Message: "must be positive"}
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return &ncerr.ConfigError{Field: "data-bits", Value: c.DataBits, Message: "must be 5-8"}
	}
	if !validParity[strings.ToLower(c.Parity)] {
		return &ncerr.ConfigError{
			Field:   "parity",
			Value:   c.Parity,
			Message: "unknown parity",
			Hint:    "use none, odd, even, mark, or space",
		}
	}
	if c.StopBits != 1 && c.StopBits != 2 {
		return &ncerr.ConfigError{Field: "stop-bits", Value: c.StopBits, Message: "must be 1 or 2"}
	}

	if c.ReadTimeout <= 0 {
		return &ncerr.ConfigError{
			Field:   "read-timeout",
			Value:   c.ReadTimeout,
			Message: "must be positive",
			Hint:    "the reader needs a bounded read to observe shutdown",
		}
	}
	if c.ReadSize <= 0 {
		return &ncerr.ConfigError{Field: "read-size", Value: c.ReadSize, Message: "must be positive"}
	}
	for _, d := range []struct {
		name string
		v    time.Duration
	}{
		{"flush-idle", c.FlushIdle},
		{"pre-capture", c.PreCapture},
		{"post-stop", c.PostStop},
		{"join-timeout", c.JoinTimeout},
		{"idle-pause", c.IdlePause},
	} {
		if d.v < 0 {
			return &ncerr.ConfigError{Field: d.name, Value: d.v, Message: "must not be negative"}
		}
	}

	if len(strings.Fields(c.Trigger)) != 2 {
		return &ncerr.ConfigError{
			Field:   "trigger",
			Value:   c.Trigger,
			Message: "must be exactly two words",
			Hint:    `the default is "sniff -c"`,
		}
	}
	if strings.TrimSpace(c.Stop) == "" {
		return &ncerr.ConfigError{Field: "stop", Message: "must not be empty"}
	}
	if c.OutDir == "" {
		return &ncerr.ConfigError{Field: "outdir", Message: "must not be empty"}
	}
	if c.CaptureExt == "" || strings.ContainsAny(c.CaptureExt, `/\`) {
		return &ncerr.ConfigError{Field: "ext", Value: c.CaptureExt, Message: "invalid file extension"}
	}

	if c.TunnelEnabled {
		if c.Device.Kind != DeviceTCP {
			return &ncerr.ConfigError{
				Field:   "tunnel",
				Value:   c.TunnelSpec,
				Message: "SSH tunnels only apply to tcp:// devices",
				Hint:    "run sniffterm on the machine the serial device is attached to",
			}
		}
		if c.TunnelHost == "" {
			return &ncerr.ConfigError{Field: "tunnel", Message: "tunnel host is required"}
		}
	}
	return nil
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
