package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variable
// loading.

const (
	// DefaultBaud is the line rate used when --baud is not given.
	DefaultBaud = 921600

	// DefaultDataBits, DefaultParity and DefaultStopBits describe 8N1.
	DefaultDataBits = 8
	DefaultParity   = "none"
	DefaultStopBits = 1

	// DefaultReadTimeout bounds every device read so the reader can
	// observe the stop signal and run the idle flush.
	DefaultReadTimeout = 10 * time.Millisecond

	// DefaultFlushIdle is how long a partial line may sit in the line
	// buffer before it is printed without a terminator.
	DefaultFlushIdle = 180 * time.Millisecond

	// DefaultPreCapture is the grace window after the trigger command
	// during which device output is still displayed.
	DefaultPreCapture = 500 * time.Millisecond

	// DefaultPostStop is how long capture stays active after the stop
	// command to collect trailing bytes.
	DefaultPostStop = 800 * time.Millisecond

	// DefaultJoinTimeout caps how long teardown waits for the reader
	// before force-closing the device.
	DefaultJoinTimeout = 500 * time.Millisecond

	// DefaultIdlePause is the sleep after an empty read.
	DefaultIdlePause = time.Millisecond

	// DefaultReadSize is the maximum number of bytes per device read.
	DefaultReadSize = 4096

	// DefaultOutDir is where capture files are written.
	DefaultOutDir = "."

	// DefaultCaptureExt is the capture file extension.  The device
	// already emits pcapng, so the bytes are stored as-is.
	DefaultCaptureExt = "pcapng"

	// DefaultTrigger is the command that starts a capture session.
	// Only its first two tokens are matched.
	DefaultTrigger = "sniff -c"

	// DefaultStop ends a capture session.
	DefaultStop = "stop"

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// DefaultConnTimeout is the TCP/SSH connection timeout for network
	// devices.
	DefaultConnTimeout = 30 * time.Second

	// DefaultKeepalive is the SSH keepalive interval for tunnelled
	// bridges.
	DefaultKeepalive = 30 * time.Second

	// LineTerminator is appended to every line sent to the device.
	LineTerminator = "\r\n"
)

// Defaults returns a Config with every tuneable set to its default.
func Defaults() *Config {
	return &Config{
		Baud:        DefaultBaud,
		DataBits:    DefaultDataBits,
		Parity:      DefaultParity,
		StopBits:    DefaultStopBits,
		ReadTimeout: DefaultReadTimeout,
		FlushIdle:   DefaultFlushIdle,
		PreCapture:  DefaultPreCapture,
		PostStop:    DefaultPostStop,
		JoinTimeout: DefaultJoinTimeout,
		IdlePause:   DefaultIdlePause,
		ReadSize:    DefaultReadSize,
		OutDir:      DefaultOutDir,
		CaptureExt:  DefaultCaptureExt,
		Trigger:     DefaultTrigger,
		Stop:        DefaultStop,
		ConnTimeout: DefaultConnTimeout,
	}
}
