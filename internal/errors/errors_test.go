package errors

import (
	"fmt"
	"io"
	"net"
	"os"
	"testing"
)

func TestDeviceError_Format(t *testing.T) {
	err := &DeviceError{Op: "open", Device: "/dev/ttyUSB0", Err: fmt.Errorf("permission denied")}
	want := "open /dev/ttyUSB0: permission denied"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWrap(t *testing.T) {
	inner := fmt.Errorf("no such file")
	err := Wrap("open", "/dev/ttyACM0", inner)

	var de *DeviceError
	if !As(err, &de) {
		t.Fatalf("expected *DeviceError, got %T", err)
	}
	if de.Op != "open" || de.Device != "/dev/ttyACM0" {
		t.Errorf("wrong fields: Op=%q Device=%q", de.Op, de.Device)
	}
	if !Is(err, inner) {
		t.Error("should unwrap to inner error")
	}
}

func TestWrap_Nil(t *testing.T) {
	if err := Wrap("write", "x", nil); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestSSHError_Format(t *testing.T) {
	err := WrapSSH("handshake", "lab-gw", 22, fmt.Errorf("connection refused"))
	want := "ssh handshake lab-gw:22: connection refused"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !Is(err, err.Err) {
		t.Error("should unwrap to inner error")
	}
}

func TestConfigError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  ConfigError
		want string
	}{
		{
			name: "with value and hint",
			err: ConfigError{
				Field:   "parity",
				Value:   "weird",
				Message: "unknown parity",
				Hint:    "use none, odd, even, mark, or space",
			},
			want: "config: --parity=weird: unknown parity\n  hint: use none, odd, even, mark, or space",
		},
		{
			name: "missing value no hint",
			err: ConfigError{
				Field:   "stop",
				Message: "must not be empty",
			},
			want: "config: --stop: must not be empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestIsClosed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"eof", io.EOF, true},
		{"net closed", net.ErrClosed, true},
		{"os closed", os.ErrClosed, true},
		{"device closed", ErrDeviceClosed, true},
		{"wrapped", Wrap("read", "x", io.EOF), true},
		{"unexpected eof", io.ErrUnexpectedEOF, false},
		{"plain", fmt.Errorf("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsClosed(tt.err); got != tt.want {
				t.Errorf("IsClosed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsTimeout(t *testing.T) {
	if !IsTimeout(os.ErrDeadlineExceeded) {
		t.Error("deadline exceeded should be a timeout")
	}
	if !IsTimeout(&net.OpError{Op: "read", Err: os.ErrDeadlineExceeded}) {
		t.Error("wrapped deadline should be a timeout")
	}
	if IsTimeout(io.EOF) {
		t.Error("EOF is not a timeout")
	}
	if IsTimeout(nil) {
		t.Error("nil is not a timeout")
	}
}

func TestSentinels(t *testing.T) {
	sentinels := []error{
		ErrDeviceClosed, ErrNotConnected, ErrCaptureActive,
		ErrNoCapture, ErrAuthFailed,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && Is(a, b) {
				t.Errorf("sentinel %d and %d should not match", i, j)
			}
		}
	}
}
