package cmd

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func runArgs(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = run(context.Background(), args, strings.NewReader(""), &out, &errOut)
	return out.String(), errOut.String(), err
}

// TestExecute_Version verifies --version prints a version string.
func TestExecute_Version(t *testing.T) {
	out, _, err := runArgs(t, "--version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "sniffterm ") {
		t.Errorf("got %q", out)
	}
}

// TestExecute_Help verifies --help (and no args) prints usage.
func TestExecute_Help(t *testing.T) {
	t.Setenv("SNIFFTERM_PORT", "")
	for _, args := range [][]string{{"--help"}, {}} {
		name := "no-args"
		if len(args) > 0 {
			name = args[0]
		}
		t.Run(name, func(t *testing.T) {
			_, errOut, err := runArgs(t, args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(errOut, "--baud") {
				t.Errorf("usage missing flags:\n%s", errOut)
			}
		})
	}
}

// TestExecute_DryRunDefaults verifies the default line settings.
func TestExecute_DryRunDefaults(t *testing.T) {
	out, _, err := runArgs(t, "-p", "/dev/ttyUSB0", "--dry-run")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"device:       /dev/ttyUSB0 (serial)",
		"line:         921600 8N1",
		"flush idle:   180ms",
		"grace:        pre 500ms, post 800ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

// TestExecute_DryRunInvalid verifies --dry-run still catches bad configs.
func TestExecute_DryRunInvalid(t *testing.T) {
	t.Setenv("SNIFFTERM_PORT", "")
	tests := [][]string{
		{"--dry-run", "-b", "9600"},                           // no device
		{"--dry-run", "-p", "/dev/ttyUSB0", "-b", "0"},        // bad baud
		{"--dry-run", "-p", "/dev/ttyUSB0", "--parity", "x"},  // bad parity
		{"--dry-run", "-p", "/dev/ttyUSB0", "--trigger", "x"}, // one-word trigger
		{"--dry-run", "-p", "/dev/ttyUSB0", "-T", "pi@gw"},    // tunnel to serial
	}
	for _, args := range tests {
		if _, _, err := runArgs(t, args...); err == nil {
			t.Errorf("%v: expected validation error", args)
		}
	}
}

// TestExecute_InvalidFlags verifies unknown flags produce an error.
func TestExecute_InvalidFlags(t *testing.T) {
	if _, _, err := runArgs(t, "--nonexistent-flag"); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestExecute_PositionalDevice(t *testing.T) {
	out, _, err := runArgs(t, "--dry-run", "COM5")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "device:       COM5") {
		t.Errorf("got:\n%s", out)
	}

	if _, _, err := runArgs(t, "--dry-run", "-p", "COM5", "COM6"); err == nil {
		t.Error("expected error for device given twice")
	}
	if _, _, err := runArgs(t, "--dry-run", "COM5", "COM6"); err == nil {
		t.Error("expected error for extra arguments")
	}
}

func TestExecute_TunnelDefaultsUser(t *testing.T) {
	t.Setenv("USER", "operator")
	out, _, err := runArgs(t, "--dry-run", "-p", "tcp://10.0.0.7:4001", "-T", "gw.lab:2222")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "tunnel:       operator@gw.lab:2222") {
		t.Errorf("got:\n%s", out)
	}
}

// TestExecute_Precedence checks flags > env > file > defaults.
func TestExecute_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sniffterm.yaml")
	yaml := "port: /dev/ttyACM0\nbaud: 115200\npost_stop: 1s\n"
	if err := os.WriteFile(file, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	out, _, err := runArgs(t, "--config", file, "--dry-run")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "line:         115200") || !strings.Contains(out, "post 1s") {
		t.Errorf("file values not applied:\n%s", out)
	}
	if !strings.Contains(out, "device:       /dev/ttyACM0") {
		t.Errorf("file device not applied:\n%s", out)
	}

	t.Setenv("SNIFFTERM_BAUD", "230400")
	out, _, err = runArgs(t, "--config", file, "--dry-run")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "line:         230400") {
		t.Errorf("env did not override file:\n%s", out)
	}

	out, _, err = runArgs(t, "--config="+file, "--dry-run", "-b", "57600")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "line:         57600") {
		t.Errorf("flag did not override env:\n%s", out)
	}
}

func TestExecute_MissingConfigFile(t *testing.T) {
	if _, _, err := runArgs(t, "--config", "/nonexistent/sniffterm.yaml", "--dry-run"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestExecute_BridgeSession runs a whole session against a loopback
// serial-over-TCP bridge.
func TestExecute_BridgeSession(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	got := make(chan string, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		c.Write([]byte("device ready\r\n")) //nolint:errcheck

		c.SetReadDeadline(time.Now().Add(3 * time.Second)) //nolint:errcheck
		buf := make([]byte, 6)
		n, _ := io.ReadFull(c, buf)
		got <- string(buf[:n])
	}()

	outdir := filepath.Join(t.TempDir(), "caps")
	pr, pw := io.Pipe()
	var out, errOut bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- run(context.Background(),
			[]string{"-p", "tcp://" + ln.Addr().String(), "--outdir", outdir},
			pr, &out, &errOut)
	}()

	pw.Write([]byte("scan\n")) //nolint:errcheck
	select {
	case line := <-got:
		if line != "scan\r\n" {
			t.Errorf("bridge got %q", line)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("bridge never received the command")
	}
	time.Sleep(250 * time.Millisecond)
	pw.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return")
	}

	s := out.String()
	if !strings.HasPrefix(s, "Connected to tcp://"+ln.Addr().String()+" @ 921600\n") {
		t.Errorf("banner missing:\n%s", s)
	}
	if !strings.Contains(s, "device ready\n") {
		t.Errorf("device line missing:\n%s", s)
	}
	if !strings.HasSuffix(s, "Closed.\n") {
		t.Errorf("farewell missing:\n%s", s)
	}
	if _, err := os.Stat(outdir); err != nil {
		t.Errorf("outdir not created: %v", err)
	}
}
