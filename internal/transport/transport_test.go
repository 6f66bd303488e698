package transport

import (
	"context"
	"io"
	"net"
	"testing"
	"time"
)

// TestTCPDialer_Connect verifies that TCPDialer can reach a local
// bridge and exchange data.
func TestTCPDialer_Connect(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		conn.Write([]byte("ready\r\n")) //nolint:errcheck
	}()

	d := &TCPDialer{Timeout: 2 * time.Second}

	conn, err := d.Dial(context.Background(), "tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	buf := make([]byte, 256)
	n, err := conn.Read(buf)
	if err != nil && err != io.EOF {
		t.Fatalf("read: %v", err)
	}
	if got := string(buf[:n]); got != "ready\r\n" {
		t.Errorf("got %q, want %q", got, "ready\r\n")
	}
}

// TestTCPDialer_ContextCancel verifies that a cancelled context stops the dial.
func TestTCPDialer_ContextCancel(t *testing.T) {
	d := &TCPDialer{Timeout: 5 * time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := d.Dial(ctx, "tcp", "127.0.0.1:1"); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestTCPDialer_CloseIsNoop(t *testing.T) {
	if err := (&TCPDialer{}).Close(); err != nil {
		t.Fatal(err)
	}
}
