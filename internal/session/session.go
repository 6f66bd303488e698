// Package session binds the open device to the operator's side of the
// terminal: where typed lines come from, how they are sent, and where
// status text goes.
//
// The session decouples the command loop from concrete I/O, so the
// loop runs the same against os.Stdin and a serial port as against a
// test buffer and an in-memory device.
package session

import (
	"bufio"
	"context"
	"io"
	"strings"

	"sniffterm/internal/metrics"
	"sniffterm/internal/transport"
	"sniffterm/util"
)

// Session encapsulates the runtime context of one device connection.
type Session struct {
	Device     transport.Device
	Stdin      io.Reader
	Console    *util.Console
	Logger     *util.Logger
	Metrics    *metrics.Collector
	Terminator string
}

// New creates a Session bound to dev and the operator's I/O.
func New(dev transport.Device, stdin io.Reader, console *util.Console, logger *util.Logger, m *metrics.Collector) *Session {
	return &Session{
		Device:     dev,
		Stdin:      stdin,
		Console:    console,
		Logger:     logger,
		Metrics:    m,
		Terminator: "\r\n",
	}
}

// Send writes line plus the terminator to the device in one write.
func (s *Session) Send(line string) error {
	payload := []byte(line + s.Terminator)
	n, err := s.Device.Write(payload)
	s.Metrics.BytesSent(n)
	if err != nil {
		s.Metrics.WriteFailed(err.Error())
		return err
	}
	s.Logger.Debug("sent %q", line)
	return nil
}

// Lines reads operator lines in the background and delivers them
// without their line ending.  Lines of any length are delivered whole.
// The channel is closed at end of input or on a read error.  A read
// blocked on Stdin cannot be interrupted; after ctx ends the goroutine
// delivers nothing more and exits on its next line.
func (s *Session) Lines(ctx context.Context) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)

		br := bufio.NewReaderSize(s.Stdin, util.DefaultBufSize)
		for {
			line, err := br.ReadString('\n')
			if err == nil || line != "" {
				if ctx.Err() != nil {
					return
				}
				select {
				case out <- trimEOL(line):
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					s.Logger.Verbose("operator input: %v", err)
				}
				return
			}
		}
	}()
	return out
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
