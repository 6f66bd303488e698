package core

import (
	"context"
	"io"
	"os"
	"time"

	"sniffterm/internal/capture"
	ncerr "sniffterm/internal/errors"
	"sniffterm/internal/metrics"
	"sniffterm/internal/session"
	"sniffterm/internal/stream"
	"sniffterm/internal/transport"
	"sniffterm/util"
)

// TerminalMode is the interactive serial terminal: operator lines go
// to the device, device text comes back line by line, and the trigger
// command opens a silent capture window that is saved on stop.
type TerminalMode struct {
	Open       func(ctx context.Context) (transport.Device, error)
	Baud       int
	Terminator string
	Trigger    string
	Stop       string

	FlushIdle   time.Duration
	IdlePause   time.Duration
	ReadSize    int
	JoinTimeout time.Duration
	PreCapture  time.Duration
	PostStop    time.Duration

	Writer  *capture.Writer
	Console *util.Console
	Logger  *util.Logger
	Metrics *metrics.Collector

	// Stdin defaults to os.Stdin when nil.  Override in tests.
	Stdin io.Reader
}

func (m *TerminalMode) stdin() io.Reader {
	if m.Stdin != nil {
		return m.Stdin
	}
	return os.Stdin
}

// Run opens the device and drives the command loop until end of input
// or until ctx is cancelled (interrupt).  Both end in the same
// teardown.  Only a failure to open the device is returned.
func (m *TerminalMode) Run(ctx context.Context) error {
	dev, err := m.Open(ctx)
	if err != nil {
		return err
	}
	m.Console.Printf("Connected to %s @ %d\n", dev.Name(), m.Baud)

	state := stream.NewState()
	sess := session.New(dev, m.stdin(), m.Console, m.Logger, m.Metrics)
	if m.Terminator != "" {
		sess.Terminator = m.Terminator
	}
	capt := &capture.Session{
		State:      state,
		Writer:     m.Writer,
		Console:    m.Console,
		Logger:     m.Logger,
		Metrics:    m.Metrics,
		PreCapture: m.PreCapture,
		PostStop:   m.PostStop,
	}
	reader := &stream.Reader{
		Src:       dev,
		State:     state,
		Lines:     stream.NewAssembler(m.Console, m.FlushIdle, m.Metrics),
		IdlePause: m.IdlePause,
		ReadSize:  m.ReadSize,
		Metrics:   m.Metrics,
		Logger:    m.Logger,
	}

	// The reader outlives an interrupt until teardown stops it, so a
	// capture in progress still receives trailing bytes.
	readerCtx, stopReader := context.WithCancel(context.Background())
	defer stopReader()
	readerDone := make(chan error, 1)
	go func() { readerDone <- reader.Run(readerCtx) }()

	linesCtx, stopLines := context.WithCancel(ctx)
	defer stopLines()

	interrupted := m.loop(ctx, sess.Lines(linesCtx), sess, capt)

	m.teardown(ctx, interrupted, dev, sess, capt, stopReader, readerDone)
	return nil
}

// loop dispatches operator lines.  It reports true when ctx ended it
// and false at end of input.
func (m *TerminalMode) loop(ctx context.Context, lines <-chan string, sess *session.Session, capt *capture.Session) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case line, ok := <-lines:
			if !ok {
				return false
			}
			m.dispatch(ctx, line, sess, capt)
		}
	}
}

// dispatch handles one operator line.  The line always reaches the
// device before any mode change it causes.
func (m *TerminalMode) dispatch(ctx context.Context, line string, sess *session.Session, capt *capture.Session) {
	if line == "" {
		return
	}
	m.send(sess, line)

	if capt.Active() {
		if capture.IsStop(line, m.Stop) {
			capt.Finish(ctx) //nolint:errcheck
		}
		return
	}

	if channel, ok := capture.ParseTrigger(line, m.Trigger); ok {
		switch err := capt.Begin(ctx, channel); {
		case err == nil:
		case ncerr.Is(err, context.Canceled):
			m.Logger.Verbose("capture abandoned during pre-capture grace")
		default:
			m.Logger.Verbose("capture not started: %v", err)
		}
	}
}

func (m *TerminalMode) send(sess *session.Session, line string) {
	if err := sess.Send(line); err != nil {
		m.Console.Printf("[ERROR] write failed: %v\n", err)
	}
}

// teardown finishes an open capture, stops the reader with a bounded
// join, and closes the device exactly once.
func (m *TerminalMode) teardown(ctx context.Context, interrupted bool, dev transport.Device,
	sess *session.Session, capt *capture.Session, stopReader context.CancelFunc, readerDone <-chan error) {

	if interrupted {
		m.Console.Println("\nInterrupted. Exiting...")
	}

	if capt.Active() {
		m.Logger.Verbose("saving capture in progress")
		m.send(sess, m.Stop)
		capt.Finish(ctx) //nolint:errcheck
	}

	stopReader()
	join := time.NewTimer(m.JoinTimeout)
	defer join.Stop()
	select {
	case err := <-readerDone:
		if err != nil {
			m.Logger.Debug("reader exited: %v", err)
		}
	case <-join.C:
		m.Logger.Verbose("reader still busy after %s; closing device", m.JoinTimeout)
	}

	if err := dev.Close(); err != nil {
		m.Logger.Verbose("close %s: %v", dev.Name(), err)
	}
	m.Console.Println("Closed.")

	if m.Logger.Level() >= util.LogVerbose {
		m.Logger.Verbose("session metrics:\n%s", m.Metrics.JSON())
	}
}
