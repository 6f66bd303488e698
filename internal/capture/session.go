// Package capture owns the capture window: recognising the trigger and
// stop commands, the session state machine that flips the stream
// reader between display and capture, and writing the finished buffer
// to disk.
//
// Lifecycle:
//
//	Idle ─Begin─► PreCapture ─grace─► Capturing ─Finish─► Stopping ─grace─► Idle
package capture

import (
	"context"
	"time"

	ncerr "sniffterm/internal/errors"
	"sniffterm/internal/metrics"
	"sniffterm/internal/stream"
	"sniffterm/util"
)

// Phase is a capture session lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePreCapture
	PhaseCapturing
	PhaseStopping
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePreCapture:
		return "pre-capture"
	case PhaseCapturing:
		return "capturing"
	case PhaseStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// CapturingNotice is printed once the reader has gone silent.
const CapturingNotice = "[CAPTURING] silently buffering device bytes until you type 'stop'"

// Result describes one finished capture.
type Result struct {
	Path    string
	Bytes   int64
	Channel string
	Index   int
	Err     error
}

// Session is the capture state machine.  It is driven from the command
// loop's goroutine only; the reader sees it through State.
type Session struct {
	State   *stream.State
	Writer  *Writer
	Console *util.Console
	Logger  *util.Logger
	Metrics *metrics.Collector

	PreCapture time.Duration // display grace after the trigger
	PostStop   time.Duration // capture grace after stop

	phase   Phase
	channel string
	index   int
}

// Phase returns the current lifecycle state.
func (s *Session) Phase() Phase { return s.phase }

// Active reports whether operator lines belong to a capture.
func (s *Session) Active() bool { return s.phase == PhaseCapturing }

// Index returns the index the next saved capture will carry.
func (s *Session) Index() int { return s.index }

// Begin runs Idle → PreCapture → Capturing.  The trigger line must
// already have been sent to the device.  If ctx ends during the
// pre-capture grace the session returns to Idle without capturing.
func (s *Session) Begin(ctx context.Context, channel string) error {
	if s.phase != PhaseIdle {
		return ncerr.ErrCaptureActive
	}
	s.phase = PhasePreCapture
	s.channel = channel
	s.Logger.Verbose("capture %d: pre-capture grace %s (channel %q)", s.index, s.PreCapture, channel)

	if err := wait(ctx, s.PreCapture); err != nil {
		s.phase = PhaseIdle
		s.channel = ""
		return err
	}

	s.State.Reset()
	s.State.SetMode(stream.ModeCapture)
	s.phase = PhaseCapturing
	s.Console.Println(CapturingNotice)
	return nil
}

// Finish runs Capturing → Stopping → Idle and saves the buffer.  The
// stop line must already have been sent.  A cancelled ctx skips the
// remainder of the post-stop grace but the capture is still saved.
//
// The index advances and the channel resets whatever the save outcome;
// a save failure is reported and returned in Result.Err.
func (s *Session) Finish(ctx context.Context) (Result, error) {
	if s.phase != PhaseCapturing {
		return Result{}, ncerr.ErrNoCapture
	}
	s.phase = PhaseStopping
	s.Logger.Verbose("capture %d: stop sent, %d bytes buffered, post-stop grace %s",
		s.index, s.State.Buffered(), s.PostStop)

	if err := wait(ctx, s.PostStop); err != nil {
		s.Logger.Verbose("capture %d: post-stop grace cut short: %v", s.index, err)
	}

	s.State.SetMode(stream.ModeDisplay)
	chunks := s.State.Drain()

	res := Result{Channel: s.channel, Index: s.index}
	res.Path, res.Bytes, res.Err = s.Writer.Save(chunks, s.channel, s.index)
	if res.Err != nil {
		s.Metrics.CaptureFailed(res.Err.Error())
		s.Console.Printf("\n[ERROR] failed to save capture: %v\n", res.Err)
	} else {
		s.Metrics.CaptureSaved()
		s.Console.Printf("\n[CAPTURE SAVED] %s (%d bytes)\n", res.Path, res.Bytes)
	}

	s.index++
	s.channel = ""
	s.phase = PhaseIdle
	return res, nil
}

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
