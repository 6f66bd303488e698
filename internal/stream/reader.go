// Package stream implements the device side of the terminal: the
// background reader that pulls bytes off the link and either captures
// them raw or turns them into display lines.
//
// Data flow:
//
//	device ─► Reader ─┬─► Assembler ─► console   (ModeDisplay)
//	                  └─► State buffer            (ModeCapture)
package stream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"sniffterm/internal/metrics"
	"sniffterm/util"
)

// Reader is the background loop that drains the device.  Src must
// return (0, nil) when its bounded read timeout expires with no data;
// that read is the loop's only suspension point besides IdlePause.
type Reader struct {
	Src       io.Reader
	State     *State
	Lines     *Assembler
	IdlePause time.Duration
	ReadSize  int
	Metrics   *metrics.Collector
	Logger    *util.Logger

	// Now defaults to time.Now.  Override in tests.
	Now func() time.Time
}

func (r *Reader) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run reads until ctx is cancelled or the device fails.  A read error
// ends the loop without retry and is returned; cancellation returns nil.
func (r *Reader) Run(ctx context.Context) error {
	pooled := util.GetBuf()
	defer util.PutBuf(pooled)

	buf := *pooled
	switch {
	case r.ReadSize > len(buf):
		buf = make([]byte, r.ReadSize)
	case r.ReadSize > 0:
		buf = buf[:r.ReadSize]
	}

	for ctx.Err() == nil {
		n, err := r.Src.Read(buf)
		if n > 0 {
			r.dispatch(buf[:n])
		}
		if err != nil {
			r.Metrics.ReadFailed(err.Error())
			r.Logger.Verbose("reader stopped: %v", err)
			return fmt.Errorf("stream read: %w", err)
		}
		if n == 0 {
			r.idle()
		}
	}
	return nil
}

// dispatch commits one batch to exactly one branch.
func (r *Reader) dispatch(data []byte) {
	r.Metrics.BytesReceived(len(data))

	if r.State.Mode() == ModeCapture && r.State.Append(bytes.Clone(data)) {
		r.Metrics.BytesCaptured(len(data))
		// Display bytes on either side of the capture are not contiguous.
		if n := r.Lines.Reset(); n > 0 {
			r.Logger.Debug("dropped %d held display bytes at capture start", n)
		}
		return
	}
	r.Lines.Feed(data, r.now())
}

func (r *Reader) idle() {
	if r.State.Mode() != ModeCapture {
		r.Lines.FlushIdle(r.now())
	}
	if r.IdlePause > 0 {
		time.Sleep(r.IdlePause)
	}
}
