package stream

import (
	"io"
	"strings"
	"time"

	"sniffterm/internal/metrics"
)

// Assembler is the display-mode line assembler.  It decodes device
// bytes, normalizes line endings, prints every complete line at once
// and holds the remainder until a newline arrives or the remainder has
// been idle for the flush threshold.
//
// An Assembler is owned by the stream reader goroutine and is not safe
// for concurrent use.  Its output writer is expected to serialize
// writes (see util.Console).
type Assembler struct {
	out     io.Writer
	idle    time.Duration
	dec     *Decoder
	nl      newlineNormalizer
	buf     string
	last    time.Time
	metrics *metrics.Collector
}

// NewAssembler returns an Assembler writing to out that flushes partial
// lines after idle.
func NewAssembler(out io.Writer, idle time.Duration, m *metrics.Collector) *Assembler {
	return &Assembler{
		out:     out,
		idle:    idle,
		dec:     NewDecoder(),
		metrics: m,
	}
}

// Feed decodes p, emits every complete line, and flushes the remainder
// if it is already past the idle threshold.
func (a *Assembler) Feed(p []byte, now time.Time) {
	a.buf += a.nl.Normalize(a.dec.Decode(p))
	a.last = now

	for {
		i := strings.IndexByte(a.buf, '\n')
		if i < 0 {
			break
		}
		io.WriteString(a.out, a.buf[:i+1]) //nolint:errcheck
		a.buf = a.buf[i+1:]
		a.last = now
		a.metrics.LineShown()
	}

	a.FlushIdle(now)
}

// FlushIdle prints the buffered partial line verbatim, without a
// terminator, when it has been idle for at least the threshold.  It
// reports whether anything was printed.
func (a *Assembler) FlushIdle(now time.Time) bool {
	if a.buf == "" || now.Sub(a.last) < a.idle {
		return false
	}
	io.WriteString(a.out, a.buf) //nolint:errcheck
	a.buf = ""
	a.last = now
	a.metrics.PartialFlushed()
	return true
}

// Reset marks a break in the display byte stream, as when device bytes
// were diverted to a capture.  Held-back bytes of an incomplete
// character and a trailing CR are dropped so the next bytes are not
// read as their continuation; the decoded partial line is kept.  It
// returns the number of bytes dropped.
func (a *Assembler) Reset() int {
	a.nl.Reset()
	return a.dec.Reset()
}
