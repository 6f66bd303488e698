// Package metrics provides lightweight, lock-free counters for
// tracking runtime statistics of a terminal session.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for one device connection.
// A nil Collector is safe to use; all methods become no-ops.
type Collector struct {
	bytesIn        atomic.Int64
	bytesOut       atomic.Int64
	linesShown     atomic.Int64
	partialFlushes atomic.Int64
	capturedBytes  atomic.Int64
	capturesSaved  atomic.Int64
	capturesFailed atomic.Int64
	writeErrors    atomic.Int64
	readErrors     atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastCapture  time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Device I/O ───────────────────────────────────────────────────────

// BytesReceived records n bytes read from the device.
func (c *Collector) BytesReceived(n int) {
	if c == nil {
		return
	}
	c.bytesIn.Add(int64(n))
}

// BytesSent records n bytes written to the device.
func (c *Collector) BytesSent(n int) {
	if c == nil {
		return
	}
	c.bytesOut.Add(int64(n))
}

// TotalBytesIn returns total bytes received.
func (c *Collector) TotalBytesIn() int64 {
	if c == nil {
		return 0
	}
	return c.bytesIn.Load()
}

// TotalBytesOut returns total bytes sent.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// ── Display ──────────────────────────────────────────────────────────

// LineShown records one complete line printed to the console.
func (c *Collector) LineShown() {
	if c == nil {
		return
	}
	c.linesShown.Add(1)
}

// PartialFlushed records one idle flush of an unterminated line.
func (c *Collector) PartialFlushed() {
	if c == nil {
		return
	}
	c.partialFlushes.Add(1)
}

// LinesShown returns the number of complete lines printed.
func (c *Collector) LinesShown() int64 {
	if c == nil {
		return 0
	}
	return c.linesShown.Load()
}

// PartialFlushes returns the number of idle flushes.
func (c *Collector) PartialFlushes() int64 {
	if c == nil {
		return 0
	}
	return c.partialFlushes.Load()
}

// ── Capture ──────────────────────────────────────────────────────────

// BytesCaptured records n raw bytes appended to the capture buffer.
func (c *Collector) BytesCaptured(n int) {
	if c == nil {
		return
	}
	c.capturedBytes.Add(int64(n))
}

// CaptureSaved records a capture file written successfully.
func (c *Collector) CaptureSaved() {
	if c == nil {
		return
	}
	c.capturesSaved.Add(1)
	c.mu.Lock()
	c.lastCapture = time.Now()
	c.mu.Unlock()
}

// CaptureFailed records a capture that could not be written.
func (c *Collector) CaptureFailed(msg string) {
	if c == nil {
		return
	}
	c.capturesFailed.Add(1)
	c.recordError(msg)
}

// CapturesSaved returns the number of capture files written.
func (c *Collector) CapturesSaved() int64 {
	if c == nil {
		return 0
	}
	return c.capturesSaved.Load()
}

// ── Errors ───────────────────────────────────────────────────────────

// WriteFailed records a failed device write.
func (c *Collector) WriteFailed(msg string) {
	if c == nil {
		return
	}
	c.writeErrors.Add(1)
	c.recordError(msg)
}

// ReadFailed records the read error that stopped the stream reader.
func (c *Collector) ReadFailed(msg string) {
	if c == nil {
		return
	}
	c.readErrors.Add(1)
	c.recordError(msg)
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.writeErrors.Load() + c.readErrors.Load() + c.capturesFailed.Load()
}

func (c *Collector) recordError(msg string) {
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	BytesIn          int64  `json:"bytes_in"`
	BytesOut         int64  `json:"bytes_out"`
	LinesShown       int64  `json:"lines_shown"`
	PartialFlushes   int64  `json:"partial_flushes"`
	CapturedBytes    int64  `json:"captured_bytes"`
	CapturesSaved    int64  `json:"captures_saved"`
	CapturesFailed   int64  `json:"captures_failed"`
	WriteErrors      int64  `json:"write_errors"`
	ReadErrors       int64  `json:"read_errors"`
	LastCapture      string `json:"last_capture,omitempty"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:         time.Since(c.startTime).Truncate(time.Second).String(),
		BytesIn:        c.bytesIn.Load(),
		BytesOut:       c.bytesOut.Load(),
		LinesShown:     c.linesShown.Load(),
		PartialFlushes: c.partialFlushes.Load(),
		CapturedBytes:  c.capturedBytes.Load(),
		CapturesSaved:  c.capturesSaved.Load(),
		CapturesFailed: c.capturesFailed.Load(),
		WriteErrors:    c.writeErrors.Load(),
		ReadErrors:     c.readErrors.Load(),
	}
	if !c.lastCapture.IsZero() {
		s.LastCapture = c.lastCapture.Format(time.RFC3339)
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
