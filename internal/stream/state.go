package stream

import (
	"sync"
	"sync/atomic"
)

// Mode selects what the reader does with each batch of device bytes.
type Mode int32

const (
	// ModeDisplay decodes bytes and prints complete lines.
	ModeDisplay Mode = iota
	// ModeCapture appends raw bytes to the capture buffer silently.
	ModeCapture
)

func (m Mode) String() string {
	switch m {
	case ModeDisplay:
		return "display"
	case ModeCapture:
		return "capture"
	default:
		return "unknown"
	}
}

// State is the handle shared by the stream reader and the capture
// session.  The mode is written only by the foreground (session) and
// read by the reader once per batch.  The capture buffer is appended by
// the reader and drained by the session; its lock is never held across
// I/O.
//
// Mode changes and appends serialize on the buffer lock, so once
// SetMode(ModeDisplay) returns no further chunk can land in the buffer
// and a following Drain sees everything the capture received.
type State struct {
	mode atomic.Int32

	mu     sync.Mutex
	chunks [][]byte
	size   int
}

// NewState returns a State in display mode with an empty buffer.
func NewState() *State {
	return &State{}
}

// Mode returns the current mode.
func (s *State) Mode() Mode {
	return Mode(s.mode.Load())
}

// SetMode switches the reader's branch for subsequent batches.
func (s *State) SetMode(m Mode) {
	s.mu.Lock()
	s.mode.Store(int32(m))
	s.mu.Unlock()
}

// Append adds one chunk to the capture buffer if the state is in
// capture mode, and reports whether it did.  The chunk must not be
// modified afterwards.
func (s *State) Append(chunk []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if Mode(s.mode.Load()) != ModeCapture {
		return false
	}
	s.chunks = append(s.chunks, chunk)
	s.size += len(chunk)
	return true
}

// Drain returns the buffered chunks in arrival order and empties the
// buffer in the same step.
func (s *State) Drain() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.chunks
	s.chunks = nil
	s.size = 0
	return out
}

// Reset empties the capture buffer.
func (s *State) Reset() {
	s.Drain()
}

// Buffered returns the number of bytes currently in the capture buffer.
func (s *State) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}
