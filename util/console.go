package util

import (
	"fmt"
	"io"
	"sync"
)

// Console is the single output-serialization boundary of the terminal.
// Every producer (device lines, status messages, log records) writes
// through it, and each Write is atomic with respect to all others, so
// text from different goroutines never interleaves mid-line.
//
// A Console may front several writers (stdout and stderr) that share
// one lock; see [Console.Sink].
type Console struct {
	mu *sync.Mutex
	w  io.Writer
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{mu: &sync.Mutex{}, w: w}
}

// Sink returns a Console that writes to w but serializes on the same
// lock as c.
func (c *Console) Sink(w io.Writer) *Console {
	return &Console{mu: c.mu, w: w}
}

// Write implements io.Writer.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w.Write(p)
}

// Print writes s verbatim.
func (c *Console) Print(s string) {
	c.Write([]byte(s)) //nolint:errcheck
}

// Println writes s followed by a newline in one atomic write.
func (c *Console) Println(s string) {
	c.Print(s + "\n")
}

// Printf formats and writes in one atomic write.
func (c *Console) Printf(format string, args ...interface{}) {
	c.Print(fmt.Sprintf(format, args...))
}
