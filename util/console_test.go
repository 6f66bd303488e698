package util

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestConsole_Print(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Print("partial")
	c.Println(" line")
	c.Printf("[%s] %d bytes\n", "SAVED", 42)

	want := "partial line\n[SAVED] 42 bytes\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// TestConsole_NoInterleave hammers one console from many goroutines and
// checks every line arrives whole.
func TestConsole_NoInterleave(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	errSink := c.Sink(&buf) // shares the lock, same buffer

	const writers, lines = 8, 200
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			line := strings.Repeat(string(rune('a'+w)), 64)
			for i := 0; i < lines; i++ {
				if w%2 == 0 {
					c.Println(line)
				} else {
					errSink.Println(line)
				}
			}
		}(w)
	}
	wg.Wait()

	got := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(got) != writers*lines {
		t.Fatalf("lines = %d, want %d", len(got), writers*lines)
	}
	for i, l := range got {
		if len(l) != 64 || strings.Count(l, l[:1]) != 64 {
			t.Fatalf("line %d interleaved: %q", i, l)
		}
	}
}
