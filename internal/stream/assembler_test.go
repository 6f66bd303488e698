package stream

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sniffterm/internal/metrics"
)

const testIdle = 180 * time.Millisecond

func TestAssembler_CompleteLinesImmediately(t *testing.T) {
	var out bytes.Buffer
	m := metrics.New()
	a := NewAssembler(&out, testIdle, m)
	t0 := time.Now()

	a.Feed([]byte("boot ok\r\nready\r\n> "), t0)

	require.Equal(t, "boot ok\nready\n", out.String())
	require.Equal(t, "> ", a.buf)
	require.EqualValues(t, 2, m.LinesShown())
}

// TestAssembler_PartialFlushAfterIdle covers "hello\r\n" followed 300ms
// later by "world" with no terminator.
func TestAssembler_PartialFlushAfterIdle(t *testing.T) {
	var out bytes.Buffer
	m := metrics.New()
	a := NewAssembler(&out, testIdle, m)
	t0 := time.Now()

	a.Feed([]byte("hello\r\n"), t0)
	require.Equal(t, "hello\n", out.String())

	t1 := t0.Add(300 * time.Millisecond)
	a.Feed([]byte("world"), t1)
	require.Equal(t, "hello\n", out.String(), "partial must wait for idle")

	require.False(t, a.FlushIdle(t1.Add(100*time.Millisecond)))
	require.True(t, a.FlushIdle(t1.Add(testIdle)))
	require.Equal(t, "hello\nworld", out.String())
	require.Empty(t, a.buf)
	require.EqualValues(t, 1, m.PartialFlushes())

	require.False(t, a.FlushIdle(t1.Add(time.Second)), "nothing left to flush")
}

func TestAssembler_IdleResetsOnNewBytes(t *testing.T) {
	var out bytes.Buffer
	a := NewAssembler(&out, testIdle, nil)
	t0 := time.Now()

	a.Feed([]byte("wor"), t0)
	a.Feed([]byte("ld"), t0.Add(150*time.Millisecond))

	require.False(t, a.FlushIdle(t0.Add(200*time.Millisecond)))
	require.True(t, a.FlushIdle(t0.Add(330*time.Millisecond)))
	require.Equal(t, "world", out.String())
}

func TestAssembler_LineCompletesAfterFlush(t *testing.T) {
	var out bytes.Buffer
	a := NewAssembler(&out, testIdle, nil)
	t0 := time.Now()

	a.Feed([]byte("login: "), t0)
	a.FlushIdle(t0.Add(testIdle))
	a.Feed([]byte("admin\r\n"), t0.Add(time.Second))

	require.Equal(t, "login: admin\n", out.String())
}

func TestAssembler_ZeroIdleFlushesAtOnce(t *testing.T) {
	var out bytes.Buffer
	a := NewAssembler(&out, 0, nil)

	a.Feed([]byte("$ "), time.Now())

	require.Equal(t, "$ ", out.String())
	require.Empty(t, a.buf)
}

func TestAssembler_SplitUTF8AcrossFeeds(t *testing.T) {
	var out bytes.Buffer
	a := NewAssembler(&out, testIdle, nil)
	t0 := time.Now()
	line := []byte("ssid=café\r\n")

	a.Feed(line[:9], t0) // splits the 2-byte é
	a.Feed(line[9:], t0)

	require.Equal(t, "ssid=café\n", out.String())
}
