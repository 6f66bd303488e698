package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TimestampLayout is the UTC, second-resolution stamp in capture names.
const TimestampLayout = "20060102T150405"

// Writer serializes a finished capture buffer to a file.  The payload
// is written exactly as received; its format is never inspected.
type Writer struct {
	Dir string
	Ext string

	// Now defaults to time.Now.  Override in tests.
	Now func() time.Time
}

func (w *Writer) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// FileName builds capture[_ch<channel>]_<UTC stamp>_<index>.<ext>.  The
// channel segment is omitted when channel is empty or "all".
func (w *Writer) FileName(channel string, index int, at time.Time) string {
	var b strings.Builder
	b.WriteString("capture")
	if label := sanitizeChannel(channel); label != "" && !strings.EqualFold(label, "all") {
		b.WriteString("_ch")
		b.WriteString(label)
	}
	fmt.Fprintf(&b, "_%s_%d", at.UTC().Format(TimestampLayout), index)
	if ext := strings.TrimPrefix(w.Ext, "."); ext != "" {
		b.WriteString(".")
		b.WriteString(ext)
	}
	return b.String()
}

// Save concatenates chunks in order into a new file and returns its
// path and the number of bytes written.  A partial write still reports
// the bytes that made it to disk alongside the error.
func (w *Writer) Save(chunks [][]byte, channel string, index int) (string, int64, error) {
	path := filepath.Join(w.Dir, w.FileName(channel, index, w.now()))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return path, 0, err
	}

	var total int64
	for _, chunk := range chunks {
		n, err := f.Write(chunk)
		total += int64(n)
		if err != nil {
			f.Close()
			return path, total, err
		}
	}
	if err := f.Close(); err != nil {
		return path, total, err
	}
	return path, total, nil
}

// sanitizeChannel keeps the label from escaping the output directory.
func sanitizeChannel(ch string) string {
	ch = strings.TrimSpace(ch)
	return strings.Map(func(r rune) rune {
		if r == 0 || strings.ContainsRune(`/\:`, r) {
			return '_'
		}
		return r
	}, ch)
}
