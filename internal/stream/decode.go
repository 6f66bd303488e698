package stream

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder turns device bytes into text incrementally.  A multi-byte
// character split across two reads is held back until it is complete;
// ill-formed input decodes to U+FFFD instead of failing.
//
// Decoding a sequence piece by piece yields the same text as decoding
// it in one call.
type Decoder struct {
	t    transform.Transformer
	held []byte
}

// NewDecoder returns a UTF-8 Decoder.
func NewDecoder() *Decoder {
	return &Decoder{t: unicode.UTF8.NewDecoder()}
}

// Decode consumes p and returns all text that is complete so far.
func (d *Decoder) Decode(p []byte) string {
	src := p
	if len(d.held) > 0 {
		src = append(d.held, p...)
	}
	text, rest := d.transform(src, false)
	d.held = bytes.Clone(rest)
	return text
}

// Reset drops any held-back bytes and returns how many there were.  Use
// it when the byte stream is no longer contiguous.
func (d *Decoder) Reset() int {
	n := len(d.held)
	d.held = nil
	d.t.Reset()
	return n
}

// flush decodes whatever is held back, replacing an incomplete trailing
// sequence with U+FFFD, and resets the decoder.
func (d *Decoder) flush() string {
	if len(d.held) == 0 {
		return ""
	}
	text, _ := d.transform(d.held, true)
	d.held = nil
	d.t.Reset()
	return text
}

func (d *Decoder) transform(src []byte, atEOF bool) (string, []byte) {
	var out strings.Builder
	for len(src) > 0 {
		// Each ill-formed byte becomes a 3-byte U+FFFD.
		dst := make([]byte, 3*len(src)+utf8.UTFMax)
		nDst, nSrc, err := d.t.Transform(dst, src, atEOF)
		out.Write(dst[:nDst])
		src = src[nSrc:]

		switch {
		case err == nil:
			return out.String(), nil
		case err == transform.ErrShortSrc:
			return out.String(), src
		case err == transform.ErrShortDst && (nDst > 0 || nSrc > 0):
			continue
		default:
			// Lossy fallback; never surfaces.
			out.WriteString(strings.ToValidUTF8(string(src), "\uFFFD"))
			return out.String(), nil
		}
	}
	return out.String(), nil
}
