package stream

import "strings"

// newlineNormalizer rewrites CRLF and lone CR to LF.  A CR ending one
// piece is emitted as LF at once and a LF opening the next piece is
// then swallowed, so a CRLF split across reads still counts once.
type newlineNormalizer struct {
	pendingCR bool
}

// Reset forgets a trailing CR seen in the previous piece.
func (n *newlineNormalizer) Reset() { n.pendingCR = false }

func (n *newlineNormalizer) Normalize(s string) string {
	if s == "" {
		return s
	}
	if n.pendingCR && s[0] == '\n' {
		s = s[1:]
	}
	n.pendingCR = false
	if s == "" {
		return s
	}
	n.pendingCR = s[len(s)-1] == '\r'
	if !strings.Contains(s, "\r") {
		return s
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}
