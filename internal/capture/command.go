package capture

import "strings"

// ParseTrigger reports whether line starts with the trigger keywords
// (compared token by token, case-insensitively) and returns the
// optional channel label that follows them.
//
//	ParseTrigger("SNIFF -c 6", "sniff -c")  → "6", true
//	ParseTrigger("sniff -c", "sniff -c")    → "", true
//	ParseTrigger("sniff -cx 6", "sniff -c") → "", false
func ParseTrigger(line, trigger string) (channel string, ok bool) {
	keywords := strings.Fields(trigger)
	if len(keywords) == 0 {
		return "", false
	}
	tokens := strings.Fields(line)
	if len(tokens) < len(keywords) {
		return "", false
	}
	for i, kw := range keywords {
		if !strings.EqualFold(tokens[i], kw) {
			return "", false
		}
	}
	if len(tokens) > len(keywords) {
		channel = tokens[len(keywords)]
	}
	return channel, true
}

// IsStop reports whether the trimmed line equals the stop keyword,
// ignoring case.
func IsStop(line, stop string) bool {
	return strings.EqualFold(strings.TrimSpace(line), strings.TrimSpace(stop))
}
