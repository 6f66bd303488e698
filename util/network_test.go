package util

import "testing"

func TestFormatAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"1.2.3.4", 4000, "1.2.3.4:4000"},
		{"::1", 4001, "[::1]:4001"},
		{"bridge.lab", 23, "bridge.lab:23"},
	}
	for _, tt := range tests {
		if got := FormatAddr(tt.host, tt.port); got != tt.want {
			t.Errorf("FormatAddr(%q, %d) = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}
