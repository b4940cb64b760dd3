package util

import (
	"strings"
	"testing"
)

func TestSanitizeDNSLabel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "already clean", in: "alice", want: "alice"},
		{name: "uppercase", in: "Alice", want: "alice"},
		{name: "mail alias dots", in: "alice.smith", want: "alice-smith"},
		{name: "underscore", in: "bgp_lab", want: "bgp-lab"},
		{name: "leading junk", in: ".alice", want: "alice"},
		{name: "all junk", in: "...", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeDNSLabel(tt.in); got != tt.want {
				t.Errorf("SanitizeDNSLabel(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncateDNSLabel(t *testing.T) {
	long := strings.Repeat("a", 62) + "-bcd"
	got := TruncateDNSLabel(long)
	if len(got) > 63 {
		t.Errorf("TruncateDNSLabel() returned %d bytes, want <= 63", len(got))
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("TruncateDNSLabel() left trailing hyphen: %q", got)
	}
	if TruncateDNSLabel("short") != "short" {
		t.Error("TruncateDNSLabel() should not modify short labels")
	}
}
