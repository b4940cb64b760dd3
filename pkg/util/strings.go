package util

import "strings"

// SanitizeDNSLabel lowercases s and replaces characters outside
// [a-z0-9-] with hyphens, then trims leading/trailing hyphens. Cloud DNS
// labels reject everything else. Returns "" if nothing survives.
func SanitizeDNSLabel(s string) string {
	s = strings.ToLower(s)
	result := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' {
			result = append(result, c)
		} else {
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}

// TruncateDNSLabel shortens a label to the 63-byte DNS limit,
// trimming any trailing hyphen left by the cut.
func TruncateDNSLabel(s string) string {
	if len(s) <= 63 {
		return s
	}
	return strings.TrimRight(s[:63], "-")
}
