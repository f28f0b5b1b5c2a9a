package util

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SanitizeText removes NUL bytes and control characters that document
// extractors leave behind, keeping newlines and tabs for segmentation.
// Compatibility forms such as the "ﬁ" ligature are folded with NFKC.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "\r\n", "\n")

	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 || ch == 0xFFFD {
			continue
		}
		r = append(r, ch)
	}
	return strings.TrimSpace(norm.NFKC.String(string(r)))
}
