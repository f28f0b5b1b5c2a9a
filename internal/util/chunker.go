package util

import "strings"

// ChunkText splits text into rune windows of chunkSize with overlap. A window
// is pulled back to the last blank line (or newline) in its second half so a
// question block is not cut in the middle when avoidable.
func ChunkText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = 6000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	runes := []rune(text)
	out := make([]string, 0, len(runes)/chunkSize+1)
	for i := 0; i < len(runes); {
		end := i + chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else if cut := lineBreakBefore(runes[i:end]); cut > chunkSize/2 {
			end = i + cut
		}
		if part := strings.TrimSpace(string(runes[i:end])); part != "" {
			out = append(out, part)
		}
		if end == len(runes) {
			break
		}
		next := end - overlap
		if next <= i {
			next = end
		}
		i = next
	}
	return out
}

func lineBreakBefore(window []rune) int {
	s := string(window)
	if i := strings.LastIndex(s, "\n\n"); i >= 0 {
		return len([]rune(s[:i])) + 2
	}
	if i := strings.LastIndex(s, "\n"); i >= 0 {
		return len([]rune(s[:i])) + 1
	}
	return -1
}
