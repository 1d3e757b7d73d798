package utils

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Clean NFC-normalizes scraped text and trims every line, dropping lines
// that are only whitespace. Line structure is preserved because several of
// the board's cells pack two values into one node separated by a newline.
func Clean(s string) string {
	s = norm.NFC.String(s)
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// FirstLine returns everything before the first newline.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// LastLine returns everything after the last newline.
func LastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
