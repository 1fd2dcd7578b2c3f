// Package format provides shared text formatting utilities for the
// contribution read models.
package format

import "strings"

// Truncate caps a string at max runes. Multi-byte text is cut on rune
// boundaries, never mid-encoding.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// FirstLine returns everything before the first newline.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Body returns everything after the first newline, trimmed of surrounding
// whitespace. Used for commit messages where the first line is the title.
func Body(s string) string {
	i := strings.IndexByte(s, '\n')
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(s[i+1:])
}
