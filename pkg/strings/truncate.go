// Package strings holds text helpers for log and terminal output.
package strings

import (
	"strings"
)

// DefaultDescriptionMaxLen is the column width used for tool descriptions.
const DefaultDescriptionMaxLen = 60

// MaxPayloadLen bounds upstream response bodies quoted in errors and logs.
const MaxPayloadLen = 200

// MinTruncateLen is the smallest maxLen that leaves room for one character and "...".
const MinTruncateLen = 4

// SingleLine collapses every run of whitespace, including newlines, into a
// single space and trims the ends. Values taken from requests or upstream
// bodies go through it before being logged so they cannot forge log lines.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate returns SingleLine(s) cut to at most maxLen runes, ending in
// "..." when shortened. maxLen below MinTruncateLen is raised to it.
func Truncate(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = SingleLine(s)
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
