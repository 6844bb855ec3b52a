// Package utils provides common utility functions.
package utils

import "strings"

// NormalizeWhitespace replaces runs of whitespace with single spaces and
// trims the ends.
func NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// TruncateString truncates a string to at most maxLength bytes without
// splitting a UTF-8 sequence.
func TruncateString(str string, maxLength int) string {
	if len(str) <= maxLength {
		return str
	}

	cut := maxLength
	for cut > 0 && str[cut]&0xC0 == 0x80 {
		cut--
	}

	return str[:cut]
}
