package service

import (
	"regexp"
	"strings"
)

// disallowedChars are stripped from free-text profile input
const disallowedChars = "<>`\"'%;(){}|"

var repeatedSpaces = regexp.MustCompile(`\s{2,}`)

// SanitizeString trims the value, drops control characters and characters
// commonly used in injection payloads, and collapses repeated whitespace.
func SanitizeString(value string) string {
	trimmed := strings.TrimSpace(value)

	var b strings.Builder
	b.Grow(len(trimmed))
	for _, r := range trimmed {
		if r < 32 || r == 127 || strings.ContainsRune(disallowedChars, r) {
			continue
		}
		b.WriteRune(r)
	}

	return repeatedSpaces.ReplaceAllString(b.String(), " ")
}

// SanitizeLowercaseString sanitizes and lowercases the value.
func SanitizeLowercaseString(value string) string {
	return strings.ToLower(SanitizeString(value))
}
