package sentence

import (
	"regexp"
	"strings"
)

// nonLetters matches runs of characters that are neither ASCII letters nor whitespace.
var nonLetters = regexp.MustCompile(`[^A-Za-z\s]+`)

// Clean normalizes a sentence into tokens: every run of characters other
// than ASCII letters and whitespace becomes one space, the result is
// lowercased, newlines become spaces, and the text is split on whitespace.
//
// Clean is idempotent: Clean(strings.Join(Clean(s), " ")) equals Clean(s).
func Clean(s string) []string {
	s = nonLetters.ReplaceAllString(s, " ")
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.Fields(s)
}
