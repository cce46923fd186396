package contact

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize turns a display name into a directory key:
// 1. Trim leading/trailing whitespace
// 2. Lowercase
// 3. Collapse internal whitespace to single spaces
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// CountChars returns the character count as runes (not bytes).
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}
