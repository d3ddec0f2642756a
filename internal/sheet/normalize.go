package sheet

import (
	"regexp"
	"strings"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize produces the comparison key for skill names:
// trimmed, lowercased, internal whitespace collapsed to single spaces.
// "Sleight  of hand" and "sleight of Hand" collide.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}
