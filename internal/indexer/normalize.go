package indexer

import (
	"regexp"
	"strings"
)

var (
	lineEndings       = regexp.MustCompile(`\r\n|\r`)
	excessiveNewlines = regexp.MustCompile(`\n{3,}`)
	trailingSpace     = regexp.MustCompile(`[ \t]+\n`)
)

// NormalizeText canonicalizes whitespace in extracted text: all line-ending
// variants become "\n", horizontal whitespace before a newline is stripped,
// runs of 3+ newlines collapse to exactly 2, and the whole string is trimmed.
// The transform is idempotent: NormalizeText(NormalizeText(x)) == NormalizeText(x).
func NormalizeText(raw string) string {
	text := lineEndings.ReplaceAllString(raw, "\n")
	// Stripping first so whitespace-only lines collapse with their neighbors.
	text = trailingSpace.ReplaceAllString(text, "\n")
	text = excessiveNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
