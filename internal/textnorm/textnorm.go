// Package textnorm canonicalizes text for comparison: smart quotes become
// their straight ASCII equivalents, control characters become spaces, and
// whitespace runs collapse to a single space.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// quoteFold maps curly/smart quote variants to straight ASCII quotes.
var quoteFold = map[rune]rune{
	'‘': '\'', // left single
	'’': '\'', // right single
	'‚': '\'', // single low-9
	'‛': '\'', // single high-reversed-9
	'“': '"',  // left double
	'”': '"',  // right double
	'„': '"',  // double low-9
	'‟': '"',  // double high-reversed-9
}

// canonicalizer rewrites quote variants and flattens control characters and
// non-breaking spaces to plain spaces in a single pass.
var canonicalizer = runes.Map(func(r rune) rune {
	if q, ok := quoteFold[r]; ok {
		return q
	}
	if r < 0x20 || r == 0x7F || r == '\u00a0' {
		return ' '
	}
	return r
})

// Normalize cleans text for comparison purposes. It is a pure function: the
// same input always yields the same output, and it never fails. Any internal
// fault falls back to returning the input unchanged.
func Normalize(text string) (out string) {
	if text == "" {
		return ""
	}

	defer func() {
		if recover() != nil {
			out = text
		}
	}()

	cleaned, _, err := transform.String(canonicalizer, text)
	if err != nil {
		cleaned = text
	}

	// Collapse whitespace runs and trim.
	fields := strings.FieldsFunc(cleaned, unicode.IsSpace)
	return strings.Join(fields, " ")
}

// Truncate shortens a string to maxLen runes, appending "..." if truncated.
// Used to keep log lines readable when they carry dialogue text.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
