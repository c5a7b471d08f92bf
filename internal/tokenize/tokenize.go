// Package tokenize splits chunk text into word ranges.
package tokenize

import (
	"iter"
	"strings"
	"unicode"

	"github.com/jward/docspell/internal/span"
)

// Blacklist holds the punctuation that separates words in addition to
// whitespace.
const Blacklist = "\";:,.?!#(){}[]-\n\r/`"

// IgnoreFunc reports whether a character separates tokens.
type IgnoreFunc func(r rune) bool

// IsIgnored is the default ignore-set: whitespace and Blacklist.
func IsIgnored(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(Blacklist, r)
}

// IsSpace ignores whitespace only, keeping punctuation attached to words.
func IsSpace(r rune) bool {
	return unicode.IsSpace(r)
}

// Tokenize splits text with the default ignore-set.
func Tokenize(text string) []span.Range {
	return TokenizeFunc(text, IsIgnored)
}

// Words splits text on whitespace only.
func Words(text string) []span.Range {
	return TokenizeFunc(text, IsSpace)
}

// TokenizeFunc collects All(text, ignore).
func TokenizeFunc(text string, ignore IgnoreFunc) []span.Range {
	var out []span.Range
	for r := range All(text, ignore) {
		out = append(out, r)
	}
	return out
}

// All yields the character ranges of every run of non-ignored characters
// in a single left-to-right scan. A run still open at the end of the input
// is closed at the input length.
func All(text string, ignore IgnoreFunc) iter.Seq[span.Range] {
	return func(yield func(span.Range) bool) {
		start := -1
		pos := 0
		for _, r := range text {
			if ignore(r) {
				if start >= 0 {
					if !yield(span.Range{Start: start, End: pos}) {
						return
					}
					start = -1
				}
			} else if start < 0 {
				start = pos
			}
			pos++
		}
		if start >= 0 {
			yield(span.Range{Start: start, End: pos})
		}
	}
}
