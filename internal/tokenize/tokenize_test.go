package tokenize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jward/docspell/internal/span"
)

func texts(text string, ranges []span.Range) []string {
	chars := []rune(text)
	out := make([]string, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, string(chars[r.Start:r.End]))
	}
	return out
}

func TestTokenize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"plain", "With markdown removed, for sure.", []string{"With", "markdown", "removed", "for", "sure"}},
		{"last word without punctuation", "two literals", []string{"two", "literals"}},
		{"single word", "word", []string{"word"}},
		{"only ignored", " .,;:!? \n", nil},
		{"empty", "", nil},
		{"brackets and code", "see [`Vec`](std::vec) or {x}", []string{"see", "Vec", "std", "vec", "or", "x"}},
		{"hyphen splits", "well-known", []string{"well", "known"}},
		{"apostrophe kept", "isn't it", []string{"isn't", "it"}},
		{"multi-byte", "Grüße 🚤w🌴x end", []string{"Grüße", "🚤w🌴x", "end"}},
		{"crlf", "a\r\nb", []string{"a", "b"}},
		{"emphasis kept", "**bold** _it_", []string{"**bold**", "_it_"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, texts(tt.text, got))
		})
	}
}

func TestTokenize_CharacterOffsets(t *testing.T) {
	t.Parallel()
	got := Tokenize("ä ö")
	assert.Equal(t, []span.Range{{Start: 0, End: 1}, {Start: 2, End: 3}}, got)
}

func TestTokenize_LastWordNeverDropped(t *testing.T) {
	t.Parallel()
	for _, text := range []string{"a", "a b", "x.y", "trailing word", "🚤", "a\nb"} {
		got := Tokenize(text)
		if assert.NotEmpty(t, got, text) {
			last := got[len(got)-1]
			assert.Equal(t, len([]rune(text)), last.End, "last token of %q must end at input length", text)
		}
	}
}

func TestTokenize_ReconstructsNonIgnoredContent(t *testing.T) {
	t.Parallel()
	samples := []string{
		"This module contains documentation thats is too long for one line.",
		"Possible **ways** to run __rustc__ and request various parts of LTO.",
		"  leading and trailing  ",
		"[link](http://example.com/a-b) `code` #tag!",
		"Grüße, 世界! 🚤w🌴x🌋y🍈z🍉0.",
	}
	for _, text := range samples {
		got := Tokenize(text)
		var kept strings.Builder
		for _, r := range text {
			if !IsIgnored(r) {
				kept.WriteRune(r)
			}
		}
		for _, r := range got {
			assert.False(t, r.IsEmpty(), "empty token in %q", text)
		}
		assert.Equal(t, kept.String(), strings.Join(texts(text, got), ""), text)
	}
}

func TestWords_KeepsPunctuation(t *testing.T) {
	t.Parallel()
	text := "isn't it? Smart,  `markdown`\nnext"
	assert.Equal(t, []string{"isn't", "it?", "Smart,", "`markdown`", "next"}, texts(text, Words(text)))
}

func TestAll_StopsEarly(t *testing.T) {
	t.Parallel()
	var got []span.Range
	for r := range All("one two three", IsIgnored) {
		got = append(got, r)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []span.Range{{Start: 0, End: 3}, {Start: 4, End: 7}}, got)
}
