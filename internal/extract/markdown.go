package extract

import (
	"unicode/utf8"

	"github.com/jward/docspell/internal/doc"
	"github.com/jward/docspell/internal/span"
)

// markdownChunks maps a whole markdown file onto one chunk.
func markdownChunks(src []byte) ([]*doc.Chunk, error) {
	if len(src) == 0 {
		return nil, nil
	}
	x := newLineIndex(src)
	c, err := doc.NewChunk(string(src), doc.Variant(doc.CommonMark), []doc.Segment{{
		Range: span.Range{Start: 0, End: utf8.RuneCount(src)},
		Span:  x.span(0, len(src)),
	}})
	if err != nil {
		return nil, err
	}
	return []*doc.Chunk{c}, nil
}
