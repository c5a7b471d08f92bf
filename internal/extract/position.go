package extract

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/docspell/internal/span"
)

// lineIndex converts byte offsets of a source file into 1-based line and
// character columns.
type lineIndex struct {
	src    []byte
	starts []int
}

func newLineIndex(src []byte) *lineIndex {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{src: src, starts: starts}
}

func (x *lineIndex) pos(b int) span.LineColumn {
	line := sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > b }) - 1
	return span.LineColumn{
		Line:   line + 1,
		Column: utf8.RuneCount(x.src[x.starts[line]:b]) + 1,
	}
}

// span returns the inclusive Span of the non-empty byte range [start, end).
func (x *lineIndex) span(start, end int) span.Span {
	last := end - 1
	for last > start && !utf8.RuneStart(x.src[last]) {
		last--
	}
	return span.Span{Start: x.pos(start), End: x.pos(last)}
}

// nodeBytes returns the byte range of n as ints.
func nodeBytes(n *sitter.Node) (int, int, error) {
	start, err := safecast.Conv[int](n.StartByte())
	if err != nil {
		return 0, 0, fmt.Errorf("extract: node start: %w", err)
	}
	end, err := safecast.Conv[int](n.EndByte())
	if err != nil {
		return 0, 0, fmt.Errorf("extract: node end: %w", err)
	}
	return start, end, nil
}

// walk visits n and its named descendants in document order.
func walk(n *sitter.Node, fn func(*sitter.Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if err := walk(n.NamedChild(i), fn); err != nil {
			return err
		}
	}
	return nil
}
