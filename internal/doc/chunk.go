package doc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jward/docspell/internal/span"
)

var (
	// ErrNoCoveringSpan means a Range has no valid source location. Callers
	// skip the finding rather than guessing one.
	ErrNoCoveringSpan = errors.New("doc: range has no covering span")
	// ErrRangeOutOfBounds means a Range exceeds the chunk text.
	ErrRangeOutOfBounds = errors.New("doc: range out of chunk bounds")
	// ErrInvalidSegments means a source mapping is unsorted, overlapping or
	// out of bounds.
	ErrInvalidSegments = errors.New("doc: invalid source mapping")
)

// Segment maps a contiguous part of the chunk text onto the original file.
// The mapped text is a verbatim copy of the source starting at Span.Start,
// so positions inside the segment are found by walking its characters.
type Segment struct {
	Range span.Range
	Span  span.Span
}

// Chunk is an immutable unit of prose extracted from one comment (or one
// run of adjacent comment lines), with its mapping back to the source.
type Chunk struct {
	text     string
	chars    []rune
	variant  CommentVariant
	segments []Segment
}

// NewChunk validates the source mapping and builds a Chunk. Segments must
// be sorted, disjoint, non-empty and inside the text.
func NewChunk(text string, variant CommentVariant, segments []Segment) (*Chunk, error) {
	c := &Chunk{
		text:     text,
		chars:    []rune(text),
		variant:  variant,
		segments: append([]Segment(nil), segments...),
	}
	prevEnd := 0
	for i, seg := range c.segments {
		switch {
		case seg.Range.IsEmpty():
			return nil, fmt.Errorf("%w: segment %d is empty", ErrInvalidSegments, i)
		case seg.Range.Start < prevEnd:
			return nil, fmt.Errorf("%w: segment %d overlaps its predecessor", ErrInvalidSegments, i)
		case seg.Range.End > len(c.chars):
			return nil, fmt.Errorf("%w: segment %d ends at %d beyond %d", ErrInvalidSegments, i, seg.Range.End, len(c.chars))
		case seg.Span.End.Before(seg.Span.Start):
			return nil, fmt.Errorf("%w: segment %d has an inverted span", ErrInvalidSegments, i)
		}
		prevEnd = seg.Range.End
	}
	return c, nil
}

// MustChunk is NewChunk for fixed test inputs.
func MustChunk(text string, variant CommentVariant, segments []Segment) *Chunk {
	c, err := NewChunk(text, variant, segments)
	if err != nil {
		panic(err)
	}
	return c
}

// Text returns the flat chunk text.
func (c *Chunk) Text() string { return c.text }

// Variant returns the comment variant.
func (c *Chunk) Variant() CommentVariant { return c.variant }

// Len returns the text length in characters.
func (c *Chunk) Len() int { return len(c.chars) }

// Segments returns a copy of the source mapping.
func (c *Chunk) Segments() []Segment {
	return append([]Segment(nil), c.segments...)
}

// Slice returns the text covered by r. Out-of-bounds parts are dropped.
func (c *Chunk) Slice(r span.Range) string {
	start := min(max(r.Start, 0), len(c.chars))
	end := min(max(r.End, start), len(c.chars))
	return string(c.chars[start:end])
}

// Lines splits the text covered by r on line breaks.
func (c *Chunk) Lines(r span.Range) []string {
	return strings.Split(c.Slice(r), "\n")
}

func (c *Chunk) checkBounds(r span.Range) error {
	if r.Start < 0 || r.End < r.Start || r.End > len(c.chars) {
		return fmt.Errorf("%w: %s in chunk of length %d", ErrRangeOutOfBounds, r, len(c.chars))
	}
	return nil
}

// FindCoveredSpans returns, in document order, the source Span of every
// mapped segment r overlaps, clipped to r. A zero-length r resolves to the
// single position it points at.
func (c *Chunk) FindCoveredSpans(r span.Range) ([]span.Span, error) {
	var spans []span.Span
	err := c.covered(r, func(seg Segment, clip span.Range) {
		spans = append(spans, c.clippedSpan(seg, clip))
	})
	if err != nil {
		return nil, err
	}
	return spans, nil
}

// Indentations returns one value per source line r touches: the number of
// characters in front of the covering segment's mapped start on its line.
// A segment spanning several lines repeats its value for each of them.
func (c *Chunk) Indentations(r span.Range) ([]int, error) {
	var out []int
	err := c.covered(r, func(seg Segment, clip span.Range) {
		indent := max(seg.Span.Start.Column-1, 0)
		for range c.clippedSpan(seg, clip).Lines() {
			out = append(out, indent)
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// covered calls fn for every segment overlapped by r, in order.
func (c *Chunk) covered(r span.Range, fn func(seg Segment, clip span.Range)) error {
	if err := c.checkBounds(r); err != nil {
		return err
	}
	if len(c.segments) == 0 || r.Start < c.segments[0].Range.Start {
		return fmt.Errorf("%w: %s", ErrNoCoveringSpan, r)
	}

	if r.IsEmpty() {
		for _, seg := range c.segments {
			if seg.Range.Contains(r.Start) {
				fn(seg, r)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrNoCoveringSpan, r)
	}

	found := false
	for _, seg := range c.segments {
		if seg.Range.Start >= r.End {
			break
		}
		clip, ok := seg.Range.Intersect(r)
		if !ok {
			continue
		}
		found = true
		fn(seg, clip)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNoCoveringSpan, r)
	}
	return nil
}

func (c *Chunk) clippedSpan(seg Segment, clip span.Range) span.Span {
	start := c.position(seg, clip.Start)
	if clip.IsEmpty() {
		return span.Span{Start: start, End: start}
	}
	return span.Span{Start: start, End: c.position(seg, clip.End-1)}
}

// position walks the segment from its mapped start to offset.
func (c *Chunk) position(seg Segment, offset int) span.LineColumn {
	pos := seg.Span.Start
	for i := seg.Range.Start; i < offset; i++ {
		if c.chars[i] == '\n' {
			pos.Line++
			pos.Column = 1
			continue
		}
		pos.Column++
	}
	return pos
}
